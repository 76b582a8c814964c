package dictionary

import (
	"fmt"

	uuid "github.com/satori/go.uuid"

	"github.com/pivolan/ddsummary/domain/models"
)

// RunContext carries the identity of one summarization call. Output identifiers
// are derived from it rather than from process-wide state.
type RunContext struct {
	RunID        string
	SystemPrefix string
	Tag          string
	StudyID      string
	Workspace    string
}

func NewRunContext(systemPrefix, tag, studyID, workspace string) RunContext {
	return RunContext{
		RunID:        uuid.NewV4().String(),
		SystemPrefix: systemPrefix,
		Tag:          tag,
		StudyID:      studyID,
		Workspace:    workspace,
	}
}

// Scope is the study identifier when known, otherwise the workspace.
func (r RunContext) Scope() string {
	switch {
	case r.StudyID != "":
		return r.StudyID
	case r.Workspace != "":
		return r.Workspace
	}
	return "summary"
}

func (r RunContext) Identifier(table, variable string) string {
	return fmt.Sprintf("%s-%s-%s-VariableSummary", r.Scope(), table, variable)
}

// Stamp fills the identifying fields of a finalized result.
func (r RunContext) Stamp(res *models.SummaryResult, table string) {
	res.System = r.SystemPrefix
	res.Table = table
	res.Identifier = r.Identifier(table, res.Variable)
}
