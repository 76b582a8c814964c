package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"age", "age"},
		{"12-Age-3", "age"},
		{"1-Age", "age"},
		{"Age-10", "age"},
		{"  Sex ", "sex"},
		{"Age at Enrollment", "age_at_enrollment"},
		{"Ethnicity (self-reported)", "ethnicity_self_reported"},
		{"Données", "donnees"},
		{"3-participant_id-7", "participant_id"},
		{"2024", "2024"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.raw))
		})
	}
}

func TestRunContextIdentifier(t *testing.T) {
	run := NewRunContext("https://example.org/fhir", "system|code", "phs000001", "ws-a")
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, "phs000001-participant-age-VariableSummary", run.Identifier("participant", "age"))

	run.StudyID = ""
	assert.Equal(t, "ws-a-participant-age-VariableSummary", run.Identifier("participant", "age"))

	run.Workspace = ""
	assert.Equal(t, "summary", run.Scope())

	other := NewRunContext("", "", "", "")
	assert.NotEqual(t, run.RunID, other.RunID)
}
