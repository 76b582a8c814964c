package summary

import (
	"strings"

	"go.uber.org/zap"

	"github.com/pivolan/ddsummary/domain/models"
)

// declaredTypes maps data-dictionary spellings, including the FHIR permittedDataType
// names, to a statistical type.
var declaredTypes = map[string]models.VariableType{
	"enumerated":      models.TypeEnumerated,
	"enum":            models.TypeEnumerated,
	"codeableconcept": models.TypeEnumerated,
	"numeric":         models.TypeNumeric,
	"quantity":        models.TypeNumeric,
	"integer":         models.TypeNumeric,
	"decimal":         models.TypeNumeric,
	"text":            models.TypeText,
	"string":          models.TypeText,
	"temporal":        models.TypeTemporal,
	"datetime":        models.TypeTemporal,
	"date":            models.TypeTemporal,
}

// ParseType resolves a declared type name. ok is false for names it does not know.
func ParseType(declared string) (t models.VariableType, ok bool) {
	t, ok = declaredTypes[strings.ToLower(strings.TrimSpace(declared))]
	return t, ok
}

// Variable is one declared column of a table. Its type and vocabulary never change
// after construction: a vocabulary is present exactly when the type is Enumerated.
type Variable struct {
	name       string
	kind       models.VariableType
	vocabulary *Vocabulary
	missing    MissingEncoding
}

// NewVariable builds a variable from a data-dictionary declaration.
// Unknown types, and Enumerated declarations without a vocabulary, fall back to Text.
func NewVariable(name, declared string, vocabulary *Vocabulary, missing MissingEncoding) *Variable {
	kind, ok := ParseType(declared)
	if !ok {
		zap.L().Warn("unrecognized variable type, summarizing as text",
			zap.String("variable", name), zap.String("type", declared))
		kind = models.TypeText
	}
	if kind == models.TypeEnumerated && vocabulary == nil {
		zap.L().Warn("enumerated variable has no vocabulary, summarizing as text",
			zap.String("variable", name))
		kind = models.TypeText
	}
	if kind != models.TypeEnumerated {
		vocabulary = nil
	}
	if missing == nil {
		missing = MissingEncoding{}
	}
	return &Variable{name: name, kind: kind, vocabulary: vocabulary, missing: missing}
}

func (v *Variable) Name() string              { return v.name }
func (v *Variable) Type() models.VariableType { return v.kind }
func (v *Variable) Vocabulary() *Vocabulary   { return v.vocabulary }
func (v *Variable) Missing() MissingEncoding  { return v.missing }

// sameAs reports whether accumulators of v and other may be merged: same name and
// type, the same code set and the same missing encoding.
func (v *Variable) sameAs(other *Variable) bool {
	if v == other {
		return true
	}
	return v.name == other.name && v.kind == other.kind &&
		v.vocabulary.sameCodes(other.vocabulary) && v.missing.equal(other.missing)
}
