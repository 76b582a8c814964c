package summary

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/pivolan/ddsummary/domain/models"
)

var (
	// ErrContractViolation marks a caller bug such as merging accumulators of
	// different variants or variables. It is never caused by bad data.
	ErrContractViolation = errors.New("accumulator contract violation")
	// ErrNotConstructed is returned when a nil or zero accumulator is used.
	ErrNotConstructed = errors.New("accumulator not constructed")
)

// NotApplicable is the enumerated cell value that means "does not apply".
// It counts as missing but is never reported as an unexpected code.
const NotApplicable = "-"

// state is the variant-specific payload of an Accumulator.
type state interface {
	// add consumes a trimmed, non-missing value.
	add(value string) Outcome
	merge(other state)
	reset()
	clone() state
	finalize(r *models.SummaryResult)
}

// Accumulator collects running statistics for one variable. The variant is fixed
// from the variable's type at construction. Not safe for concurrent use.
type Accumulator struct {
	variable *Variable
	count    int64
	missing  int64
	state    state
}

// New selects the accumulator variant for v.
func New(v *Variable) *Accumulator {
	a := &Accumulator{variable: v}
	switch v.Type() {
	case models.TypeNumeric:
		a.state = newNumericState()
	case models.TypeEnumerated:
		a.state = newEnumState(v.Vocabulary())
	default:
		// Text and Temporal share the distinct-value tally.
		a.state = newTallyState()
	}
	return a
}

func (a *Accumulator) constructed() bool {
	return a != nil && a.variable != nil && a.state != nil
}

func (a *Accumulator) Variable() *Variable { return a.variable }

func (a *Accumulator) Kind() models.VariableType { return a.variable.Type() }

// Count is the number of accepted non-missing values.
func (a *Accumulator) Count() int64 { return a.count }

func (a *Accumulator) MissingCount() int64 { return a.missing }

// Add consumes one raw cell and reports whether it was accepted as a non-missing
// value. Values that are empty or in the missing encoding only bump the missing
// count; numeric cells that fail to parse are tallied as invalid and rejected.
func (a *Accumulator) Add(raw string) bool {
	value := strings.TrimSpace(raw)
	if a.variable.Missing().Contains(value) {
		a.missing++
		return false
	}
	switch a.state.add(value) {
	case Valid:
		a.count++
		return true
	case Missing:
		a.missing++
	}
	return false
}

// Merge folds other into a. Both must be constructed for the same variable.
func (a *Accumulator) Merge(other *Accumulator) error {
	if !a.constructed() || !other.constructed() {
		return errors.Wrap(ErrNotConstructed, "merge")
	}
	if !a.variable.sameAs(other.variable) {
		return errors.Wrapf(ErrContractViolation, "cannot merge %s %q into %s %q",
			other.Kind(), other.variable.Name(), a.Kind(), a.variable.Name())
	}
	if a == other {
		other = other.Clone()
	}
	a.count += other.count
	a.missing += other.missing
	a.state.merge(other.state)
	return nil
}

// Reset returns the accumulator to its empty state, keeping variant and vocabulary.
func (a *Accumulator) Reset() {
	a.count = 0
	a.missing = 0
	a.state.reset()
}

func (a *Accumulator) Clone() *Accumulator {
	return &Accumulator{
		variable: a.variable,
		count:    a.count,
		missing:  a.missing,
		state:    a.state.clone(),
	}
}

// Finalize builds a SummaryResult from the current state. It has no side effects
// and may be called any number of times.
func (a *Accumulator) Finalize() (models.SummaryResult, error) {
	if !a.constructed() {
		return models.SummaryResult{}, errors.Wrap(ErrNotConstructed, "finalize")
	}
	r := models.SummaryResult{
		Variable: a.variable.Name(),
		Type:     a.variable.Type(),
		Count:    a.count,
		Missing:  a.missing,
	}
	a.state.finalize(&r)
	return r, nil
}
