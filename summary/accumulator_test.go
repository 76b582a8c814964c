package summary

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/ddsummary/domain/models"
)

func sexVariable(missing MissingEncoding) *Variable {
	vocab := NewVocabulary(map[string]string{"M": "Male", "F": "Female"})
	return NewVariable("sex", "Enumerated", vocab, missing)
}

func addAll(a *Accumulator, values ...string) *Accumulator {
	for _, v := range values {
		a.Add(v)
	}
	return a
}

func finalize(t *testing.T, a *Accumulator) models.SummaryResult {
	t.Helper()
	r, err := a.Finalize()
	require.NoError(t, err)
	return r
}

func TestEnumeratedScenario(t *testing.T) {
	a := addAll(New(sexVariable(NewMissingEncoding("", "NA"))), "M", "F", "M", "NA", "X")

	r := finalize(t, a)
	assert.Equal(t, int64(3), r.Count)
	assert.Equal(t, int64(2), r.Missing)
	require.NotNil(t, r.Enum)
	assert.Equal(t, map[string]int64{"M": 2, "F": 1}, r.Enum.Observed)
	assert.Equal(t, map[string]int64{"X": 1}, r.Enum.Unexpected)
	assert.Empty(t, r.Enum.Missed)
}

func TestEnumeratedNotApplicable(t *testing.T) {
	a := addAll(New(sexVariable(nil)), "-", " M ", "-")

	r := finalize(t, a)
	assert.Equal(t, int64(1), r.Count)
	assert.Equal(t, int64(2), r.Missing)
	assert.Empty(t, r.Enum.Unexpected)
	assert.Equal(t, []string{"F"}, r.Enum.Missed)
	assert.Equal(t, map[string]int64{"F": 0, "M": 1}, r.Enum.Counts)
}

func TestNumericScenarioWithInvalidCell(t *testing.T) {
	v := NewVariable("age", "Numeric", nil, NewMissingEncoding(""))
	a := New(v)

	accepted := []bool{a.Add("10"), a.Add("20"), a.Add("abc"), a.Add("")}
	assert.Equal(t, []bool{true, true, false, false}, accepted)

	r := finalize(t, a)
	assert.Equal(t, int64(2), r.Count)
	assert.Equal(t, int64(1), r.Missing)
	require.NotNil(t, r.Numeric)
	assert.Equal(t, 30.0, r.Numeric.Sum)
	require.NotNil(t, r.Numeric.Mean)
	assert.Equal(t, 15.0, *r.Numeric.Mean)
	assert.Equal(t, int64(1), r.Numeric.Invalid)
}

func TestNumericExtremesTieBreak(t *testing.T) {
	a := addAll(New(NewVariable("score", "Quantity", nil, nil)), "5", "5", "3", "3")

	r := finalize(t, a)
	assert.Equal(t, int64(4), r.Count)
	assert.Equal(t, 16.0, r.Numeric.Sum)
	assert.Equal(t, 4.0, *r.Numeric.Mean)
	assert.Equal(t, 3.0, *r.Numeric.Min)
	assert.Equal(t, 5.0, *r.Numeric.Max)
}

func TestNumericNaNAndInfAreInvalid(t *testing.T) {
	a := addAll(New(NewVariable("bmi", "decimal", nil, nil)), "NaN", "+Inf", "1e400", "2")

	r := finalize(t, a)
	assert.Equal(t, int64(1), r.Count)
	assert.Equal(t, int64(3), r.Numeric.Invalid)
	assert.Equal(t, int64(0), r.Missing)
}

func TestNumericWithoutValuesHasNoMean(t *testing.T) {
	a := addAll(New(NewVariable("age", "numeric", nil, NewMissingEncoding("NA"))), "NA", "")

	r := finalize(t, a)
	assert.Equal(t, int64(0), r.Count)
	assert.Equal(t, int64(2), r.Missing)
	assert.Nil(t, r.Numeric.Mean)
	assert.Nil(t, r.Numeric.Min)
	assert.Nil(t, r.Numeric.Max)
}

func TestTextAndTemporalDistinct(t *testing.T) {
	text := addAll(New(NewVariable("site", "string", nil, nil)), "a", "b", "a", " a", "")
	r := finalize(t, text)
	assert.Equal(t, models.TypeText, r.Type)
	assert.Equal(t, 2, r.Distinct)
	assert.Equal(t, int64(4), r.Count)
	assert.Equal(t, int64(1), r.Missing)
	assert.Equal(t, []models.ValueCount{{Value: "a", Count: 3}, {Value: "b", Count: 1}}, r.TopValues)

	temporal := addAll(New(NewVariable("age_at_visit", "dateTime", nil, nil)), "P10D", "P10D", "P3D")
	r = finalize(t, temporal)
	assert.Equal(t, models.TypeTemporal, r.Type)
	assert.Equal(t, 2, r.Distinct)
	assert.Nil(t, r.Numeric)
}

func TestVariantSelectionFallsBackToText(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		vocab    *Vocabulary
		want     models.VariableType
	}{
		{"unknown type", "Attachment", nil, models.TypeText},
		{"enumerated without vocabulary", "CodeableConcept", nil, models.TypeText},
		{"vocabulary dropped for numeric", "Quantity", NewVocabulary(map[string]string{"1": "one"}), models.TypeNumeric},
		{"enumerated", "enumerated", NewVocabulary(map[string]string{"1": "one"}), models.TypeEnumerated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVariable("x", tt.declared, tt.vocab, nil)
			assert.Equal(t, tt.want, v.Type())
			assert.Equal(t, tt.want == models.TypeEnumerated, v.Vocabulary() != nil)
			assert.Equal(t, tt.want, New(v).Kind())
		})
	}
}

func TestMergeContractViolations(t *testing.T) {
	na := NewMissingEncoding("NA")
	sex := func(codes map[string]string, missing MissingEncoding) *Accumulator {
		return New(NewVariable("sex", "Enumerated", NewVocabulary(codes), missing))
	}
	mf := map[string]string{"M": "Male", "F": "Female"}

	tests := []struct {
		name        string
		left, right *Accumulator
		violation   bool
	}{
		{"different name", New(NewVariable("age", "numeric", nil, nil)), New(NewVariable("height", "numeric", nil, nil)), true},
		{"different type", New(NewVariable("age", "numeric", nil, nil)), New(NewVariable("age", "text", nil, nil)), true},
		{"different vocabulary", sex(mf, na), sex(map[string]string{"1": "Male", "2": "Female"}, na), true},
		{"extra code", sex(mf, na), sex(map[string]string{"M": "Male", "F": "Female", "U": "Unknown"}, na), true},
		{"different missing encoding", New(NewVariable("age", "numeric", nil, na)), New(NewVariable("age", "numeric", nil, NewMissingEncoding("NA", "-999"))), true},
		{"equal declarations", sex(mf, na), sex(map[string]string{"F": "female", "M": "male"}, NewMissingEncoding("NA")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.left.Add("M")
			before := finalize(t, tt.left)
			err := tt.left.Merge(tt.right)
			if !tt.violation {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrContractViolation))
			assert.Empty(t, cmp.Diff(before, finalize(t, tt.left)))
		})
	}

	age := New(NewVariable("age", "numeric", nil, nil))
	err := age.Merge(nil)
	assert.True(t, errors.Is(err, ErrNotConstructed))
	assert.False(t, errors.Is(err, ErrContractViolation))

	var zero Accumulator
	_, err = zero.Finalize()
	assert.True(t, errors.Is(err, ErrNotConstructed))
}

func TestMergeIntoSelfDoubles(t *testing.T) {
	a := addAll(New(NewVariable("site", "text", nil, nil)), "a", "b")
	require.NoError(t, a.Merge(a))

	r := finalize(t, a)
	assert.Equal(t, int64(4), r.Count)
	assert.Equal(t, []models.ValueCount{{Value: "a", Count: 2}, {Value: "b", Count: 2}}, r.TopValues)
}

// variants returns one variable per accumulator variant together with a pool of
// raw values covering valid, missing and invalid cells.
func variants() map[string]struct {
	variable *Variable
	pool     []string
} {
	missing := NewMissingEncoding("NA", "-999")
	return map[string]struct {
		variable *Variable
		pool     []string
	}{
		"enumerated": {sexVariable(missing), []string{"M", "F", "X", "-", "NA", "", "U"}},
		"numeric":    {NewVariable("age", "numeric", nil, missing), []string{"1", "2", "7", "-3", "abc", "NA", "", "-999", "12", "0.1", "0.2", "0.3", "2.5e-3", "1e16"}},
		"text":       {NewVariable("site", "text", nil, missing), []string{"a", "b", "c", "NA", "", "d"}},
		"temporal":   {NewVariable("visit", "temporal", nil, missing), []string{"P1D", "P2D", "NA", "P3D"}},
	}
}

func randomAccumulator(v *Variable, pool []string, rnd *rand.Rand) *Accumulator {
	a := New(v)
	for i := rnd.Intn(20); i > 0; i-- {
		a.Add(pool[rnd.Intn(len(pool))])
	}
	return a
}

func merged(t *testing.T, parts ...*Accumulator) models.SummaryResult {
	t.Helper()
	acc := parts[0].Clone()
	for _, p := range parts[1:] {
		require.NoError(t, acc.Merge(p))
	}
	return finalize(t, acc)
}

func TestMergeIsCommutative(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for name, tc := range variants() {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				a := randomAccumulator(tc.variable, tc.pool, rnd)
				b := randomAccumulator(tc.variable, tc.pool, rnd)
				if diff := cmp.Diff(merged(t, a, b), merged(t, b, a)); diff != "" {
					t.Fatalf("merge(a,b) != merge(b,a) (-ab +ba):\n%s", diff)
				}
			}
		})
	}
}

func TestMergeIsAssociative(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	for name, tc := range variants() {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				a := randomAccumulator(tc.variable, tc.pool, rnd)
				b := randomAccumulator(tc.variable, tc.pool, rnd)
				c := randomAccumulator(tc.variable, tc.pool, rnd)

				left := a.Clone()
				require.NoError(t, left.Merge(b))
				require.NoError(t, left.Merge(c))

				bc := b.Clone()
				require.NoError(t, bc.Merge(c))
				right := a.Clone()
				require.NoError(t, right.Merge(bc))

				if diff := cmp.Diff(finalize(t, left), finalize(t, right)); diff != "" {
					t.Fatalf("(a+b)+c != a+(b+c):\n%s", diff)
				}
			}
		})
	}
}

func TestNumericSumIgnoresGrouping(t *testing.T) {
	v := NewVariable("dose", "decimal", nil, nil)
	tests := []struct {
		name    string
		a, b, c []string
		sum     float64
	}{
		{"tenths", []string{"0.1"}, []string{"0.2"}, []string{"0.3"}, 0.6},
		{"cancellation", []string{"1e16"}, []string{"1"}, []string{"-1e16"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left := addAll(New(v), tt.a...)
			require.NoError(t, left.Merge(addAll(New(v), tt.b...)))
			require.NoError(t, left.Merge(addAll(New(v), tt.c...)))

			bc := addAll(New(v), tt.b...)
			require.NoError(t, bc.Merge(addAll(New(v), tt.c...)))
			right := addAll(New(v), tt.a...)
			require.NoError(t, right.Merge(bc))

			l, r := finalize(t, left), finalize(t, right)
			assert.Empty(t, cmp.Diff(l, r))
			assert.Equal(t, tt.sum, l.Numeric.Sum)
		})
	}
}

func TestMergeMatchesSinglePass(t *testing.T) {
	values := []string{"4", "x", "9", "NA", "", "1", "9"}
	v := NewVariable("age", "numeric", nil, NewMissingEncoding("NA"))

	whole := addAll(New(v), values...)
	left := addAll(New(v), values[:3]...)
	right := addAll(New(v), values[3:]...)
	require.NoError(t, left.Merge(right))

	assert.Empty(t, cmp.Diff(finalize(t, whole), finalize(t, left)))
}

func TestMissingValuesNeverTouchStatistics(t *testing.T) {
	for name, tc := range variants() {
		t.Run(name, func(t *testing.T) {
			a := addAll(New(tc.variable), tc.pool[:2]...)
			before := finalize(t, a)
			for i := 0; i < 10; i++ {
				assert.False(t, a.Add("NA"))
				assert.False(t, a.Add("  "))
			}
			after := finalize(t, a)
			assert.Equal(t, before.Missing+20, after.Missing)
			after.Missing = before.Missing
			assert.Empty(t, cmp.Diff(before, after))
		})
	}
}

func TestEnumerationPartitionIsComplete(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	vocab := NewVocabulary(map[string]string{"1": "a", "2": "b", "3": "c", "4": "d"})
	v := NewVariable("race", "enumerated", vocab, nil)
	pool := []string{"1", "2", "3", "4", "5", "", "-"}
	for i := 0; i < 100; i++ {
		r := finalize(t, randomAccumulator(v, pool, rnd))
		seen := map[string]bool{}
		for code := range r.Enum.Observed {
			seen[code] = true
		}
		for _, code := range r.Enum.Missed {
			require.False(t, seen[code], fmt.Sprintf("%s both observed and missed", code))
			seen[code] = true
		}
		assert.Len(t, seen, vocab.Len())
		for _, code := range vocab.Codes() {
			assert.True(t, seen[code])
		}
	}
}

func TestResetMatchesFreshAccumulator(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	for name, tc := range variants() {
		t.Run(name, func(t *testing.T) {
			a := randomAccumulator(tc.variable, tc.pool, rnd)
			a.Add(tc.pool[0])
			a.Reset()
			assert.Empty(t, cmp.Diff(finalize(t, New(tc.variable)), finalize(t, a)))
			assert.Equal(t, tc.variable.Vocabulary(), a.Variable().Vocabulary())
		})
	}
}

func TestFinalizeIsRepeatable(t *testing.T) {
	a := addAll(New(sexVariable(nil)), "M", "Z")
	first := finalize(t, a)
	second := finalize(t, a)
	assert.Empty(t, cmp.Diff(first, second))

	a.Add("F")
	assert.Equal(t, int64(1), first.Count)
}

func TestCloneIsIndependent(t *testing.T) {
	a := addAll(New(NewVariable("site", "text", nil, nil)), "a")
	c := a.Clone()
	c.Add("b")

	assert.Equal(t, 1, finalize(t, a).Distinct)
	assert.Equal(t, 2, finalize(t, c).Distinct)
}
