package summary

import (
	"math/big"

	"github.com/pivolan/ddsummary/domain/models"
)

// sumPrecision holds any sum of float64 values exactly: their bits span at most
// 2098 binary places, the rest absorbs carries. Rounding happens only in finalize,
// so merge order never changes the result.
const sumPrecision = 2200

// numericState keeps a running sum and range. A new value only replaces an
// extreme when strictly beyond it, so equal values keep the first one seen.
type numericState struct {
	sum      *big.Float
	n        int64
	min, max float64
	hasRange bool
	invalid  int64
}

func newNumericState() *numericState {
	return &numericState{sum: new(big.Float).SetPrec(sumPrecision)}
}

func (s *numericState) add(value string) Outcome {
	c := classifyNumber(value)
	if c.Outcome != Valid {
		s.invalid++
		return c.Outcome
	}
	s.extend(c.Value, c.Value)
	s.sum.Add(s.sum, new(big.Float).SetFloat64(c.Value))
	s.n++
	return Valid
}

func (s *numericState) extend(low, high float64) {
	if !s.hasRange {
		s.min, s.max, s.hasRange = low, high, true
		return
	}
	if low < s.min {
		s.min = low
	}
	if high > s.max {
		s.max = high
	}
}

func (s *numericState) merge(other state) {
	o := other.(*numericState)
	s.sum.Add(s.sum, o.sum)
	s.n += o.n
	s.invalid += o.invalid
	if o.hasRange {
		s.extend(o.min, o.max)
	}
}

func (s *numericState) reset() {
	*s = *newNumericState()
}

func (s *numericState) clone() state {
	c := *s
	c.sum = new(big.Float).Copy(s.sum)
	return &c
}

func (s *numericState) finalize(r *models.SummaryResult) {
	sum, _ := s.sum.Float64()
	n := &models.NumericSummary{Sum: sum, Invalid: s.invalid}
	if s.n > 0 {
		q := new(big.Float).SetPrec(sumPrecision).Quo(s.sum, new(big.Float).SetInt64(s.n))
		mean, _ := q.Float64()
		n.Mean = &mean
	}
	if s.hasRange {
		low, high := s.min, s.max
		n.Min, n.Max = &low, &high
	}
	r.Numeric = n
}
