package summary

import (
	"sort"

	"github.com/pivolan/ddsummary/domain/models"
)

type enumState struct {
	vocabulary *Vocabulary
	counts     map[string]int64
	unexpected map[string]int64
}

func newEnumState(v *Vocabulary) *enumState {
	return &enumState{
		vocabulary: v,
		counts:     map[string]int64{},
		unexpected: map[string]int64{},
	}
}

// add counts declared codes. Anything else is missing, and unless it is the
// not-applicable sentinel it is also tallied as an unexpected code.
func (s *enumState) add(value string) Outcome {
	if s.vocabulary.Has(value) {
		s.counts[value]++
		return Valid
	}
	if value != NotApplicable {
		s.unexpected[value]++
	}
	return Missing
}

func (s *enumState) merge(other state) {
	o := other.(*enumState)
	for code, n := range o.counts {
		s.counts[code] += n
	}
	for value, n := range o.unexpected {
		s.unexpected[value] += n
	}
}

func (s *enumState) reset() {
	s.counts = map[string]int64{}
	s.unexpected = map[string]int64{}
}

func (s *enumState) clone() state {
	c := newEnumState(s.vocabulary)
	for code, n := range s.counts {
		c.counts[code] = n
	}
	for value, n := range s.unexpected {
		c.unexpected[value] = n
	}
	return c
}

func (s *enumState) finalize(r *models.SummaryResult) {
	report := models.EnumReport{
		Counts:     map[string]int64{},
		Observed:   map[string]int64{},
		Missed:     []string{},
		Unexpected: map[string]int64{},
	}
	for _, code := range s.vocabulary.Codes() {
		n := s.counts[code]
		report.Counts[code] = n
		if n > 0 {
			report.Observed[code] = n
		} else {
			report.Missed = append(report.Missed, code)
		}
	}
	for value, n := range s.unexpected {
		report.Unexpected[value] = n
	}
	sort.Strings(report.Missed)
	r.Distinct = len(report.Observed)
	r.Enum = &report
}
