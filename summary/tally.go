package summary

import (
	"sort"

	"github.com/pivolan/ddsummary/domain/models"
)

const topValuesLimit = 5

// tallyState counts exact values. Text cells and encoded temporal offsets are
// both summarized this way; no date arithmetic happens here.
type tallyState struct {
	values map[string]int64
}

func newTallyState() *tallyState {
	return &tallyState{values: map[string]int64{}}
}

func (s *tallyState) add(value string) Outcome {
	s.values[value]++
	return Valid
}

func (s *tallyState) merge(other state) {
	for v, n := range other.(*tallyState).values {
		s.values[v] += n
	}
}

func (s *tallyState) reset() {
	s.values = map[string]int64{}
}

func (s *tallyState) clone() state {
	c := newTallyState()
	for v, n := range s.values {
		c.values[v] = n
	}
	return c
}

func (s *tallyState) finalize(r *models.SummaryResult) {
	r.Distinct = len(s.values)
	r.TopValues = topValues(s.values, topValuesLimit)
}

// topValues orders by count descending, then by value.
func topValues(values map[string]int64, limit int) []models.ValueCount {
	top := make([]models.ValueCount, 0, len(values))
	for v, n := range values {
		top = append(top, models.ValueCount{Value: v, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Value < top[j].Value
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top
}
