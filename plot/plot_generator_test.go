package plot

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/ddsummary/domain/models"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func sexResult() models.SummaryResult {
	return models.SummaryResult{
		Table:    "participant",
		Variable: "sex",
		Type:     models.TypeEnumerated,
		Count:    3,
		Missing:  1,
		Enum: &models.EnumReport{
			Counts:     map[string]int64{"M": 2, "F": 1, "U": 0},
			Observed:   map[string]int64{"M": 2, "F": 1},
			Missed:     []string{"U"},
			Unexpected: map[string]int64{"X": 1},
		},
	}
}

func TestNewEnumerationData(t *testing.T) {
	d, ok := NewEnumerationData(sexResult())
	require.True(t, ok)
	assert.Equal(t, "participant.sex", d.GetNameGraph())
	assert.Equal(t, []string{"F", "M", "U", "? X"}, d.getXValues())
	assert.Equal(t, []float64{1, 2, 0, 1}, d.getYValues())

	text := models.SummaryResult{Table: "t", Variable: "race", TopValues: []models.ValueCount{{Value: "white", Count: 4}, {Value: "asian", Count: 2}}}
	d, ok = NewEnumerationData(text)
	require.True(t, ok)
	assert.Equal(t, []string{"white", "asian"}, d.getXValues())

	_, ok = NewEnumerationData(models.SummaryResult{Numeric: &models.NumericSummary{}})
	assert.False(t, ok)
}

func TestCalculateGridStep(t *testing.T) {
	tests := []struct {
		max  float64
		want float64
	}{
		{0, 0},
		{3, 1},
		{10, 2},
		{45, 10},
		{365, 100},
		{1500, 500},
		{9000, 2000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, calculateGridStep(tt.max), "max %v", tt.max)
	}
}

func TestDrawPlotBar(t *testing.T) {
	d, _ := NewEnumerationData(sexResult())
	b, err := DrawPlotBar(d)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
}

func TestDrawPlotBarWithoutObservations(t *testing.T) {
	res := sexResult()
	res.Enum.Counts = map[string]int64{"M": 0, "F": 0}
	res.Enum.Unexpected = map[string]int64{}
	d, _ := NewEnumerationData(res)

	_, err := DrawPlotBar(d)
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestRenderEnumerationPage(t *testing.T) {
	var buf bytes.Buffer
	n, err := RenderEnumerationPage(&buf, "phs001", []models.SummaryResult{
		sexResult(),
		{Variable: "age", Numeric: &models.NumericSummary{Sum: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), "participant.sex")

	_, err = RenderEnumerationPage(&buf, "empty", nil)
	assert.ErrorIs(t, err, ErrNothingToPlot)
}
