package plot

import (
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pivolan/ddsummary/domain/models"
)

// unexpectedLabel prefixes bars for codes outside the vocabulary.
const unexpectedLabel = "? "

type dataEnumerationForGraph struct {
	xValues   []string
	yValues   []float64
	colors    []drawing.Color
	nameYAxis string
	nameGraph string
}

// NewEnumerationData builds bar data from a finalized result: per-code counts of
// an enumerated variable (declared codes first, then unexpected ones) or the top
// values of a text or temporal variable. ok is false for numeric results.
func NewEnumerationData(res models.SummaryResult) (d dataEnumerationForGraph, ok bool) {
	d = dataEnumerationForGraph{
		nameYAxis: "count",
		nameGraph: fmt.Sprintf("%s.%s", res.Table, res.Variable),
	}
	switch {
	case res.Enum != nil:
		for _, code := range sortedKeys(res.Enum.Counts) {
			d.add(code, res.Enum.Counts[code], drawing.ColorBlue.WithAlpha(140))
		}
		for _, code := range sortedKeys(res.Enum.Unexpected) {
			d.add(unexpectedLabel+code, res.Enum.Unexpected[code], drawing.ColorRed.WithAlpha(140))
		}
	case res.Numeric == nil:
		for _, v := range res.TopValues {
			d.add(v.Value, v.Count, drawing.ColorPurple.WithAlpha(100))
		}
	default:
		return d, false
	}
	return d, true
}

func (d *dataEnumerationForGraph) add(label string, n int64, color drawing.Color) {
	d.xValues = append(d.xValues, label)
	d.yValues = append(d.yValues, float64(n))
	d.colors = append(d.colors, color)
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d dataEnumerationForGraph) GetNameGraph() string {
	return d.nameGraph
}
func (d dataEnumerationForGraph) getNameYAxis() string {
	return d.nameYAxis
}
func (d dataEnumerationForGraph) getYValues() []float64 {
	return d.yValues
}
func (d dataEnumerationForGraph) getXValues() []string {
	return d.xValues
}

func (d dataEnumerationForGraph) lenXValues() int {
	return len(d.xValues)
}

func (d dataEnumerationForGraph) calculateChartDimensions(minBarWidth float64) (width, height int) {
	if len(d.yValues) == 0 || d.lenXValues() <= 0 || minBarWidth <= 0 {
		return 0, 0
	}
	x := 1.1
	if d.lenXValues() < 2 {
		x = 10.0
	} else if d.lenXValues() < 10 {
		x = 3.0
	}

	const (
		paddingY     = 100 // room for the Y axis and its labels
		spacingRatio = 0.2 // gap between bars relative to bar width
		aspectRatio  = 9.0 / 16.0
	)

	barSpacing := minBarWidth * spacingRatio
	totalWidth := (minBarWidth+barSpacing)*float64(d.lenXValues()) + paddingY
	width = int(totalWidth*x) + paddingY
	height = int(float64(width) * aspectRatio)
	return width, height
}

func (d dataEnumerationForGraph) generateBarValues() []chart.Value {
	var bars []chart.Value
	xValues := d.getXValues()
	for i, y := range d.getYValues() {
		bars = append(bars, chart.Value{
			Value: y,
			Label: xValues[i],
			Style: chart.Style{
				FillColor: d.colors[i],
			},
		})
	}
	return bars
}

func (d dataEnumerationForGraph) generateGrid() []chart.Tick {
	max := findMaxValue(d.yValues)
	gridStep := calculateGridStep(max)
	if gridStep <= 0 {
		return nil
	}
	var ticks []chart.Tick
	for i := 0.0; i <= max; i += gridStep {
		ticks = append(ticks, chart.Tick{
			Value: i,
			Label: fmt.Sprintf("%.1f", i),
		})
	}
	if len(ticks) < 2 {
		return nil
	}
	return ticks
}
