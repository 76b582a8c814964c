package plot

import (
	"bytes"
	"math"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
)

// ErrNothingToPlot is returned for data without a single positive bar.
var ErrNothingToPlot = errors.New("nothing to plot")

// calculateGridStep picks a round tick step for an axis running up to maxValue.
func calculateGridStep(maxValue float64) float64 {
	if maxValue <= 0 {
		return 0
	}
	if maxValue < 1e-10 {
		return 1e-10
	}

	magnitude := math.Pow(10, math.Floor(math.Log10(maxValue)))
	// normalized lies in [1, 10)
	normalized := maxValue / magnitude

	var step float64
	switch {
	case normalized <= 1:
		step = 0.2
	case normalized <= 2:
		step = 0.5
	case normalized <= 5:
		step = 1.0
	default:
		step = 2.0
	}

	finalStep := step * magnitude
	if finalStep >= 1000 {
		return math.Round(finalStep/100) * 100
	}
	if finalStep >= 100 {
		return math.Round(finalStep/10) * 10
	}
	// Counts are whole numbers.
	if finalStep < 1 {
		return 1
	}
	return finalStep
}

// DrawPlotBar renders data as a PNG bar chart.
func DrawPlotBar(data dataForGraph) ([]byte, error) {
	max := findMaxValue(data.getYValues())
	if max <= 0 {
		return nil, errors.Wrap(ErrNothingToPlot, data.GetNameGraph())
	}

	barValues := data.generateBarValues()
	paddingX := customizePaddingXBottom(barValues)
	width, height := data.calculateChartDimensions(100)

	bar := chart.BarChart{}
	bar.Title = data.GetNameGraph()
	bar.Background = chart.Style{
		FontSize:    160,
		StrokeColor: chart.ColorBlack,
		Padding: chart.Box{
			Bottom: paddingX,
			Top:    50,
		},
	}
	bar.Height = height + 50
	bar.Width = width + paddingX + 50
	bar.BarWidth = 60
	bar.Bars = barValues
	bar.YAxis = chart.YAxis{
		Name: data.getNameYAxis(),
		Range: &chart.ContinuousRange{
			Min: 0.0,
			Max: max,
		},
		Style: chart.Style{
			StrokeWidth: 2,
			StrokeColor: chart.ColorBlack,
			FontSize:    17,
		},
		Ticks: data.generateGrid(),
		GridMinorStyle: chart.Style{
			StrokeColor: chart.ColorBlack,
			StrokeWidth: 1,
			DotWidth:    1,
		},
		GridMajorStyle: chart.Style{
			StrokeColor:     chart.ColorBlack,
			StrokeWidth:     1,
			DotWidth:        1,
			StrokeDashArray: []float64{5.0, 5.0},
		},
	}
	bar.XAxis = chart.Style{
		StrokeWidth:         2,
		StrokeColor:         chart.ColorBlack,
		TextRotationDegrees: 88,
		FontSize:            17,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := bar.Render(chart.PNG, buffer); err != nil {
		return nil, errors.Wrap(err, "render chart")
	}
	return buffer.Bytes(), nil
}

func findMaxValue(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	max := y[0]
	for _, v := range y {
		if v > max {
			max = v
		}
	}
	return max
}

func customizePaddingXBottom(values []chart.Value) int {
	count := 0
	for _, v := range values {
		if len(v.Label) > count {
			count = len(v.Label)
		}
	}
	return count * 8
}
