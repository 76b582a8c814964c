package plot

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"

	"github.com/pivolan/ddsummary/domain/models"
)

// RenderEnumerationPage writes an HTML page with one interactive bar chart per
// plottable result. Numeric results and results without observations are skipped.
// It returns the number of charts written.
func RenderEnumerationPage(w io.Writer, title string, results []models.SummaryResult) (int, error) {
	page := components.NewPage()
	page.PageTitle = title

	n := 0
	for _, res := range results {
		data, ok := NewEnumerationData(res)
		if !ok || findMaxValue(data.getYValues()) <= 0 {
			continue
		}
		page.AddCharts(newBar(data))
		n++
	}
	if n == 0 {
		return 0, errors.Wrap(ErrNothingToPlot, title)
	}
	if err := page.Render(w); err != nil {
		return 0, errors.Wrap(err, "render page")
	}
	return n, nil
}

func newBar(d dataEnumerationForGraph) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: d.GetNameGraph()}),
		charts.WithYAxisOpts(opts.YAxis{Name: d.getNameYAxis()}),
	)
	items := make([]opts.BarData, 0, len(d.yValues))
	for _, y := range d.yValues {
		items = append(items, opts.BarData{Value: y})
	}
	bar.SetXAxis(d.getXValues()).AddSeries(d.getNameYAxis(), items)
	return bar
}
