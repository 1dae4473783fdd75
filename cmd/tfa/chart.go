package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/RyanBlaney/sonido-tfa/analysis"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
)

// maxHeatmapColumns bounds the rendered time resolution of the heatmap
const maxHeatmapColumns = 600

// renderHTML writes an HTML page with the signal, the wavelet power heatmap
// and the ridge period trace
func renderHTML(w io.Writer, title string, res *analysis.Result) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(
		signalChart(res),
		heatmapChart(title, res),
		ridgeChart(res),
	)
	return page.Render(w)
}

func timeLabels(tvec []float64, step int) []string {
	labels := make([]string, 0, len(tvec)/step+1)
	for i := 0; i < len(tvec); i += step {
		labels = append(labels, strconv.FormatFloat(tvec[i], 'g', 6, 64))
	}
	return labels
}

func signalChart(res *analysis.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Signal"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
	)

	raw := make([]opts.LineData, len(res.Raw))
	for i, v := range res.Raw {
		raw[i] = opts.LineData{Value: v}
	}
	line.SetXAxis(timeLabels(res.Time, 1)).AddSeries("raw", raw)

	if res.Trend != nil {
		trend := make([]opts.LineData, len(res.Trend))
		for i, v := range res.Trend {
			trend[i] = opts.LineData{Value: v}
		}
		line.AddSeries("trend", trend)
	}
	return line
}

func heatmapChart(title string, res *analysis.Result) *charts.HeatMap {
	spec := res.Spectrum
	rows, cols := spec.Dims()
	step := max(1, cols/maxHeatmapColumns)

	periodLabels := make([]string, rows)
	for i, p := range spec.Periods {
		periodLabels[i] = strconv.FormatFloat(p, 'g', 4, 64)
	}

	data := make([]opts.HeatMapData, 0, rows*(cols/step+1))
	for r := range rows {
		for x, c := 0, 0; c < cols; x, c = x+1, c+step {
			data = append(data, opts.HeatMapData{Value: [3]any{x, r, spec.Modulus.At(r, c)}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("wavelet power (%s)", spec.Normalization),
		}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: periodLabels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        0,
			Max:        float32(floats.Max(spec.Modulus.RawMatrix().Data)),
			InRange:    &opts.VisualMapInRange{Color: []string{"#f7fbff", "#6baed6", "#08306b"}},
		}),
	)
	hm.SetXAxis(timeLabels(res.Time, step)).AddSeries("power", data)
	return hm
}

func ridgeChart(res *analysis.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Ridge", Subtitle: res.Method}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
	)

	rec := res.Ridge
	labels := make([]string, rec.Len())
	periods := make([]opts.LineData, rec.Len())
	for i := range rec.Len() {
		labels[i] = strconv.FormatFloat(rec.Time[i], 'g', 6, 64)
		periods[i] = opts.LineData{Value: rec.Periods[i]}
	}
	line.SetXAxis(labels).AddSeries("period", periods)

	if rec.SmoothedPeriods != nil {
		smoothed := make([]opts.LineData, rec.Len())
		for i, v := range rec.SmoothedPeriods {
			smoothed[i] = opts.LineData{Value: v}
		}
		line.AddSeries("period (smoothed)", smoothed)
	}
	return line
}
