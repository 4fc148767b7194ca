package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/depth.report/internal/db"
	"github.com/banshee-data/depth.report/internal/depthstats"
)

// StatsChart builds a line chart of band mean and population standard
// deviation over a session, with the acceptance window marked.
func StatsChart(title string, samples []db.StatsSample, th depthstats.Thresholds) *charts.Line {
	x := make([]string, 0, len(samples))
	mean := make([]opts.LineData, 0, len(samples))
	std := make([]opts.LineData, 0, len(samples))
	var t0 float64
	for i, s := range samples {
		at := float64(s.At.UnixNano()) / 1e9
		if i == 0 {
			t0 = at
		}
		x = append(x, fmt.Sprintf("%.2f", at-t0))
		mean = append(mean, opts.LineData{Value: s.Stats.Mean})
		std = append(std, opts.LineData{Value: s.Stats.StdPop})
	}

	inRange := 0
	for _, s := range samples {
		if s.InRange {
			inRange++
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Depth band statistics", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("samples=%d in range=%d", len(samples), inRange)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "m", NameLocation: "middle", NameGap: 40}),
	)
	line.SetXAxis(x).
		AddSeries("mean", mean,
			charts.WithMarkLineNameYAxisItemOpts(
				opts.MarkLineNameYAxisItem{Name: "mean min", YAxis: th.MeanMin},
				opts.MarkLineNameYAxisItem{Name: "mean max", YAxis: th.MeanMax},
			),
		).
		AddSeries("std (pop)", std,
			charts.WithMarkLineNameYAxisItemOpts(
				opts.MarkLineNameYAxisItem{Name: "std max", YAxis: th.StdMax},
			),
		)
	return line
}

// WriteStatsHTML renders StatsChart to w.
func WriteStatsHTML(w io.Writer, title string, samples []db.StatsSample, th depthstats.Thresholds) error {
	if err := StatsChart(title, samples, th).Render(w); err != nil {
		return fmt.Errorf("render stats chart: %w", err)
	}
	return nil
}
