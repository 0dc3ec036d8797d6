package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/iontrim/internal/stats"
	"github.com/san-kum/iontrim/internal/trim"
)

// DepthPlot draws the inner bins of a depth histogram.
func DepthPlot(h *stats.Histogram, height, width int) string {
	inner := h.Inner(0)
	data := make([]float64, len(inner))
	for i, c := range inner {
		data[i] = float64(c)
	}
	if len(data) == 1 {
		data = append(data, data[0])
	}

	caption := fmt.Sprintf("ions per %.0f Å bin, depth %.0f..%.0f Å", h.Width, h.Lo, h.Hi)
	if under, over := h.Underflow(0), h.Overflow(0); under+over > 0 {
		caption += fmt.Sprintf(" (%d below, %d above)", under, over)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
	)
}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan,
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Magenta,
	asciigraph.Red,
	asciigraph.Blue,
}

// TimingPlot draws seconds against ion count, one line per strategy.
func TimingPlot(counts []int, times map[string][]float64, height, width int) string {
	names := make([]string, 0, len(times))
	for name := range times {
		names = append(names, name)
	}
	sort.Strings(names)

	data := make([][]float64, len(names))
	colors := make([]asciigraph.AnsiColor, len(names))
	for i, name := range names {
		row := times[name]
		if len(row) == 1 {
			row = []float64{row[0], row[0]}
		}
		data[i] = row
		colors[i] = seriesColors[i%len(seriesColors)]
	}

	labels := make([]string, len(counts))
	for i, n := range counts {
		labels[i] = fmt.Sprint(n)
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(names...),
		asciigraph.Caption("seconds vs ions: "+strings.Join(labels, ", ")),
	)
}

func formatValue(v stats.Value, unit string) string {
	if unit != "" {
		unit = " " + unit
	}
	return fmt.Sprintf("%.2f ± %.2f%s", v.V, v.Err, unit)
}

// RenderSummary renders the outcome counts and depth moments of a run.
func RenderSummary(title string, s trim.Summary) string {
	rows := []string{
		Title.Render(title),
		"",
		Row("ions", fmt.Sprint(s.Total)),
		Row("stopped inside", fmt.Sprintf("%d / %d", s.Inside, s.Total)),
		Row("backscattered", fmt.Sprint(s.Backscattered)),
		Row("transmitted", fmt.Sprint(s.Transmitted)),
	}
	if s.Inside > 0 {
		rows = append(rows,
			"",
			Row("mean depth", formatValue(s.Depth.Mean, "Å")),
			Row("straggling", formatValue(s.Depth.Std, "Å")),
			Row("skewness", formatValue(s.Depth.Skewness, "")),
			Row("kurtosis", formatValue(s.Depth.Kurtosis, "")),
			Row("lateral x std", formatValue(s.X.Std, "Å")),
			Row("lateral y std", formatValue(s.Y.Std, "Å")),
		)
	} else {
		rows = append(rows, "", Warning.Render("no ion stopped inside the target"))
	}
	return Panel.Render(strings.Join(rows, "\n"))
}
