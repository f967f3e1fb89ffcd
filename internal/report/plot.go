package report

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/liftmc/internal/stats"
)

const (
	plotHeight = 10
	plotWidth  = 80
)

// HistogramPlot draws bin counts against bin order. It returns an empty
// string for an empty histogram.
func HistogramPlot(h stats.Histogram) string {
	if h.Bins() == 0 {
		return ""
	}
	caption := fmt.Sprintf("lift histogram, %d bins from %.0f N to %.0f N", h.Bins(), h.Edges[0], h.Edges[h.Bins()])
	return asciigraph.Plot(h.Counts,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
	)
}

// ConvergencePlot draws the running mean of the finite lifts.
func ConvergencePlot(lifts []float64) string {
	finite := stats.Finite(lifts)
	if len(finite) == 0 {
		return ""
	}
	return asciigraph.Plot(stats.RunningMean(finite),
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("running mean over %d trials (N)", len(finite))),
	)
}
