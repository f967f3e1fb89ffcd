package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []float64 `json:"counts"`
}

// NewHistogram bins the finite entries of values into equal-width bins
// spanning [min, max], or a unit-wide range around a constant input. It returns an empty Histogram when nothing is finite.
func NewHistogram(values []float64, bins int) Histogram {
	if bins < 1 {
		bins = 1
	}
	finite := Finite(values)
	if len(finite) == 0 {
		return Histogram{}
	}
	sort.Float64s(finite)

	lo, top := finite[0], finite[len(finite)-1]
	hi := math.Nextafter(top, math.Inf(1))
	if lo == top {
		lo, hi = top-0.5, top+0.5
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)
	edges[bins] = hi

	counts := stat.Histogram(nil, edges, finite, nil)
	return Histogram{Edges: edges, Counts: counts}
}

func (h Histogram) Bins() int { return len(h.Counts) }

// Centers returns the midpoint of each bin.
func (h Histogram) Centers() []float64 {
	out := make([]float64, len(h.Counts))
	for i := range h.Counts {
		out[i] = (h.Edges[i] + h.Edges[i+1]) / 2
	}
	return out
}

func (h Histogram) Total() float64 {
	return floats.Sum(h.Counts)
}
