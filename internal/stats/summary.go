package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the lift distribution of one run. Mean and StdDev come
// from the run's Accumulator and therefore include non-finite trials; the
// order statistics are taken over the finite trials only.
type Summary struct {
	Method    string  `json:"method"`
	Trials    int     `json:"trials"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"stddev"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	P05       float64 `json:"p05"`
	P50       float64 `json:"p50"`
	P95       float64 `json:"p95"`
	NonFinite int     `json:"non_finite"`
}

// Summarize combines the accumulator's moments with order statistics of
// values. values may be nil when the caller did not keep the trials.
func Summarize(acc Accumulator, values []float64) Summary {
	s := Summary{
		Method: acc.Name(),
		Trials: acc.Count(),
		Mean:   acc.Mean(),
		StdDev: acc.StdDev(),
	}

	finite := Finite(values)
	s.NonFinite = len(values) - len(finite)
	if len(finite) == 0 {
		return s
	}

	sort.Float64s(finite)
	s.Min = floats.Min(finite)
	s.Max = floats.Max(finite)
	s.P05 = stat.Quantile(0.05, stat.Empirical, finite, nil)
	s.P50 = stat.Quantile(0.50, stat.Empirical, finite, nil)
	s.P95 = stat.Quantile(0.95, stat.Empirical, finite, nil)
	return s
}

// IsFinite reports whether the reported moments are usable numbers.
func (s Summary) IsFinite() bool {
	return !math.IsNaN(s.Mean) && !math.IsInf(s.Mean, 0) &&
		!math.IsNaN(s.StdDev) && !math.IsInf(s.StdDev, 0)
}

// Finite returns a copy of values without NaN and ±Inf entries.
func Finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// RunningMean returns the cumulative mean after each value.
func RunningMean(values []float64) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		out[i] = sum / float64(i+1)
	}
	return out
}
