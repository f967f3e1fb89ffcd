// Package stats aggregates per-trial lift values into summary statistics.
package stats

import (
	"errors"
	"fmt"
	"math"
)

const (
	MethodSumOfSquares = "sumsq"
	MethodWelford      = "welford"
)

var ErrUnknownMethod = errors.New("stats: unknown accumulation method")

// Accumulator folds a stream of values into a population mean and
// standard deviation.
type Accumulator interface {
	Name() string
	Observe(x float64)
	Count() int
	Mean() float64
	StdDev() float64
	Reset()
}

func NewAccumulator(method string) (Accumulator, error) {
	switch method {
	case "", MethodSumOfSquares:
		return &SumOfSquares{}, nil
	case MethodWelford:
		return &Welford{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

func Methods() []string {
	return []string{MethodSumOfSquares, MethodWelford}
}

// SumOfSquares keeps Σx and Σx² and derives the variance as E[x²] − E[x]².
// Rounding can push that difference slightly below zero for near-constant
// input; it is clamped to zero so StdDev never returns NaN for finite input.
type SumOfSquares struct {
	n     int
	sum   float64
	sumSq float64
}

func (s *SumOfSquares) Name() string { return MethodSumOfSquares }

func (s *SumOfSquares) Observe(x float64) {
	s.n++
	s.sum += x
	s.sumSq += x * x
}

func (s *SumOfSquares) Count() int { return s.n }

func (s *SumOfSquares) Mean() float64 {
	if s.n == 0 {
		return 0
	}
	return s.sum / float64(s.n)
}

func (s *SumOfSquares) StdDev() float64 {
	if s.n == 0 {
		return 0
	}
	mean := s.Mean()
	return math.Sqrt(math.Max(s.sumSq/float64(s.n)-mean*mean, 0))
}

func (s *SumOfSquares) Reset() {
	s.n = 0
	s.sum = 0
	s.sumSq = 0
}

// Welford updates the mean and the sum of squared deviations incrementally.
type Welford struct {
	n    int
	mean float64
	m2   float64
}

func (w *Welford) Name() string { return MethodWelford }

func (w *Welford) Observe(x float64) {
	w.n++
	delta := x - w.mean
	w.mean += delta / float64(w.n)
	w.m2 += delta * (x - w.mean)
}

func (w *Welford) Count() int { return w.n }

func (w *Welford) Mean() float64 { return w.mean }

func (w *Welford) StdDev() float64 {
	if w.n == 0 {
		return 0
	}
	return math.Sqrt(w.m2 / float64(w.n))
}

func (w *Welford) Reset() {
	w.n = 0
	w.mean = 0
	w.m2 = 0
}
