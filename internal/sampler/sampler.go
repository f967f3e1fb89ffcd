// Package sampler draws normally distributed values from a uniform source
// using the Marsaglia polar method.
//
// # Determinism
//
// A Sampler is deterministic with respect to its source: two samplers built
// from identically seeded sources return identical sequences.
//
// # Thread Safety
//
// A Sampler is NOT safe for concurrent use. The cached spare deviate belongs
// to exactly one random stream, so concurrent simulations must each own a
// Sampler and a source.
package sampler

import (
	"math"
	"math/rand"
)

// sourceMax is the upper bound of rand.Source.Int63.
const sourceMax = float64(math.MaxInt64)

type Sampler struct {
	src      rand.Source
	hasSpare bool
	spare    float64
}

func New(src rand.Source) *Sampler {
	return &Sampler{src: src}
}

// NewSeeded returns a Sampler over math/rand's default source seeded with seed.
func NewSeeded(seed int64) *Sampler {
	return New(rand.NewSource(seed))
}

// Sample returns a deviate with the given mean and standard deviation.
// Every second call is served from the spare produced by the previous
// accepted pair and consumes no uniform draws.
func (s *Sampler) Sample(mean, stddev float64) float64 {
	if s.hasSpare {
		s.hasSpare = false
		return mean + stddev*s.spare
	}

	var u, v, r float64
	for {
		u = s.uniform()
		v = s.uniform()
		r = u*u + v*v
		if r < 1.0 && r != 0.0 {
			break
		}
	}

	factor := math.Sqrt(-2.0 * math.Log(r) / r)
	s.spare = v * factor
	s.hasSpare = true

	return mean + stddev*(u*factor)
}

// Reset drops a cached spare so the next Sample starts a fresh pair.
func (s *Sampler) Reset() {
	s.hasSpare = false
	s.spare = 0
}

// HasSpare reports whether the next Sample will be served from the cache.
func (s *Sampler) HasSpare() bool { return s.hasSpare }

// uniform maps one source draw onto [-1, 1].
func (s *Sampler) uniform() float64 {
	return 2.0*float64(s.src.Int63())/sourceMax - 1.0
}
