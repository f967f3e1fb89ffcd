package montecarlo

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/liftmc/internal/sampler"
	"github.com/san-kum/liftmc/internal/stats"
)

// Ensemble runs independent replicates of one experiment concurrently.
// Replicate i draws from its own sampler seeded with seedStart+i, so each
// replicate is reproducible on its own. The model must be safe for
// concurrent reads.
type Ensemble struct {
	model      Model
	replicates int
	seedStart  int64
	observers  []Observer
}

func NewEnsemble(model Model, replicates int, seedStart int64) *Ensemble {
	return &Ensemble{model: model, replicates: replicates, seedStart: seedStart}
}

// AddObserver attaches o to every replicate. Replicates run concurrently, so
// o must be safe for concurrent use.
func (e *Ensemble) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// Run executes every replicate to completion. A failing replicate does not
// cancel the others; Run returns all results together with the first error,
// so a non-finite replicate still leaves its summary for the caller.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if e.replicates <= 0 {
		return nil, ErrInvalidReplicates
	}

	results := make([]*Result, e.replicates)
	var g errgroup.Group

	for i := 0; i < e.replicates; i++ {
		idx := i
		g.Go(func() error {
			s := New(e.model, sampler.NewSeeded(e.seedStart+int64(idx)))
			for _, o := range e.observers {
				s.AddObserver(o)
			}
			res, err := s.Run(ctx, cfg)
			results[idx] = res
			return err
		})
	}

	return results, g.Wait()
}

// Spread summarizes the replicate means: their mean and population
// standard deviation.
func Spread(results []*Result) (mean, stddev float64) {
	acc := &stats.Welford{}
	for _, r := range results {
		if r == nil {
			continue
		}
		acc.Observe(r.Summary.Mean)
	}
	return acc.Mean(), acc.StdDev()
}
