package montecarlo

import (
	"context"
	"math"

	"github.com/san-kum/liftmc/internal/sampler"
	"github.com/san-kum/liftmc/internal/stats"
)

type Simulator struct {
	model     Model
	sampler   *sampler.Sampler
	observers []Observer
}

func New(model Model, s *sampler.Sampler) *Simulator {
	return &Simulator{
		model:     model,
		sampler:   s,
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run executes cfg.Trials trials and summarizes their lift values.
//
// When the context is canceled Run returns the summary of the trials
// completed so far together with ctx.Err(). When cfg.ValidateResults is set
// and any lift is NaN or Inf, Run still completes every trial and returns the
// full result with a *TrialError for the first offending trial.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	acc, err := stats.NewAccumulator(cfg.Method)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if cfg.KeepLifts {
		result.Lifts = make([]float64, 0, cfg.Trials)
	}

	var firstBad *TrialError
	nonFinite := 0

	for i := 0; i < cfg.Trials; i++ {
		select {
		case <-ctx.Done():
			result.Summary = s.summarize(acc, result.Lifts, nonFinite)
			return result, ctx.Err()
		default:
		}

		c := cfg.Inputs.Draw(s.sampler).Conditions()
		lift := s.model.Lift(c.TempC, c.StaticPa, c.TotalPa, c.RelHumidity, c.Area, c.LiftCoeff)

		acc.Observe(lift)
		if cfg.KeepLifts {
			result.Lifts = append(result.Lifts, lift)
		}
		if math.IsNaN(lift) || math.IsInf(lift, 0) {
			nonFinite++
			if firstBad == nil {
				firstBad = &TrialError{Trial: i, Conditions: c, Lift: lift, Wrapped: ErrNonFinite}
			}
		}
		for _, obs := range s.observers {
			obs.OnTrial(i, c, lift)
		}
		result.TrialsRun++
	}

	result.Summary = s.summarize(acc, result.Lifts, nonFinite)

	if cfg.ValidateResults && firstBad != nil {
		return result, firstBad
	}
	return result, nil
}

func (s *Simulator) summarize(acc stats.Accumulator, lifts []float64, nonFinite int) stats.Summary {
	summary := stats.Summarize(acc, lifts)
	summary.NonFinite = nonFinite
	return summary
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Trials <= 0 {
		return ErrInvalidTrials
	}
	return cfg.Inputs.Validate()
}
