// Package sensitivity attributes the spread of lift to individual inputs.
//
// Each input is studied one at a time: the experiment is rerun with that
// input uncertain and every other input fixed at its mean. The resulting
// variance, divided by the variance of the full experiment, is the input's
// share. For a nearly linear model the shares sum to about one; a sum far
// from one signals strong interaction between inputs.
package sensitivity

import (
	"context"
	"fmt"

	"github.com/san-kum/liftmc/internal/montecarlo"
	"github.com/san-kum/liftmc/internal/sampler"
	"github.com/san-kum/liftmc/internal/stats"
)

type Contribution struct {
	Input  string  `json:"input"`
	Unit   string  `json:"unit"`
	StdDev float64 `json:"stddev"`
	Share  float64 `json:"share"`
}

type Report struct {
	Total         stats.Summary  `json:"total"`
	Contributions []Contribution `json:"contributions"`
}

// ShareSum returns the sum of all contribution shares.
func (r *Report) ShareSum() float64 {
	sum := 0.0
	for _, c := range r.Contributions {
		sum += c.Share
	}
	return sum
}

type Analyzer struct {
	model montecarlo.Model
	seed  int64
}

func NewAnalyzer(model montecarlo.Model, seed int64) *Analyzer {
	return &Analyzer{model: model, seed: seed}
}

// Analyze runs the full experiment once and then once per input. Every run
// uses a fresh sampler with the same seed.
func (a *Analyzer) Analyze(ctx context.Context, cfg montecarlo.Config) (*Report, error) {
	total, err := a.run(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("full experiment: %w", err)
	}

	report := &Report{
		Total:         total.Summary,
		Contributions: make([]Contribution, 0, len(cfg.Inputs.Named())),
	}
	totalVar := total.Summary.StdDev * total.Summary.StdDev

	for _, in := range cfg.Inputs.Named() {
		only, err := cfg.Inputs.Only(in.Name)
		if err != nil {
			return nil, err
		}

		cfgCopy := cfg
		cfgCopy.Inputs = only
		cfgCopy.KeepLifts = false

		res, err := a.run(ctx, cfgCopy)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", in.Name, err)
		}

		share := 0.0
		if totalVar > 0 {
			share = res.Summary.StdDev * res.Summary.StdDev / totalVar
		}
		report.Contributions = append(report.Contributions, Contribution{
			Input:  in.Name,
			Unit:   in.Unit,
			StdDev: res.Summary.StdDev,
			Share:  share,
		})
	}

	return report, nil
}

func (a *Analyzer) run(ctx context.Context, cfg montecarlo.Config) (*montecarlo.Result, error) {
	s := montecarlo.New(a.model, sampler.NewSeeded(a.seed))
	return s.Run(ctx, cfg)
}
