package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/liftmc/internal/export"
	"github.com/san-kum/liftmc/internal/montecarlo"
	"github.com/san-kum/liftmc/internal/observability"
	"github.com/san-kum/liftmc/internal/report"
	"github.com/san-kum/liftmc/internal/sampler"
	"github.com/san-kum/liftmc/internal/stats"
	"github.com/san-kum/liftmc/internal/storage"
)

func runReference(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	model, err := cfg.Model()
	if err != nil {
		return err
	}

	s := resolveSeed(cmd, cfg)
	simCfg := cfg.SimulationConfig()
	simCfg.KeepLifts = false

	res, err := montecarlo.New(model, sampler.NewSeeded(s)).Run(cmd.Context(), simCfg)
	if res != nil {
		if perr := report.Reference(cmd.OutOrStdout(), res.Summary); perr != nil {
			return perr
		}
	}
	if err != nil {
		return fmt.Errorf("simulation failed (seed %d): %w", s, err)
	}
	logger.Debug("reference run finished", "seed", s, "trials", res.TrialsRun)
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	model, err := cfg.Model()
	if err != nil {
		return err
	}

	s := resolveSeed(cmd, cfg)
	simCfg := cfg.SimulationConfig()
	simCfg.ValidateResults = strict
	metrics := observability.NewMetrics()
	out := cmd.OutOrStdout()

	logger.Info("running simulation",
		"seed", s,
		"trials", cfg.Trials,
		"method", cfg.Method,
		"replicates", cfg.Replicates,
	)

	start := clock.Now()
	var (
		primary *montecarlo.Result
		results []*montecarlo.Result
		runErr  error
	)
	if cfg.Replicates > 1 {
		e := montecarlo.NewEnsemble(model, cfg.Replicates, s)
		e.AddObserver(metrics)
		results, runErr = e.Run(cmd.Context(), simCfg)
		for _, r := range results {
			if r != nil {
				primary = r
				break
			}
		}
	} else {
		sim := montecarlo.New(model, sampler.NewSeeded(s))
		sim.AddObserver(metrics)
		primary, runErr = sim.Run(cmd.Context(), simCfg)
	}
	elapsed := clock.Since(start)

	var summary stats.Summary
	if primary != nil {
		summary = primary.Summary
	}
	metrics.ObserveRun(summary, elapsed, runErr)
	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		logger.Debug("metrics written", "path", metricsFile)
	}

	if primary == nil {
		return fmt.Errorf("simulation failed (seed %d): %w", s, runErr)
	}

	if err := report.Detailed(out, summary, s); err != nil {
		return err
	}
	if len(results) > 1 {
		mean, sd := montecarlo.Spread(results)
		if err := report.Spread(out, len(results), mean, sd); err != nil {
			return err
		}
	}

	hist := stats.NewHistogram(primary.Lifts, cfg.HistogramBins)
	if plot {
		fmt.Fprintln(out, report.HistogramPlot(hist))
		fmt.Fprintln(out)
		fmt.Fprintln(out, report.ConvergencePlot(primary.Lifts))
	}
	if svgFile != "" {
		if err := export.WriteFile(svgFile, export.HistogramSVG(hist, 800, 400, "#00ccff")); err != nil {
			return err
		}
		fmt.Fprintf(out, "exported histogram to %s\n", svgFile)
	}
	if convergenceSVG != "" {
		series := stats.RunningMean(stats.Finite(primary.Lifts))
		if err := export.WriteFile(convergenceSVG, export.ConvergenceSVG(series, 800, 300, "#00ff88")); err != nil {
			return err
		}
		fmt.Fprintf(out, "exported convergence to %s\n", convergenceSVG)
	}

	if runErr != nil {
		return fmt.Errorf("simulation failed (seed %d): %w", s, runErr)
	}

	if save {
		st := storage.NewWithClock(cfg.DataDir, clock)
		runID, err := st.Save(storage.Record{
			Seed:       s,
			Config:     cfg,
			Summary:    summary,
			Histogram:  hist,
			Replicates: cfg.Replicates,
		})
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		fmt.Fprintf(out, "saved run %s\n", runID)
		logger.Info("run saved", "id", runID, "dir", cfg.DataDir)
	}

	logger.Info("simulation finished", "elapsed", elapsed, "non_finite", summary.NonFinite)
	return nil
}
