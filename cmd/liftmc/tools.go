package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/liftmc/internal/config"
	"github.com/san-kum/liftmc/internal/montecarlo"
	"github.com/san-kum/liftmc/internal/report"
	"github.com/san-kum/liftmc/internal/sampler"
	"github.com/san-kum/liftmc/internal/sensitivity"
	"github.com/san-kum/liftmc/internal/tui"
)

func runSensitivity(cmd *cobra.Command, args []string) error {
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

	r, err := sensitivity.NewAnalyzer(model, s).Analyze(cmd.Context(), simCfg)
	if err != nil {
		return fmt.Errorf("sensitivity (seed %d): %w", s, err)
	}
	return report.Sensitivity(cmd.OutOrStdout(), r)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	model, err := cfg.Model()
	if err != nil {
		return err
	}

	l, err := tui.NewLive(model, resolveSeed(cmd, cfg), cfg.SimulationConfig(), batch)
	if err != nil {
		return err
	}
	if err := tui.RunLive(l); err != nil {
		return err
	}
	if l.Err() != nil {
		return l.Err()
	}
	return report.Reference(cmd.OutOrStdout(), l.Summary())
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		fmt.Fprintf(w, "%s\t%s\n", name, config.PresetDescriptions[name])
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "liftmc.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func benchTrials(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	model, err := cfg.Model()
	if err != nil {
		return err
	}

	counts := []int{100, 1000, 10000, 100000}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking %s accumulation\n\n", cfg.Method)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIALS\tTIME\tTRIALS/SEC")
	for _, n := range counts {
		simCfg := cfg.SimulationConfig()
		simCfg.Trials = n
		simCfg.KeepLifts = false
		simCfg.ValidateResults = false

		start := clock.Now()
		res, err := montecarlo.New(model, sampler.NewSeeded(42)).Run(cmd.Context(), simCfg)
		if err != nil {
			return err
		}
		elapsed := clock.Since(start)

		rate := 0.0
		if elapsed > 0 {
			rate = float64(res.TrialsRun) / elapsed.Seconds()
		}
		fmt.Fprintf(w, "%d\t%v\t%.0f\n", n, elapsed, rate)
	}
	return w.Flush()
}
