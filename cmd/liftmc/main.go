package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/san-kum/liftmc/internal/config"
	"github.com/san-kum/liftmc/internal/observability"
)

var (
	dataDir        string
	configFile     string
	presetName     string
	trials         int
	seed           int64
	method         string
	logLevel       string
	logFormat      string
	replicates     int
	histogramBins  int
	plot           bool
	save           bool
	strict         bool
	metricsFile    string
	svgFile        string
	convergenceSVG string
	batch          int
	outFile        string
	force          bool

	clock  clockwork.Clock = clockwork.NewRealClock()
	logger                 = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running it without a subcommand runs
// the reference experiment and prints its mean and standard deviation.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "liftmc",
		Short: "Monte Carlo uncertainty of aerodynamic lift",
		Long: `Monte Carlo uncertainty of aerodynamic lift.

Without a subcommand liftmc runs the reference experiment and prints the
mean and standard deviation of lift. It exits with status 1, after printing
both lines, when any trial lift is NaN or Inf (for example when the total
pressure falls below the static pressure).`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runReference,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory for saved runs")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&presetName, "preset", "", "start from a preset configuration")
	pf.IntVar(&trials, "trials", config.DefaultTrials, "number of trials")
	pf.Int64Var(&seed, "seed", 0, "random seed; when unset, the config seed or else the wall clock")
	pf.StringVar(&method, "method", config.DefaultMethod, "statistics method: sumsq or welford")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", config.DefaultLogFormat, "log format: text or json")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the experiment and print a detailed summary",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().IntVar(&replicates, "replicates", config.DefaultReplicates, "independent replicates run concurrently")
	runCmd.Flags().IntVar(&histogramBins, "histogram-bins", config.DefaultHistogramBins, "histogram bins")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot histogram and running mean")
	runCmd.Flags().BoolVar(&save, "save", false, "save the run summary under --data")
	runCmd.Flags().BoolVar(&strict, "strict", true, "fail when any trial lift is NaN or Inf")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	runCmd.Flags().StringVar(&svgFile, "svg", "", "write the histogram as SVG")
	runCmd.Flags().StringVar(&convergenceSVG, "convergence-svg", "", "write the running mean as SVG")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the histogram of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "write the histogram as SVG")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved run as one JSON document",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	sensitivityCmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "attribute lift variance to each input",
		Args:  cobra.NoArgs,
		RunE:  runSensitivity,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the mean and stddev converge",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&batch, "batch", 25, "trials per frame")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configInitCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure trials per second",
		Args:  cobra.NoArgs,
		RunE:  benchTrials,
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, exportJSONCmd, sensitivityCmd, liveCmd, presetsCmd, configCmd, benchCmd)
	return rootCmd
}

// resolveConfig layers defaults, preset, config file, environment and
// explicitly set flags, in that order, and sets up the logger.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if presetName != "" {
		cfg = config.GetPreset(presetName)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("trials") {
		cfg.Trials = trials
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if flags.Changed("replicates") {
		cfg.Replicates = replicates
	}
	if flags.Changed("histogram-bins") {
		cfg.HistogramBins = histogramBins
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger = observability.NewLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	logger.Debug("config resolved",
		"preset", presetName,
		"config", configFile,
		"trials", cfg.Trials,
		"method", cfg.Method,
	)
	return cfg, nil
}

// resolveSeed returns --seed when given, including 0. Otherwise a non-zero
// configured seed wins, then the current Unix time.
func resolveSeed(cmd *cobra.Command, cfg *config.Config) int64 {
	if cmd.Flags().Changed("seed") {
		return seed
	}
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return clock.Now().Unix()
}
