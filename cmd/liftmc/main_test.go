package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/liftmc/internal/config"
	"github.com/san-kum/liftmc/internal/montecarlo"
)

var referenceOutput = regexp.MustCompile(`^Mean lift is -?\d+\.\d{6} N\nStandard deviation of lift is \d+\.\d{6} N\n$`)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func withClock(t *testing.T, c clockwork.Clock) {
	t.Helper()
	prev := clock
	clock = c
	t.Cleanup(func() { clock = prev })
}

func TestRootPrintsReference(t *testing.T) {
	out, err := execute(t, "--seed", "42")
	require.NoError(t, err)
	assert.Regexp(t, referenceOutput, out)

	again, err := execute(t, "--seed", "42")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestRootPinnedSeed(t *testing.T) {
	out, err := execute(t, "--seed", "42", "--trials", "1000")
	require.NoError(t, err)
	assert.Equal(t, "Mean lift is 4415.580707 N\nStandard deviation of lift is 957.957805 N\n", out)
}

func TestRootSeedZeroIsExplicit(t *testing.T) {
	withClock(t, clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)))
	first, err := execute(t, "--seed", "0")
	require.NoError(t, err)

	withClock(t, clockwork.NewFakeClockAt(time.Date(2031, 9, 9, 9, 9, 9, 0, time.UTC)))
	second, err := execute(t, "--seed", "0")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRootHelpDocumentsExitStatus(t *testing.T) {
	assert.Contains(t, newRootCmd().Long, "exits with status 1")
}

func TestRootSeedsFromClock(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	withClock(t, clockwork.NewFakeClockAt(now))

	fromClock, err := execute(t)
	require.NoError(t, err)

	pinned, err := execute(t, "--seed", "1714552200")
	require.NoError(t, err)
	assert.Equal(t, pinned, fromClock)
}

func TestRootFailsOnNonFiniteLift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reversed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inputs:\n  total_pressure:\n    mean: 900\n    stddev: 0\n"), 0644))

	out, err := execute(t, "--config", path, "--seed", "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, montecarlo.ErrNonFinite))
	assert.Contains(t, out, "Mean lift is NaN N")
}

func TestRunUnknownPreset(t *testing.T) {
	_, err := execute(t, "run", "--preset", "moon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown preset")
}

func TestResolveConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trials: 300\nmethod: welford\nhistogram_bins: 7\n"), 0644))
	t.Setenv("LIFTMC_TRIALS", "400")

	var got *config.Config
	cmd := newRootCmd()
	cmd.RunE = func(c *cobra.Command, _ []string) error {
		cfg, err := resolveConfig(c)
		got = cfg
		return err
	}
	cmd.SetArgs([]string{"--preset", "high-altitude", "--config", path, "--method", "sumsq"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	require.NoError(t, cmd.Execute())

	require.NotNil(t, got)
	assert.Equal(t, 700.0, got.Inputs.StaticPressure.Mean, "preset")
	assert.Equal(t, 7, got.HistogramBins, "file")
	assert.Equal(t, 400, got.Trials, "env over file")
	assert.Equal(t, "sumsq", got.Method, "flag over file")
}

func TestRunSaveListShow(t *testing.T) {
	dir := t.TempDir()
	withClock(t, clockwork.NewFakeClockAt(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))

	out, err := execute(t, "run", "--seed", "5", "--trials", "200", "--save", "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "saved run run_1704164645")

	out, err = execute(t, "list", "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "run_1704164645")
	assert.Contains(t, out, "200")

	out, err = execute(t, "show", "run_1704164645", "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Lift distribution")

	out, err = execute(t, "export-json", "run_1704164645", "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"histogram"`)
}

func TestRunWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	svg := filepath.Join(dir, "hist.svg")
	conv := filepath.Join(dir, "conv.svg")
	prom := filepath.Join(dir, "liftmc.prom")

	out, err := execute(t, "run", "--seed", "9", "--trials", "300", "--replicates", "3", "--plot", "--svg", svg, "--convergence-svg", conv, "--metrics-file", prom)
	require.NoError(t, err)
	assert.Contains(t, out, "Replicates")
	assert.Contains(t, out, "running mean")

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), "liftmc_trials_total 900")

	_, err = os.Stat(svg)
	assert.NoError(t, err)

	data, err = os.ReadFile(conv)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<path")
}

func TestRunReplicatesReportBeforeFailing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inputs:\n  static_pressure:\n    mean: 1013.25\n    stddev: 1\n  total_pressure:\n    mean: 1014.25\n    stddev: 1\n"), 0644))

	out, err := execute(t, "run", "--config", path, "--seed", "2", "--trials", "200", "--replicates", "3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, montecarlo.ErrNonFinite))
	assert.Contains(t, out, "Lift distribution")
	assert.Contains(t, out, "Replicates")
}

func TestRunLenientNonFinite(t *testing.T) {
	out, err := execute(t, "run", "--preset", "calm-air", "--seed", "3", "--strict=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Lift distribution")
}

func TestListEmpty(t *testing.T) {
	out, err := execute(t, "list", "--data", filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Equal(t, "no runs found\n", out)
}

func TestPresetsCommand(t *testing.T) {
	out, err := execute(t, "presets")
	require.NoError(t, err)
	for _, name := range config.ListPresets() {
		assert.Contains(t, out, name)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liftmc.yaml")

	_, err := execute(t, "config", "init", path, "--preset", "hot-humid")
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 38.0, cfg.Inputs.Temperature.Mean)

	_, err = execute(t, "config", "init", path)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "already exists"))

	_, err = execute(t, "config", "init", path, "--force")
	require.NoError(t, err)
}

func TestSensitivityCommand(t *testing.T) {
	out, err := execute(t, "sensitivity", "--seed", "4", "--trials", "500", "--method", "welford")
	require.NoError(t, err)
	assert.Contains(t, out, "static_pressure")
	assert.Contains(t, out, "sum of shares")
}
