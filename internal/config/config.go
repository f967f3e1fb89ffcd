package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/liftmc/internal/montecarlo"
	"github.com/san-kum/liftmc/internal/physics"
	"github.com/san-kum/liftmc/internal/stats"
)

const (
	DefaultTrials        = montecarlo.DefaultTrials
	DefaultMethod        = stats.MethodSumOfSquares
	DefaultReplicates    = 1
	DefaultHistogramBins = 20
	DefaultDataDir       = ".liftmc"
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "text"
)

// Config is the user-facing experiment description. A zero Seed means the
// seed is taken from the wall clock at run time.
type Config struct {
	Trials        int               `yaml:"trials" env:"LIFTMC_TRIALS"`
	Seed          int64             `yaml:"seed" env:"LIFTMC_SEED"`
	Method        string            `yaml:"method" env:"LIFTMC_METHOD"`
	Replicates    int               `yaml:"replicates" env:"LIFTMC_REPLICATES"`
	HistogramBins int               `yaml:"histogram_bins" env:"LIFTMC_HISTOGRAM_BINS"`
	DataDir       string            `yaml:"data_dir" env:"LIFTMC_DATA_DIR"`
	LogLevel      string            `yaml:"log_level" env:"LIFTMC_LOG_LEVEL"`
	LogFormat     string            `yaml:"log_format" env:"LIFTMC_LOG_FORMAT"`
	Gas           GasConfig         `yaml:"gas"`
	Inputs        montecarlo.Inputs `yaml:"inputs"`
}

type GasConfig struct {
	Dry   float64 `yaml:"dry" json:"dry" env:"LIFTMC_GAS_DRY"`
	Vapor float64 `yaml:"vapor" json:"vapor" env:"LIFTMC_GAS_VAPOR"`
}

func DefaultConfig() *Config {
	return &Config{
		Trials:        DefaultTrials,
		Method:        DefaultMethod,
		Replicates:    DefaultReplicates,
		HistogramBins: DefaultHistogramBins,
		DataDir:       DefaultDataDir,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		Gas: GasConfig{
			Dry:   physics.DryAirGasConstant,
			Vapor: physics.VaporGasConstant,
		},
		Inputs: montecarlo.DefaultInputs(),
	}
}

// Load reads a YAML file over the defaults; keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file over a copy of base.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from LIFTMC_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", c.Trials)
	}
	if c.Replicates <= 0 {
		return fmt.Errorf("replicates must be positive, got %d", c.Replicates)
	}
	if c.HistogramBins <= 0 {
		return fmt.Errorf("histogram_bins must be positive, got %d", c.HistogramBins)
	}
	if _, err := stats.NewAccumulator(c.Method); err != nil {
		return err
	}
	if c.Gas.Dry <= 0 || c.Gas.Vapor <= 0 {
		return errors.New("gas constants must be positive")
	}
	return c.Inputs.Validate()
}

// SimulationConfig returns the driver settings described by c.
func (c *Config) SimulationConfig() montecarlo.Config {
	sim := montecarlo.DefaultConfig()
	sim.Trials = c.Trials
	sim.Inputs = c.Inputs
	sim.Method = c.Method
	return sim
}

// Model builds a lift model with the configured gas constants.
func (c *Config) Model() (*physics.LiftModel, error) {
	m := physics.NewLiftModel()
	params := map[string]float64{"rd": c.Gas.Dry, "rv": c.Gas.Vapor}
	for name, value := range params {
		if err := m.SetParam(name, value); err != nil {
			return nil, err
		}
	}
	return m, nil
}
