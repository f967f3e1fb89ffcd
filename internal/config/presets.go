package config

import (
	"sort"

	"github.com/san-kum/liftmc/internal/montecarlo"
	"github.com/san-kum/liftmc/internal/stats"
)

func preset(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

var Presets = map[string]*Config{
	"reference": DefaultConfig(),
	"zero-variance": preset(func(c *Config) {
		c.Inputs = c.Inputs.Deterministic()
		c.Method = stats.MethodWelford
	}),
	"hot-humid": preset(func(c *Config) {
		c.Inputs.Temperature = montecarlo.Distribution{Mean: 38, StdDev: 2}
		c.Inputs.Humidity = montecarlo.Distribution{Mean: 85, StdDev: 8}
	}),
	"high-altitude": preset(func(c *Config) {
		c.Inputs.Temperature = montecarlo.Distribution{Mean: -5, StdDev: 3}
		c.Inputs.StaticPressure = montecarlo.Distribution{Mean: 700, StdDev: 5}
		c.Inputs.TotalPressure = montecarlo.Distribution{Mean: 725, StdDev: 5}
		c.Inputs.Humidity = montecarlo.Distribution{Mean: 30, StdDev: 5}
	}),
	"calm-air": preset(func(c *Config) {
		c.Inputs.TotalPressure = montecarlo.Distribution{Mean: 1015.25, StdDev: 1}
		c.Inputs.StaticPressure = montecarlo.Distribution{Mean: 1013.25, StdDev: 1}
		c.Method = stats.MethodWelford
	}),
}

var PresetDescriptions = map[string]string{
	"reference":     "sea-level bench test, the default experiment",
	"zero-variance": "every input at its mean; lift spread must be zero",
	"hot-humid":     "tropical afternoon, density dominated by vapor",
	"high-altitude": "about 3000 m, cold and thin air",
	"calm-air":      "2 hPa dynamic pressure; noise often reverses the Pitot reading",
}

// GetPreset returns a copy of the named preset, or nil if it does not exist.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
