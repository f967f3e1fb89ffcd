package montecarlo

import (
	"fmt"

	"github.com/san-kum/liftmc/internal/sampler"
	"github.com/san-kum/liftmc/internal/stats"
)

const DefaultTrials = 1000

// Input quantity names in draw order.
const (
	InputTemperature    = "temperature"
	InputStaticPressure = "static_pressure"
	InputTotalPressure  = "total_pressure"
	InputHumidity       = "humidity"
	InputArea           = "area"
	InputLiftCoeff      = "lift_coeff"
)

// Distribution is the normal uncertainty of one measured quantity.
type Distribution struct {
	Mean   float64 `yaml:"mean" json:"mean"`
	StdDev float64 `yaml:"stddev" json:"stddev"`
}

// Inputs holds the six measured quantities in instrument units.
type Inputs struct {
	Temperature    Distribution `yaml:"temperature" json:"temperature"`         // °C
	StaticPressure Distribution `yaml:"static_pressure" json:"static_pressure"` // hPa
	TotalPressure  Distribution `yaml:"total_pressure" json:"total_pressure"`   // hPa
	Humidity       Distribution `yaml:"humidity" json:"humidity"`               // %
	Area           Distribution `yaml:"area" json:"area"`                       // m²
	LiftCoeff      Distribution `yaml:"lift_coeff" json:"lift_coeff"`
}

func DefaultInputs() Inputs {
	return Inputs{
		Temperature:    Distribution{Mean: 25, StdDev: 2},
		StaticPressure: Distribution{Mean: 1013.25, StdDev: 5},
		TotalPressure:  Distribution{Mean: 1050.00, StdDev: 5},
		Humidity:       Distribution{Mean: 50, StdDev: 5},
		Area:           Distribution{Mean: 1.0, StdDev: 0.1},
		LiftCoeff:      Distribution{Mean: 1.2, StdDev: 0.05},
	}
}

type NamedInput struct {
	Name string
	Unit string
	Distribution
}

// Named lists the inputs in draw order.
func (in Inputs) Named() []NamedInput {
	return []NamedInput{
		{InputTemperature, "°C", in.Temperature},
		{InputStaticPressure, "hPa", in.StaticPressure},
		{InputTotalPressure, "hPa", in.TotalPressure},
		{InputHumidity, "%", in.Humidity},
		{InputArea, "m²", in.Area},
		{InputLiftCoeff, "", in.LiftCoeff},
	}
}

func (in *Inputs) lookup(name string) (*Distribution, error) {
	switch name {
	case InputTemperature:
		return &in.Temperature, nil
	case InputStaticPressure:
		return &in.StaticPressure, nil
	case InputTotalPressure:
		return &in.TotalPressure, nil
	case InputHumidity:
		return &in.Humidity, nil
	case InputArea:
		return &in.Area, nil
	case InputLiftCoeff:
		return &in.LiftCoeff, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownInput, name)
}

func (in Inputs) Get(name string) (Distribution, error) {
	d, err := in.lookup(name)
	if err != nil {
		return Distribution{}, err
	}
	return *d, nil
}

func (in *Inputs) Set(name string, d Distribution) error {
	target, err := in.lookup(name)
	if err != nil {
		return err
	}
	*target = d
	return nil
}

func (in Inputs) Validate() error {
	for _, n := range in.Named() {
		if n.StdDev < 0 {
			return fmt.Errorf("%w: %s (%v)", ErrNegativeStdDev, n.Name, n.StdDev)
		}
	}
	return nil
}

// Deterministic returns the inputs with every standard deviation set to zero.
func (in Inputs) Deterministic() Inputs {
	out := in
	for _, n := range in.Named() {
		_ = out.Set(n.Name, Distribution{Mean: n.Mean})
	}
	return out
}

// Only returns the inputs with every quantity except name held at its mean.
func (in Inputs) Only(name string) (Inputs, error) {
	keep, err := in.Get(name)
	if err != nil {
		return Inputs{}, err
	}
	out := in.Deterministic()
	_ = out.Set(name, keep)
	return out, nil
}

// Draw samples one Reading. The order of the six draws is fixed.
func (in Inputs) Draw(s *sampler.Sampler) Reading {
	var r Reading
	r.TempC = s.Sample(in.Temperature.Mean, in.Temperature.StdDev)
	r.StaticHPa = s.Sample(in.StaticPressure.Mean, in.StaticPressure.StdDev)
	r.TotalHPa = s.Sample(in.TotalPressure.Mean, in.TotalPressure.StdDev)
	r.HumidityPct = s.Sample(in.Humidity.Mean, in.Humidity.StdDev)
	r.Area = s.Sample(in.Area.Mean, in.Area.StdDev)
	r.LiftCoeff = s.Sample(in.LiftCoeff.Mean, in.LiftCoeff.StdDev)
	return r
}

// Reading is one trial's measurements in instrument units.
type Reading struct {
	TempC       float64
	StaticHPa   float64
	TotalHPa    float64
	HumidityPct float64
	Area        float64
	LiftCoeff   float64
}

// Conditions is one trial in SI units, ready for the lift model.
type Conditions struct {
	TempC       float64
	StaticPa    float64
	TotalPa     float64
	RelHumidity float64
	Area        float64
	LiftCoeff   float64
}

const (
	pascalsPerHectopascal = 100.0
	percent               = 100.0
)

// Conditions converts pressures to Pa and humidity to a clamped fraction.
func (r Reading) Conditions() Conditions {
	return Conditions{
		TempC:       r.TempC,
		StaticPa:    r.StaticHPa * pascalsPerHectopascal,
		TotalPa:     r.TotalHPa * pascalsPerHectopascal,
		RelHumidity: ClampHumidity(r.HumidityPct / percent),
		Area:        r.Area,
		LiftCoeff:   r.LiftCoeff,
	}
}

// ClampHumidity limits a relative humidity fraction to [0, 1].
func ClampHumidity(rh float64) float64 {
	if rh < 0 {
		return 0
	}
	if rh > 1 {
		return 1
	}
	return rh
}

// Model computes lift in N from SI conditions.
type Model interface {
	Lift(tempC, staticPa, totalPa, relHumidity, area, liftCoeff float64) float64
}

// Observer is notified after every trial.
type Observer interface {
	OnTrial(trial int, c Conditions, lift float64)
}

type ObserverFunc func(trial int, c Conditions, lift float64)

func (f ObserverFunc) OnTrial(trial int, c Conditions, lift float64) { f(trial, c, lift) }

type Config struct {
	Trials          int
	Inputs          Inputs
	Method          string
	ValidateResults bool
	KeepLifts       bool
}

func DefaultConfig() Config {
	return Config{
		Trials:          DefaultTrials,
		Inputs:          DefaultInputs(),
		Method:          stats.MethodSumOfSquares,
		ValidateResults: true,
		KeepLifts:       true,
	}
}

type Result struct {
	Summary   stats.Summary
	Lifts     []float64
	TrialsRun int
}
