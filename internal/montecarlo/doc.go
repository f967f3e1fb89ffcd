// Package montecarlo propagates measurement uncertainty into lift force.
//
// The package defines the experiment and its driver:
//
//   - [Inputs]: the six measured quantities and their normal uncertainties
//   - [Reading]: one trial's draws in instrument units (°C, hPa, %)
//   - [Conditions]: the same trial in SI units, humidity clamped to [0, 1]
//   - [Simulator]: runs N trials and summarizes the lift distribution
//   - [Ensemble]: runs independent replicates concurrently
//
// # Example
//
//	s := montecarlo.New(physics.NewLiftModel(), sampler.NewSeeded(seed))
//	result, err := s.Run(ctx, montecarlo.DefaultConfig())
//
// # Draw Order
//
// Each trial draws temperature, static pressure, total pressure, humidity,
// area and lift coefficient, in that order, from one shared sampler.
// Changing the order changes the exact output for a given seed.
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Use [Ensemble], which gives every
// replicate its own sampler and random stream.
package montecarlo
