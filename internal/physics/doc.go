// Package physics provides the aerodynamic models used by the lift simulation.
//
// The models are plain functions of scalar inputs:
//
//   - [AirDensity]: moist-air density from temperature, pressure and humidity
//   - [Airspeed]: Pitot-tube airspeed from total and static pressure
//   - [LiftModel]: lift force composed from the two above
//
// # Domain
//
// No input is validated. A static pressure below the vapor pressure yields a
// negative density, and a total pressure below the static pressure yields a
// NaN airspeed. Both propagate unchanged into [LiftModel.Lift] so callers can
// detect them with [math.IsNaN] or [math.IsInf] on the final value.
package physics
