package physics

import "math"

// Airspeed returns the airspeed in m/s implied by a Pitot-static pressure
// difference. It is NaN when totalPa < staticPa or density < 0.
func Airspeed(totalPa, staticPa, density float64) float64 {
	return math.Sqrt(2 * (totalPa - staticPa) / density)
}
