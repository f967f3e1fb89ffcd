package physics

import "math"

const (
	// DryAirGasConstant is the specific gas constant of dry air in J/(kg·K).
	DryAirGasConstant = 287.05
	// VaporGasConstant is the specific gas constant of water vapor in J/(kg·K).
	VaporGasConstant = 461.5

	celsiusToKelvin = 273.15
)

// SaturationVaporPressure returns the Tetens saturation vapor pressure in Pa.
func SaturationVaporPressure(tempC float64) float64 {
	return 6.1078 * math.Pow(10, 7.5*tempC/(tempC+237.3)) * 100
}

// AirDensity returns the density of moist air in kg/m³ as the sum of the dry
// air and water vapor partial densities.
func AirDensity(tempC, pressurePa, relHumidity, rd, rv float64) float64 {
	vapor := relHumidity * SaturationVaporPressure(tempC)
	dry := pressurePa - vapor
	tk := tempC + celsiusToKelvin
	return dry/(rd*tk) + vapor/(rv*tk)
}
