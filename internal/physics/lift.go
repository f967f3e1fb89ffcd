package physics

import "fmt"

type LiftModel struct {
	Rd float64
	Rv float64
}

func NewLiftModel() *LiftModel {
	return &LiftModel{
		Rd: DryAirGasConstant,
		Rv: VaporGasConstant,
	}
}

// Lift returns the lift force in N for one set of SI conditions.
func (m *LiftModel) Lift(tempC, staticPa, totalPa, relHumidity, area, liftCoeff float64) float64 {
	density := m.Density(tempC, staticPa, relHumidity)
	v := Airspeed(totalPa, staticPa, density)
	return 0.5 * density * v * v * area * liftCoeff
}

func (m *LiftModel) Density(tempC, staticPa, relHumidity float64) float64 {
	return AirDensity(tempC, staticPa, relHumidity, m.Rd, m.Rv)
}

func (m *LiftModel) GetParams() map[string]float64 {
	return map[string]float64{
		"rd": m.Rd,
		"rv": m.Rv,
	}
}

func (m *LiftModel) SetParam(name string, value float64) error {
	switch name {
	case "rd":
		m.Rd = value
	case "rv":
		m.Rv = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
