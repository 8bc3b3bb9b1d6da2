package kinetics

import (
	"math"

	"isoplan/domain/core"
)

// FluxFromSolidAngle returns the mean flux (n/cm²/s) on a disc target of
// radius r at distance d from an isotropic point source emitting S n/s:
// φ = S·(Ω/4π)/(πr²).
func FluxFromSolidAngle(sourceRate, distance, radius float64) (float64, error) {
	if err := requireNonNegative("source_rate", sourceRate); err != nil {
		return 0, err
	}
	if err := requirePositive("radius", radius); err != nil {
		return 0, err
	}
	omega, err := SolidAngle(distance, radius)
	if err != nil {
		return 0, err
	}
	area := math.Pi * radius * radius
	return sourceRate * omega / (4 * math.Pi) / area, nil
}

// TemperatureRise returns ΔT = P/(ṁ·c_p) for a coolant stream.
func TemperatureRise(powerW, massFlowKgS, heatCapacity float64) (float64, error) {
	if err := requireNonNegative("power", powerW); err != nil {
		return 0, err
	}
	if err := requirePositive("mass_flow", massFlowKgS); err != nil {
		return 0, err
	}
	if err := requirePositive("heat_capacity", heatCapacity); err != nil {
		return 0, err
	}
	return powerW / (massFlowKgS * heatCapacity), nil
}

// ThermalDerating returns the beam/flux fraction that keeps the temperature
// rise within its limit: 1 when ΔT ≤ ΔT_max, else ΔT_max/ΔT.
func ThermalDerating(deltaT, deltaTMax float64) (float64, error) {
	if err := requireNonNegative("delta_t", deltaT); err != nil {
		return 0, err
	}
	if err := requirePositive("delta_t_max", deltaTMax); err != nil {
		return 0, err
	}
	if deltaT <= deltaTMax {
		return 1, nil
	}
	return deltaTMax / deltaT, nil
}

// DamageDerating returns the usable fraction of an irradiation under a
// fluence (or dpa) limit: 1 when within limit, else limit/fluence.
func DamageDerating(fluence, limit float64) (float64, error) {
	if err := requireNonNegative("fluence", fluence); err != nil {
		return 0, err
	}
	if err := requirePositive("fluence_limit", limit); err != nil {
		return 0, err
	}
	if fluence <= limit {
		return 1, nil
	}
	return limit / fluence, nil
}

// CombinedDerating multiplies independent derating factors, each in (0,1].
func CombinedDerating(factors ...float64) (float64, error) {
	out := 1.0
	for _, f := range factors {
		if math.IsNaN(f) || f <= 0 || f > 1 {
			return 0, core.NewParameterError("derating_factor", f, "within (0,1]")
		}
		out *= f
	}
	return out, nil
}
