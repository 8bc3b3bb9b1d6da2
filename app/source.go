package app

import (
	"isoplan/internal/kinetics"
)

// SourceRequest describes a point neutron source, a disc target and the
// thermal and damage limits of the irradiation.
type SourceRequest struct {
	SourceRate      float64 `json:"source_rate_n_per_s" validate:"gte=0"`
	DistanceCm      float64 `json:"distance_cm" validate:"gte=0"`
	TargetRadiusCm  float64 `json:"target_radius_cm" validate:"gt=0"`
	BeamPowerW      float64 `json:"beam_power_w,omitempty" validate:"gte=0"`
	CoolantFlowKgS  float64 `json:"coolant_flow_kg_s,omitempty" validate:"gte=0"`
	HeatCapacity    float64 `json:"heat_capacity_j_per_kg_k,omitempty" validate:"gte=0"`
	MaxTemperatureK float64 `json:"max_temperature_rise_k,omitempty" validate:"gte=0"`
	Fluence         float64 `json:"fluence,omitempty" validate:"gte=0"`
	FluenceLimit    float64 `json:"fluence_limit,omitempty" validate:"gte=0"`
}

// SourceEstimate is the flux on target and the derating to apply to
// route.Conditions.
type SourceEstimate struct {
	Flux            float64 `json:"flux"`
	TemperatureRise float64 `json:"temperature_rise_k,omitempty"`
	Thermal         float64 `json:"thermal_derating"`
	Damage          float64 `json:"damage_derating"`
	Derating        float64 `json:"derating"`
}

// EstimateSource computes flux from solid angle and the combined derating.
// Thermal derating needs power, coolant flow, heat capacity and a limit;
// damage derating needs a fluence limit. Either is 1 when not requested.
func (s *PlanningService) EstimateSource(req SourceRequest) (SourceEstimate, error) {
	flux, err := kinetics.FluxFromSolidAngle(req.SourceRate, req.DistanceCm, req.TargetRadiusCm)
	if err != nil {
		return SourceEstimate{}, err
	}
	est := SourceEstimate{Flux: flux, Thermal: 1, Damage: 1}

	if req.MaxTemperatureK > 0 && req.CoolantFlowKgS > 0 && req.HeatCapacity > 0 {
		dt, err := kinetics.TemperatureRise(req.BeamPowerW, req.CoolantFlowKgS, req.HeatCapacity)
		if err != nil {
			return SourceEstimate{}, err
		}
		est.TemperatureRise = dt
		if est.Thermal, err = kinetics.ThermalDerating(dt, req.MaxTemperatureK); err != nil {
			return SourceEstimate{}, err
		}
	}
	if req.FluenceLimit > 0 {
		if est.Damage, err = kinetics.DamageDerating(req.Fluence, req.FluenceLimit); err != nil {
			return SourceEstimate{}, err
		}
	}
	if est.Derating, err = kinetics.CombinedDerating(est.Thermal, est.Damage); err != nil {
		return SourceEstimate{}, err
	}
	return est, nil
}
