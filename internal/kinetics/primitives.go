// Package kinetics provides the scalar activation and decay primitives used by
// the route evaluator.
//
// Every function is pure and takes explicit SI/CGS arguments: times in
// seconds (half-lives in days where named so), cross-sections in cm² unless
// the name says barns, flux in n/cm²/s. Out-of-domain inputs return an error
// wrapping core.ErrInvalidParameter; nothing here panics or logs.
package kinetics

import (
	"math"

	"isoplan/domain/core"
)

// Physical constants
const (
	Avogadro           = 6.02214076e23
	BarnCm2            = 1e-24
	ReferenceEnergyMeV = 14.1
	BqPerGBq           = 1e9
	BqPerTBq           = 1e12

	// below this Σ·d the self-shielding factor is evaluated by its series
	shieldingSeriesLimit = 1e-6
)

// BarnsToCm2 converts a microscopic cross-section from barns to cm².
func BarnsToCm2(barns float64) float64 { return barns * BarnCm2 }

// ActivationMode selects the threshold-activation model.
type ActivationMode int

const (
	// ActivationStep returns the reference cross-section at or above threshold, 0 below.
	ActivationStep ActivationMode = iota
	// ActivationScaled ramps the cross-section as a power of the excess energy.
	ActivationScaled
)

func requireNonNegative(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || math.IsInf(v, 0) {
		return core.NewParameterError(name, v, "finite and >= 0")
	}
	return nil
}

func requirePositive(name string, v float64) error {
	if math.IsNaN(v) || v <= 0 || math.IsInf(v, 0) {
		return core.NewParameterError(name, v, "finite and > 0")
	}
	return nil
}

// DecayConstant returns ln(2)/T½ in 1/s for a half-life given in days.
func DecayConstant(halfLifeDays float64) (float64, error) {
	if err := requirePositive("half_life_days", halfLifeDays); err != nil {
		return 0, err
	}
	return math.Ln2 / core.DaysToSeconds(halfLifeDays), nil
}

// SaturationFactor returns 1 − e^(−λt).
func SaturationFactor(lambda, t float64) (float64, error) {
	if err := requireNonNegative("lambda", lambda); err != nil {
		return 0, err
	}
	if err := requireNonNegative("time", t); err != nil {
		return 0, err
	}
	return -math.Expm1(-lambda * t), nil
}

// ReactionRate returns N·σ·φ·f_shield in reactions per second.
func ReactionRate(atoms, sigmaCm2, flux, shielding float64) (float64, error) {
	for _, p := range []struct {
		name string
		v    float64
	}{{"atoms", atoms}, {"cross_section", sigmaCm2}, {"flux", flux}, {"self_shielding", shielding}} {
		if err := requireNonNegative(p.name, p.v); err != nil {
			return 0, err
		}
	}
	return atoms * sigmaCm2 * flux * shielding, nil
}

// AtomsAtEOB returns R·f_sat/λ, the product inventory at end of bombardment.
func AtomsAtEOB(rate, saturation, lambda float64) (float64, error) {
	if err := requireNonNegative("reaction_rate", rate); err != nil {
		return 0, err
	}
	if math.IsNaN(saturation) || saturation < 0 || saturation > 1 {
		return 0, core.NewParameterError("saturation_factor", saturation, "within [0,1]")
	}
	if err := requirePositive("lambda", lambda); err != nil {
		return 0, err
	}
	return rate * saturation / lambda, nil
}

// Activity returns λ·N in Bq.
func Activity(lambda, atoms float64) (float64, error) {
	if err := requireNonNegative("lambda", lambda); err != nil {
		return 0, err
	}
	if err := requireNonNegative("atoms", atoms); err != nil {
		return 0, err
	}
	return lambda * atoms, nil
}

// DecayedActivity returns A·e^(−λt).
func DecayedActivity(activity, lambda, t float64) (float64, error) {
	if err := requireNonNegative("activity", activity); err != nil {
		return 0, err
	}
	if err := requireNonNegative("lambda", lambda); err != nil {
		return 0, err
	}
	if err := requireNonNegative("time", t); err != nil {
		return 0, err
	}
	return activity * math.Exp(-lambda*t), nil
}

// MacroscopicCrossSection returns Σ = n·σ in 1/cm for an atom density in
// atoms/cm³ and σ in cm².
func MacroscopicCrossSection(atomDensity, sigmaCm2 float64) (float64, error) {
	if err := requireNonNegative("atom_density", atomDensity); err != nil {
		return 0, err
	}
	if err := requireNonNegative("cross_section", sigmaCm2); err != nil {
		return 0, err
	}
	return atomDensity * sigmaCm2, nil
}

// SelfShieldingFactor returns (1 − e^(−Σd))/(Σd), with the limit 1 as Σd → 0.
func SelfShieldingFactor(macroSigma, thickness float64) (float64, error) {
	if err := requireNonNegative("macroscopic_cross_section", macroSigma); err != nil {
		return 0, err
	}
	if err := requireNonNegative("thickness", thickness); err != nil {
		return 0, err
	}
	x := macroSigma * thickness
	if x < shieldingSeriesLimit {
		return 1 - x/2 + x*x/6, nil
	}
	return -math.Expm1(-x) / x, nil
}

// ThresholdActivation returns the effective cross-section of a threshold
// reaction at the given energy. In scaled mode the cross-section ramps as
// ((E−E_thr)/(E_ref−E_thr))^n and is capped at sigmaRef from E_ref upward.
func ThresholdActivation(energy, threshold, sigmaRef float64, mode ActivationMode, exponent float64) (float64, error) {
	if err := requireNonNegative("energy", energy); err != nil {
		return 0, err
	}
	if err := requireNonNegative("threshold", threshold); err != nil {
		return 0, err
	}
	if err := requireNonNegative("cross_section", sigmaRef); err != nil {
		return 0, err
	}
	if energy < threshold {
		return 0, nil
	}
	if mode != ActivationScaled || threshold >= ReferenceEnergyMeV || energy >= ReferenceEnergyMeV {
		return sigmaRef, nil
	}
	if err := requirePositive("exponent", exponent); err != nil {
		return 0, err
	}
	frac := (energy - threshold) / (ReferenceEnergyMeV - threshold)
	return sigmaRef * math.Pow(frac, exponent), nil
}

// SolidAngle returns the solid angle (sr) a disc of radius r subtends at an
// on-axis point at distance d.
func SolidAngle(distance, radius float64) (float64, error) {
	if err := requireNonNegative("distance", distance); err != nil {
		return 0, err
	}
	if err := requireNonNegative("radius", radius); err != nil {
		return 0, err
	}
	if distance == 0 && radius == 0 {
		return 0, nil
	}
	return 2 * math.Pi * (1 - distance/math.Hypot(distance, radius)), nil
}

// SpecificActivity returns activity per gram of element (product + carrier).
func SpecificActivity(activity, productGrams, carrierGrams float64) (float64, error) {
	if err := requireNonNegative("activity", activity); err != nil {
		return 0, err
	}
	if err := requireNonNegative("carrier_mass", carrierGrams); err != nil {
		return 0, err
	}
	total := productGrams + carrierGrams
	if err := requirePositive("element_mass", total); err != nil {
		return 0, err
	}
	return activity / total, nil
}

// MaxSpecificActivity is the carrier-free limit λ·N_A/A in Bq/g.
func MaxSpecificActivity(lambda, atomicMass float64) (float64, error) {
	if err := requireNonNegative("lambda", lambda); err != nil {
		return 0, err
	}
	if err := requirePositive("atomic_mass", atomicMass); err != nil {
		return 0, err
	}
	return lambda * Avogadro / atomicMass, nil
}

// AtomsToGrams converts an atom count to grams.
func AtomsToGrams(atoms, atomicMass float64) float64 {
	return atoms * atomicMass / Avogadro
}

// TargetAtoms returns m·N_A·enrichment/A.
func TargetAtoms(massGrams, enrichment, atomicMass float64) (float64, error) {
	if err := requireNonNegative("target_mass", massGrams); err != nil {
		return 0, err
	}
	if math.IsNaN(enrichment) || enrichment < 0 || enrichment > 1 {
		return 0, core.NewParameterError("enrichment", enrichment, "within [0,1]")
	}
	if err := requirePositive("atomic_mass", atomicMass); err != nil {
		return 0, err
	}
	return massGrams * Avogadro * enrichment / atomicMass, nil
}
