package kinetics

import (
	"math"

	"isoplan/domain/core"
)

// EffectiveDecayConstant folds product burn-up into the decay constant.
func EffectiveDecayConstant(lambdaDecay, burnupRate float64) (float64, error) {
	if err := requireNonNegative("lambda", lambdaDecay); err != nil {
		return 0, err
	}
	if err := requireNonNegative("burnup_rate", burnupRate); err != nil {
		return 0, err
	}
	return lambdaDecay + burnupRate, nil
}

// ProductBurnupRate returns k_burn = φ·σ_burn·f_shield(Σ_product, d) in 1/s.
// A non-positive burn-up cross-section means "no data" and yields 0, which
// keeps the decay-only behavior.
func ProductBurnupRate(flux, sigmaBurnCm2, productDensity, thickness float64) (float64, error) {
	if sigmaBurnCm2 <= 0 || math.IsNaN(sigmaBurnCm2) {
		return 0, nil
	}
	if err := requireNonNegative("flux", flux); err != nil {
		return 0, err
	}
	macro, err := MacroscopicCrossSection(productDensity, sigmaBurnCm2)
	if err != nil {
		return 0, err
	}
	shield, err := SelfShieldingFactor(macro, thickness)
	if err != nil {
		return 0, err
	}
	return flux * sigmaBurnCm2 * shield, nil
}

// EstimateProductDensity approximates the product atom density (atoms/cm³)
// at EOB as R·f_sat/λ spread over the target volume. Returns 0 when the
// volume is unknown.
func EstimateProductDensity(rate, saturation, lambda, volumeCm3 float64) (float64, error) {
	if volumeCm3 <= 0 {
		return 0, nil
	}
	atoms, err := AtomsAtEOB(rate, saturation, lambda)
	if err != nil {
		return 0, err
	}
	return atoms / volumeCm3, nil
}

// AtomsAtEOBWithBurnup returns R·(1 − e^(−λ_eff·t))/λ_eff with
// λ_eff = λ_decay + k_burn. A burn-up rate exceeding the decay constant is
// reported as a warning; the value is still returned.
func AtomsAtEOBWithBurnup(rate, lambdaDecay, burnupRate, t float64) (float64, []core.Warning, error) {
	if err := requireNonNegative("reaction_rate", rate); err != nil {
		return 0, nil, err
	}
	if err := requireNonNegative("time", t); err != nil {
		return 0, nil, err
	}
	lambdaEff, err := EffectiveDecayConstant(lambdaDecay, burnupRate)
	if err != nil {
		return 0, nil, err
	}
	if err := requirePositive("lambda_eff", lambdaEff); err != nil {
		return 0, nil, err
	}

	var warnings []core.Warning
	if burnupRate > lambdaDecay {
		warnings = append(warnings, core.NewWarning(core.WarnBurnupDominant, core.SeverityModerate, core.CategoryPhysics,
			"product burn-up rate %.3g/s exceeds decay constant %.3g/s; yield strongly suppressed", burnupRate, lambdaDecay))
	}
	return rate * -math.Expm1(-lambdaEff*t) / lambdaEff, warnings, nil
}
