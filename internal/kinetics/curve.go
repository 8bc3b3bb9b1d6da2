package kinetics

import (
	"math"

	"isoplan/domain/core"
)

// CurvePoint is one sample of an irradiation/decay history.
type CurvePoint struct {
	TimeSeconds float64 `json:"t_s"`
	Atoms       float64 `json:"atoms"`
	ActivityBq  float64 `json:"activity_bq"`
	Irradiating bool    `json:"irradiating"`
}

// ActivityCurve samples product atoms and activity on a uniform grid covering
// build-up during irradiation (constant rate R, effective removal λ_eff) and
// free decay (λ) after EOB.
func ActivityCurve(rate, lambdaDecay, burnupRate, irradiationSeconds, decaySeconds float64, points int) ([]CurvePoint, error) {
	if points < 2 {
		return nil, core.NewParameterError("points", float64(points), ">= 2")
	}
	if err := requireNonNegative("decay_time", decaySeconds); err != nil {
		return nil, err
	}
	if err := requirePositive("lambda", lambdaDecay); err != nil {
		return nil, err
	}
	atomsEOB, _, err := AtomsAtEOBWithBurnup(rate, lambdaDecay, burnupRate, irradiationSeconds)
	if err != nil {
		return nil, err
	}
	lambdaEff := lambdaDecay + burnupRate

	total := irradiationSeconds + decaySeconds
	step := total / float64(points-1)
	curve := make([]CurvePoint, 0, points)
	for i := 0; i < points; i++ {
		t := step * float64(i)
		if i == points-1 {
			t = total
		}
		var n float64
		irradiating := t <= irradiationSeconds && irradiationSeconds > 0
		if irradiating {
			n = rate * -math.Expm1(-lambdaEff*t) / lambdaEff
		} else {
			n = atomsEOB * math.Exp(-lambdaDecay*(t-irradiationSeconds))
		}
		curve = append(curve, CurvePoint{
			TimeSeconds: t,
			Atoms:       n,
			ActivityBq:  lambdaDecay * n,
			Irradiating: irradiating,
		})
	}
	return curve, nil
}
