package bateman

import (
	"math"

	"isoplan/domain/core"
)

// OneStep is the closed-form parent → daughter solution over t seconds.
func OneStep(parent0, daughter0, lambdaParent, lambdaDaughter, branching, t float64) (parent, daughter float64, err error) {
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"parent_population", parent0},
		{"daughter_population", daughter0},
		{"lambda_parent", lambdaParent},
		{"lambda_daughter", lambdaDaughter},
		{"time", t},
	} {
		if math.IsNaN(p.v) || p.v < 0 {
			return 0, 0, core.NewParameterError(p.name, p.v, ">= 0")
		}
	}
	if math.IsNaN(branching) || branching < 0 || branching > 1 {
		return 0, 0, core.NewParameterError("branching_ratio", branching, "within [0,1]")
	}

	decay := []float64{lambdaParent, lambdaDaughter}
	parent = parent0 * math.Exp(-lambdaParent*t)
	daughter = daughter0*math.Exp(-lambdaDaughter*t) + parent0*branching*pathTerm(decay, []int{0, 1}, t)
	return parent, math.Max(daughter, 0), nil
}
