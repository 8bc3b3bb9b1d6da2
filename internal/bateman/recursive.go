package bateman

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// secularEpsilon is the |λᵢ − λⱼ| below which a direct parent/daughter pair
// uses the secular-limit form.
const secularEpsilon = 1e-12

// coincidenceRelTol marks decay constants on a multi-generation path as
// coincident; such constants are spread apart before the product formula.
const coincidenceRelTol = 1e-6

var errCyclic = errors.New("decay network contains a cycle")

// Recursive solves Λ·N with the closed-form Bateman solution. Each isotope is
// its own surviving initial population plus the ingrowth along every decay
// path reaching it. Returns errCyclic for networks that are not DAGs.
func Recursive(n0 []float64, lambda *mat.Dense, t float64) ([]float64, error) {
	n := len(n0)
	decay := make([]float64, n)
	for i := 0; i < n; i++ {
		decay[i] = -lambda.At(i, i)
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = n0[i] * math.Exp(-decay[i]*t)
	}

	for j := 0; j < n; j++ {
		if n0[j] == 0 {
			continue
		}
		onPath := make([]bool, n)
		onPath[j] = true
		if err := walkPaths(lambda, decay, t, []int{j}, 1.0, onPath, n0[j], out); err != nil {
			return nil, err
		}
	}

	for i := range out {
		if out[i] < 0 || math.IsNaN(out[i]) {
			out[i] = 0
		}
	}
	return out, nil
}

// walkPaths extends path through every child of its last node, accumulating
// the ingrowth contribution of the path's head population into out.
// branching is the product of branching ratios along path.
func walkPaths(lambda *mat.Dense, decay []float64, t float64, path []int, branching float64, onPath []bool, head float64, out []float64) error {
	last := path[len(path)-1]
	n := len(decay)
	for c := 0; c < n; c++ {
		if c == last {
			continue
		}
		feed := lambda.At(c, last)
		if feed <= 0 {
			continue
		}
		if onPath[c] {
			return errCyclic
		}
		br := 1.0
		if decay[last] > 0 {
			br = feed / decay[last]
		}
		next := append(append([]int(nil), path...), c)
		b := branching * br
		out[c] += head * b * pathTerm(decay, next, t)

		onPath[c] = true
		if err := walkPaths(lambda, decay, t, next, b, onPath, head, out); err != nil {
			return err
		}
		onPath[c] = false
	}
	return nil
}

// pathTerm returns the unit-population, unit-branching ingrowth of the last
// node of path from its first node.
func pathTerm(decay []float64, path []int, t float64) float64 {
	if len(path) == 2 {
		lp, ld := decay[path[0]], decay[path[1]]
		if math.Abs(ld-lp) < secularEpsilon {
			return lp * t * math.Exp(-lp*t)
		}
		return lp / (ld - lp) * (math.Exp(-lp*t) - math.Exp(-ld*t))
	}

	ls := make([]float64, len(path))
	for k, idx := range path {
		ls[k] = decay[idx]
	}
	spread(ls)

	coef := 1.0
	for k := 0; k < len(ls)-1; k++ {
		coef *= ls[k]
	}
	sum := 0.0
	for q := range ls {
		denom := 1.0
		for r := range ls {
			if r != q {
				denom *= ls[r] - ls[q]
			}
		}
		sum += math.Exp(-ls[q]*t) / denom
	}
	return coef * sum
}

// spread nudges coincident decay constants apart so the product formula
// stays finite.
func spread(ls []float64) {
	for q := 1; q < len(ls); q++ {
		for r := 0; r < q; r++ {
			scale := math.Max(math.Abs(ls[q]), math.Abs(ls[r]))
			if scale == 0 {
				scale = secularEpsilon
			}
			if math.Abs(ls[q]-ls[r]) <= coincidenceRelTol*scale {
				ls[q] = ls[r] + 1e-4*scale*float64(q)
				r = -1
			}
		}
	}
}
