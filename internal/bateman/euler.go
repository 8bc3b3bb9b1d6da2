package bateman

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"isoplan/domain/core"
)

const (
	// StabilityLimit bounds λ_max·Δt for explicit Euler.
	StabilityLimit = 0.2
	// MaxInitialStep caps the starting step in seconds.
	MaxInitialStep = 0.1
	// DefaultMaxSteps is the step budget when none is configured.
	DefaultMaxSteps = 5_000_000
)

// Euler integrates dN/dt = Λ·N from 0 to t with forward Euler. The step
// starts at min(t/1000, 0.1 s) and is shrunk until λ_max·Δt ≤ 0.2. When the
// step count would exceed maxSteps the step is stretched to t/maxSteps if
// that is still stable; otherwise core.ErrStepBudgetExceeded is returned.
// The last step is shortened to land on t and populations are clamped at 0.
func Euler(n0 []float64, lambda *mat.Dense, t float64, maxSteps int) ([]float64, int, []core.Warning, error) {
	n := len(n0)
	state := mat.NewVecDense(n, append([]float64(nil), n0...))
	if t == 0 {
		return state.RawVector().Data, 0, nil, nil
	}
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	decay := make([]float64, n)
	for i := range decay {
		decay[i] = -lambda.At(i, i)
	}
	lambdaMax := floats.Max(decay)

	var warnings []core.Warning
	dt := math.Min(t/1000, MaxInitialStep)
	if lambdaMax*dt > StabilityLimit {
		dt = StabilityLimit / lambdaMax
		warnings = append(warnings, core.NewWarning(core.WarnStabilityGuard, core.SeverityInfo, core.CategorySolver,
			"time step reduced to %.3g s to keep λ_max·Δt ≤ %.1f", dt, StabilityLimit))
	}

	steps := int(math.Ceil(t / dt))
	if steps > maxSteps {
		stretched := t / float64(maxSteps)
		if lambdaMax*stretched > StabilityLimit {
			return nil, 0, warnings, core.ErrStepBudgetExceeded
		}
		dt = stretched
		steps = int(math.Ceil(t / dt))
		warnings = append(warnings, core.NewWarning(core.WarnStepBudgetStretched, core.SeverityInfo, core.CategorySolver,
			"time step stretched to %.3g s to fit %d steps", dt, maxSteps))
	}

	deriv := mat.NewVecDense(n, nil)
	raw := state.RawVector().Data
	elapsed := 0.0
	for k := 0; k < steps; k++ {
		h := dt
		if k == steps-1 || elapsed+h > t {
			h = t - elapsed
		}
		if h <= 0 {
			break
		}
		deriv.MulVec(lambda, state)
		state.AddScaledVec(state, h, deriv)
		for i := range raw {
			if raw[i] < 0 {
				raw[i] = 0
			}
		}
		elapsed += h
	}
	return raw, steps, warnings, nil
}
