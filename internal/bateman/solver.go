package bateman

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"isoplan/domain/core"
)

// Method names the algorithm that produced a Result.
type Method string

const (
	MethodRecursive Method = "recursive"
	MethodEuler     Method = "euler"
)

// RecursiveLimit is the largest network solved in closed form.
const RecursiveLimit = 4

// Options tune the solver.
type Options struct {
	MaxSteps int
}

// Result is the population vector at time t.
type Result struct {
	Populations []float64      `json:"populations"`
	Method      Method         `json:"method"`
	Steps       int            `json:"steps,omitempty"`
	Warnings    []core.Warning `json:"warnings,omitempty"`
}

// Solver dispatches between the closed form and the integrator.
type Solver struct {
	opts Options
}

// NewSolver creates a solver.
func NewSolver(opts Options) *Solver {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	return &Solver{opts: opts}
}

// Solve returns N(t) for dN/dt = Λ·N, N(0) = n0.
func (s *Solver) Solve(n0 []float64, lambda *mat.Dense, t float64) (Result, error) {
	if err := checkSystem(n0, lambda, t); err != nil {
		return Result{}, err
	}

	if len(n0) <= RecursiveLimit {
		pops, err := Recursive(n0, lambda, t)
		if err == nil {
			return Result{Populations: pops, Method: MethodRecursive}, nil
		}
		if !errors.Is(err, errCyclic) {
			return Result{}, err
		}
		res, err := s.euler(n0, lambda, t)
		if err != nil {
			return Result{}, err
		}
		res.Warnings = append([]core.Warning{core.NewWarning(core.WarnCyclicChain, core.SeverityInfo, core.CategorySolver,
			"decay network is cyclic; integrated numerically")}, res.Warnings...)
		return res, nil
	}
	return s.euler(n0, lambda, t)
}

func (s *Solver) euler(n0 []float64, lambda *mat.Dense, t float64) (Result, error) {
	pops, steps, warnings, err := Euler(n0, lambda, t, s.opts.MaxSteps)
	if err != nil {
		return Result{}, err
	}
	return Result{Populations: pops, Method: MethodEuler, Steps: steps, Warnings: warnings}, nil
}

// SolveChain solves a named network and returns populations keyed by isotope.
func (s *Solver) SolveChain(spec ChainSpec, initial map[string]float64, t float64) (map[string]float64, Result, error) {
	lambda, warnings, err := spec.Matrix()
	if err != nil {
		return nil, Result{}, err
	}
	n0, err := spec.InitialVector(initial)
	if err != nil {
		return nil, Result{}, err
	}
	res, err := s.Solve(n0, lambda, t)
	if err != nil {
		return nil, Result{}, err
	}
	res.Warnings = append(warnings, res.Warnings...)

	out := make(map[string]float64, len(spec.Isotopes))
	for i, name := range spec.Names() {
		out[name] = res.Populations[i]
	}
	return out, res, nil
}

// Series solves the network at each of times.
func (s *Solver) Series(n0 []float64, lambda *mat.Dense, times []float64) ([]Result, error) {
	out := make([]Result, 0, len(times))
	for _, t := range times {
		res, err := s.Solve(n0, lambda, t)
		if err != nil {
			return nil, fmt.Errorf("t=%g: %w", t, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func checkSystem(n0 []float64, lambda *mat.Dense, t float64) error {
	if n0 == nil {
		return core.NewInputError("n0", "missing initial populations")
	}
	if lambda == nil {
		return core.NewInputError("lambda", "missing decay matrix")
	}
	r, c := lambda.Dims()
	if r != c {
		return core.NewInputError("lambda", fmt.Sprintf("matrix is %dx%d, want square", r, c))
	}
	if r != len(n0) {
		return core.NewInputError("n0", fmt.Sprintf("length %d does not match %dx%d matrix", len(n0), r, c))
	}
	if math.IsNaN(t) || t < 0 || math.IsInf(t, 0) {
		return core.NewParameterError("time", t, "finite and >= 0")
	}
	for i, v := range n0 {
		if math.IsNaN(v) || v < 0 {
			return core.NewInputError("n0", fmt.Sprintf("population[%d]=%g must be >= 0", i, v))
		}
	}
	for i := 0; i < r; i++ {
		lambdaI := -lambda.At(i, i)
		if math.IsNaN(lambdaI) || lambdaI < 0 {
			return core.NewInputError("lambda", fmt.Sprintf("diagonal[%d]=%g must be <= 0", i, -lambdaI))
		}
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if i == j {
				continue
			}
			v := lambda.At(i, j)
			if math.IsNaN(v) || v < 0 {
				return core.NewInputError("lambda", fmt.Sprintf("entry[%d][%d]=%g must be >= 0", i, j, v))
			}
			if v > 0 && v > -lambda.At(j, j)*(1+1e-9) {
				return core.NewInputError("lambda", fmt.Sprintf("entry[%d][%d] implies branching ratio above 1", i, j))
			}
		}
	}
	return nil
}
