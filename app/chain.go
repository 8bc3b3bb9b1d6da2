package app

import (
	"context"
	"fmt"

	"isoplan/domain/core"
	"isoplan/internal/bateman"
	"isoplan/internal/kinetics"
	"isoplan/internal/metrics"
)

// ChainIsotope names one network member. HalfLifeDays of 0 looks the
// half-life up in the nuclear data; an isotope the data marks stable gets
// λ = 0.
type ChainIsotope struct {
	Name         string               `json:"name" yaml:"name"`
	HalfLifeDays float64              `json:"half_life_days,omitempty" yaml:"half_life_days,omitempty"`
	Parents      []bateman.ParentLink `json:"parents,omitempty" yaml:"parents,omitempty"`
}

// ChainRequest asks for populations of a decay network at one or more times.
type ChainRequest struct {
	Isotopes []ChainIsotope     `json:"isotopes" yaml:"isotopes"`
	Initial  map[string]float64 `json:"initial" yaml:"initial"`
	Times    []float64          `json:"times_s" yaml:"times_s"`
}

// ChainPoint is the network state at one time.
type ChainPoint struct {
	TimeSeconds float64            `json:"t_s"`
	Populations map[string]float64 `json:"populations"`
	Activities  map[string]float64 `json:"activities_bq"`
	Method      bateman.Method     `json:"method"`
	Steps       int                `json:"steps,omitempty"`
}

// ChainResult is the solved time series.
type ChainResult struct {
	Points   []ChainPoint   `json:"points"`
	Warnings []core.Warning `json:"warnings,omitempty"`
}

// ChainSpec resolves half-lives into decay constants.
func (s *PlanningService) ChainSpec(req ChainRequest) (bateman.ChainSpec, error) {
	spec := bateman.ChainSpec{Isotopes: make([]bateman.Isotope, 0, len(req.Isotopes))}
	for _, iso := range req.Isotopes {
		lambda, err := s.decayConstant(iso)
		if err != nil {
			return bateman.ChainSpec{}, err
		}
		spec.Isotopes = append(spec.Isotopes, bateman.Isotope{Name: iso.Name, DecayConstant: lambda, Parents: iso.Parents})
	}
	return spec, nil
}

func (s *PlanningService) decayConstant(iso ChainIsotope) (float64, error) {
	if iso.HalfLifeDays > 0 {
		return kinetics.DecayConstant(iso.HalfLifeDays)
	}
	if s.data != nil {
		if hl, ok := s.data.HalfLife(iso.Name); ok {
			if hl.Stable {
				return 0, nil
			}
			return kinetics.DecayConstant(hl.Days)
		}
	}
	return 0, core.NewInputError("half_life_days", fmt.Sprintf("no half-life given or tabulated for %s", iso.Name))
}

// SolveChain solves a decay network at each requested time.
func (s *PlanningService) SolveChain(ctx context.Context, req ChainRequest) (ChainResult, error) {
	if len(req.Times) == 0 {
		return ChainResult{}, core.NewInputError("times_s", "at least one time is required")
	}
	spec, err := s.ChainSpec(req)
	if err != nil {
		return ChainResult{}, err
	}
	lambda, warnings, err := spec.Matrix()
	if err != nil {
		return ChainResult{}, err
	}
	n0, err := spec.InitialVector(req.Initial)
	if err != nil {
		return ChainResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return ChainResult{}, err
	}

	series, err := s.solver.Series(n0, lambda, req.Times)
	if err != nil {
		return ChainResult{}, err
	}

	names := spec.Names()
	out := ChainResult{Points: make([]ChainPoint, 0, len(series)), Warnings: warnings}
	for i, res := range series {
		metrics.RecordSolve(string(res.Method))
		pt := ChainPoint{
			TimeSeconds: req.Times[i],
			Populations: make(map[string]float64, len(names)),
			Activities:  make(map[string]float64, len(names)),
			Method:      res.Method,
			Steps:       res.Steps,
		}
		for j, name := range names {
			pt.Populations[name] = res.Populations[j]
			pt.Activities[name] = spec.Isotopes[j].DecayConstant * res.Populations[j]
		}
		out.Points = append(out.Points, pt)
		out.Warnings = append(out.Warnings, res.Warnings...)
	}
	s.logger.Warnings("chain", out.Warnings)
	return out, nil
}
