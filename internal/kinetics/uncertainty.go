package kinetics

import (
	"math"
	"math/rand/v2"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"isoplan/domain/core"
)

// UncertaintyRSS combines independent relative uncertainties as √(Σσᵢ²).
func UncertaintyRSS(sigmas []float64) (float64, error) {
	sum := 0.0
	for _, s := range sigmas {
		if err := requireNonNegative("uncertainty", s); err != nil {
			return 0, err
		}
		sum += s * s
	}
	return math.Sqrt(sum), nil
}

// Perturbation holds multiplicative factors applied to one Monte Carlo sample.
type Perturbation struct {
	CrossSection float64
	Flux         float64
	Mass         float64
	HalfLife     float64
}

// RelativeSigmas are one-sigma relative uncertainties per input.
type RelativeSigmas struct {
	CrossSection float64
	Flux         float64
	Mass         float64
	HalfLife     float64
}

// Slice returns the sigmas in a fixed order.
func (r RelativeSigmas) Slice() []float64 {
	return []float64{r.CrossSection, r.Flux, r.Mass, r.HalfLife}
}

// MonteCarloSummary describes the sampled output distribution.
type MonteCarloSummary struct {
	Samples int
	Mean    float64
	StdDev  float64
	P5      float64
	P50     float64
	P95     float64
}

// factorSampler draws unit-mean log-normal factors so perturbed inputs stay positive.
type factorSampler struct {
	dist  distuv.LogNormal
	fixed bool
}

func newFactorSampler(rel float64, src rand.Source) factorSampler {
	if rel <= 0 {
		return factorSampler{fixed: true}
	}
	s := math.Sqrt(math.Log1p(rel * rel))
	return factorSampler{dist: distuv.LogNormal{Mu: -s * s / 2, Sigma: s, Src: src}}
}

func (f factorSampler) draw() float64 {
	if f.fixed {
		return 1
	}
	return f.dist.Rand()
}

// MonteCarlo propagates input uncertainty through model by sampling n
// perturbations with a deterministic seed.
func MonteCarlo(n int, seed uint64, sigmas RelativeSigmas, model func(Perturbation) (float64, error)) (MonteCarloSummary, error) {
	if n < 2 {
		return MonteCarloSummary{}, core.NewParameterError("samples", float64(n), ">= 2")
	}
	for _, s := range sigmas.Slice() {
		if err := requireNonNegative("relative_sigma", s); err != nil {
			return MonteCarloSummary{}, err
		}
	}

	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	xs := newFactorSampler(sigmas.CrossSection, src)
	fl := newFactorSampler(sigmas.Flux, src)
	ms := newFactorSampler(sigmas.Mass, src)
	hl := newFactorSampler(sigmas.HalfLife, src)

	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		v, err := model(Perturbation{
			CrossSection: xs.draw(),
			Flux:         fl.draw(),
			Mass:         ms.draw(),
			HalfLife:     hl.draw(),
		})
		if err != nil {
			return MonteCarloSummary{}, err
		}
		out = append(out, v)
	}

	data := stats.Float64Data(out)
	mean, err := data.Mean()
	if err != nil {
		return MonteCarloSummary{}, err
	}
	std, err := data.StandardDeviationSample()
	if err != nil {
		return MonteCarloSummary{}, err
	}
	p5, err := data.Percentile(5)
	if err != nil {
		return MonteCarloSummary{}, err
	}
	p50, err := data.Median()
	if err != nil {
		return MonteCarloSummary{}, err
	}
	p95, err := data.Percentile(95)
	if err != nil {
		return MonteCarloSummary{}, err
	}

	return MonteCarloSummary{Samples: n, Mean: mean, StdDev: std, P5: p5, P50: p50, P95: p95}, nil
}
