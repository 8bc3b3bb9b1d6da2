package evaluator

import (
	"isoplan/domain/core"
	"isoplan/internal/bateman"
	"isoplan/internal/kinetics"
)

// ingrowth describes the post-EOB decay of a generator parent into the product.
type ingrowth struct {
	branching float64
	seconds   float64
}

// yieldInput is everything needed to turn a target into product activity.
// Units: cm², n/cm²/s, s, 1/s, cm³, cm.
type yieldInput struct {
	targetAtoms    float64
	sigmaCm2       float64
	flux           float64
	shielding      float64
	derating       float64
	lambdaProduced float64
	lambdaProduct  float64
	irradiation    float64
	burnupSigmaCm2 float64
	volumeCm3      float64
	thicknessCm    float64
	generator      *ingrowth
}

type yieldOutput struct {
	rate          float64
	saturation    float64
	burnupRate    float64
	producedAtoms float64
	productAtoms  float64
	activity      float64
	warnings      []core.Warning
}

// compute runs rate → saturation → EOB atoms (with optional burn-up) →
// optional generator ingrowth → activity.
func (in yieldInput) compute() (yieldOutput, error) {
	var out yieldOutput

	rate, err := kinetics.ReactionRate(in.targetAtoms, in.sigmaCm2, in.flux, in.shielding)
	if err != nil {
		return out, err
	}
	out.rate = rate * in.derating

	out.saturation, err = kinetics.SaturationFactor(in.lambdaProduced, in.irradiation)
	if err != nil {
		return out, err
	}

	if in.burnupSigmaCm2 > 0 {
		density, err := kinetics.EstimateProductDensity(out.rate, out.saturation, in.lambdaProduced, in.volumeCm3)
		if err != nil {
			return out, err
		}
		out.burnupRate, err = kinetics.ProductBurnupRate(in.flux, in.burnupSigmaCm2, density, in.thicknessCm)
		if err != nil {
			return out, err
		}
		var warns []core.Warning
		out.producedAtoms, warns, err = kinetics.AtomsAtEOBWithBurnup(out.rate, in.lambdaProduced, out.burnupRate, in.irradiation)
		if err != nil {
			return out, err
		}
		out.warnings = append(out.warnings, warns...)
	} else {
		out.producedAtoms, err = kinetics.AtomsAtEOB(out.rate, out.saturation, in.lambdaProduced)
		if err != nil {
			return out, err
		}
	}

	out.productAtoms = out.producedAtoms
	if in.generator != nil {
		_, daughter, err := bateman.OneStep(out.producedAtoms, 0, in.lambdaProduced, in.lambdaProduct,
			in.generator.branching, in.generator.seconds)
		if err != nil {
			return out, err
		}
		out.productAtoms = daughter
	}

	out.activity, err = kinetics.Activity(in.lambdaProduct, out.productAtoms)
	return out, err
}

// perturbed applies one Monte Carlo sample. Half-life factors scale λ
// inversely.
func (in yieldInput) perturbed(p kinetics.Perturbation) yieldInput {
	out := in
	out.sigmaCm2 *= p.CrossSection
	out.flux *= p.Flux
	out.targetAtoms *= p.Mass
	out.lambdaProduct /= p.HalfLife
	if in.generator == nil {
		out.lambdaProduced = out.lambdaProduct
	}
	return out
}
