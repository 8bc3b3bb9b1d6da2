package evaluator

import (
	"context"
	"math"

	"isoplan/domain/core"
	"isoplan/domain/route"
	"isoplan/domain/verdict"
	"isoplan/internal/kinetics"
)

const (
	// traceImpurityFraction is the parent abundance assumed when none is tabulated.
	traceImpurityFraction = 0.001
	// shortLivedProductDays separates short-lived products, for which
	// long-lived or stable contaminants accumulate relative to the product.
	shortLivedProductDays = 30.0
	highHalfLifeRatio     = 10.0
	moderateHalfLifeRatio = 3.0

	highImpurityFraction   = 0.01
	mediumImpurityFraction = 0.001
)

// longLivedContaminants are impurities that dominate waste and dose once a
// short-lived product has decayed.
var longLivedContaminants = map[string]bool{
	"Co-60": true, "Cs-137": true, "Sr-90": true, "Eu-152": true, "Eu-154": true,
	"Lu-177m": true, "Ag-110m": true, "Sc-46": true, "Zn-65": true, "Fe-59": true,
	"Ir-192": true, "Cl-36": true, "Tc-99": true, "C-14": true, "H-3": true,
	"Ni-63": true, "Am-241": true, "Ho-166m": true,
}

// trapPoints is the contribution of a trap to the impurity risk score.
var trapPoints = map[verdict.TrapSeverity]int{
	verdict.TrapHigh:     3,
	verdict.TrapModerate: 1,
}

// impurityRiskFromScore grades the accumulated trap score.
func impurityRiskFromScore(score int) verdict.RiskLevel {
	switch {
	case score >= 3:
		return verdict.RiskHigh
	case score >= 1:
		return verdict.RiskMedium
	default:
		return verdict.RiskLow
	}
}

// Stage 7.
func (e *Evaluator) impurities(_ context.Context, p *pipeline) error {
	if len(p.d.Impurities) == 0 {
		p.res.ImpurityRisk = verdict.RiskLow
		return nil
	}

	risk := verdict.RiskLow
	score := 0
	recognized := 0
	for _, imp := range p.d.Impurities {
		if !route.IsIsotopeLabel(imp.Isotope) {
			p.warn(core.NewWarning(core.WarnUnparseableImpurity, core.SeverityInfo, core.CategoryImpurity,
				"impurity %q is not an isotope label; skipped", imp.Isotope))
			continue
		}
		recognized++

		s, floor := e.qualitativeTraps(p, imp)
		score += s
		risk = risk.AtLeast(floor)

		level, err := e.quantitativeImpurity(p, imp)
		if err != nil {
			return err
		}
		risk = risk.AtLeast(level)
	}

	if recognized == 0 {
		p.res.ImpurityRisk = verdict.RiskUnknown
		return nil
	}
	p.res.ImpurityRisk = risk.AtLeast(impurityRiskFromScore(score))
	return nil
}

func (p *pipeline) trap(t verdict.TrapType, sev verdict.TrapSeverity, isotope, msg string) {
	p.res.Traps = append(p.res.Traps, verdict.ImpurityTrap{Type: t, Severity: sev, Isotope: isotope, Message: msg})
}

// qualitativeTraps applies the half-life and chemistry rules to one impurity
// and returns its trap score and a minimum risk level.
func (e *Evaluator) qualitativeTraps(p *pipeline, imp route.ImpurityRisk) (int, verdict.RiskLevel) {
	productDays := p.d.HalfLifeDays
	shortLived := productDays < shortLivedProductDays
	floor := verdict.RiskLow
	score := 0

	if longLivedContaminants[imp.Isotope] && shortLived {
		p.warn(core.NewWarning(core.WarnLongLivedImpurity, core.SeverityModerate, core.CategoryImpurity,
			"long-lived contaminant %s accompanies short-lived %s", imp.Isotope, p.d.Product))
		floor = verdict.RiskMedium
	}

	sameElement := route.SameElement(imp.Isotope, p.d.Product)
	if sameElement {
		p.warn(core.NewWarning(core.WarnSameElementImpurity, core.SeverityHigh, core.CategoryImpurity,
			"%s is the same element as %s and cannot be removed chemically", imp.Isotope, p.d.Product))
		p.trap(verdict.TrapSameElement, verdict.TrapHigh, imp.Isotope, "same-element impurity, no chemical separation")
		score += trapPoints[verdict.TrapHigh]
		if !p.d.CarrierAddedAcceptable {
			p.reject("same-element impurity %s cannot be separated from %s and carrier-added product is not acceptable",
				imp.Isotope, p.d.Product)
		}
	}

	hl, known := e.data.HalfLife(imp.Isotope)
	if !known {
		return score, floor
	}

	switch {
	case hl.Stable && shortLived:
		p.trap(verdict.TrapStableAccumulate, verdict.TrapHigh, imp.Isotope, "stable impurity accumulates as the product decays")
		p.warn(core.NewWarning(core.WarnImpurityTrap, core.SeverityHigh, core.CategoryImpurity,
			"stable %s accumulates relative to %s after EOB", imp.Isotope, p.d.Product))
		score += trapPoints[verdict.TrapHigh]
	case !hl.Stable && hl.Days > 0:
		ratio := hl.Days / productDays
		sev := verdict.TrapSeverity("")
		switch {
		case ratio > highHalfLifeRatio:
			sev = verdict.TrapHigh
		case ratio > moderateHalfLifeRatio:
			sev = verdict.TrapModerate
		}
		if sev != "" {
			p.trap(verdict.TrapLongLived, sev, imp.Isotope, "impurity outlives the product")
			p.warn(core.NewWarning(core.WarnImpurityTrap, core.Severity(sev), core.CategoryImpurity,
				"%s half-life is %.1fx that of %s; impurity fraction grows after EOB", imp.Isotope, ratio, p.d.Product))
			score += trapPoints[sev]
		}
	}

	if sameElement && (hl.Stable || hl.Days > shortLivedProductDays) {
		p.trap(verdict.TrapFailCondition, verdict.TrapHigh, imp.Isotope, "long-lived same-element impurity")
		p.constrain("long-lived same-element impurity %s stays with %s through processing", imp.Isotope, p.d.Product)
	}
	return score, floor
}

// quantitativeImpurity estimates the impurity activity at EOB when its
// production path and cross-section are tabulated.
func (e *Evaluator) quantitativeImpurity(p *pipeline, imp route.ImpurityRisk) (verdict.RiskLevel, error) {
	if imp.Path == "" || p.activityEOB <= 0 {
		return verdict.RiskLow, nil
	}
	path, err := imp.ParsePath()
	if err != nil {
		p.warn(core.NewWarning(core.WarnUnparseableImpurity, core.SeverityInfo, core.CategoryImpurity,
			"production path %q of %s not understood", imp.Path, imp.Isotope))
		return verdict.RiskLow, nil
	}
	key := path.Key(imp.Isotope)
	sigma, ok := e.data.ImpurityCrossSection(key)
	if !ok || sigma <= 0 {
		return verdict.RiskLow, nil
	}
	if pw, ok := e.data.LookupPathway(key); ok && pw.ThresholdMeV > p.c.NeutronEnergyMeV {
		return verdict.RiskLow, nil
	}
	hl, ok := e.data.HalfLife(imp.Isotope)
	if !ok || hl.Stable || hl.Days <= 0 {
		return verdict.RiskLow, nil
	}
	lambda, err := kinetics.DecayConstant(hl.Days)
	if err != nil {
		return "", err
	}

	atoms := e.impurityParentAtoms(p, path.Parent)
	flux, _ := fluxFor(path.Reaction, p.c)
	rate, err := kinetics.ReactionRate(atoms, kinetics.BarnsToCm2(sigma), flux, p.shielding)
	if err != nil {
		return "", err
	}
	rate *= p.c.DeratingFactor()
	activity := rate * -math.Expm1(-lambda*p.c.IrradiationSeconds)
	fraction := activity / p.activityEOB

	p.res.Impurities = append(p.res.Impurities, verdict.ImpurityActivity{
		Isotope:        imp.Isotope,
		ActivityBq:     activity,
		FractionOfProd: fraction,
	})

	switch {
	case fraction > highImpurityFraction:
		p.warn(core.NewWarning(core.WarnImpurityActivity, core.SeverityHigh, core.CategoryImpurity,
			"%s activity is %.2f%% of the product at EOB", imp.Isotope, fraction*100))
		return verdict.RiskHigh, nil
	case fraction > mediumImpurityFraction:
		p.warn(core.NewWarning(core.WarnImpurityActivity, core.SeverityModerate, core.CategoryImpurity,
			"%s activity is %.2f%% of the product at EOB", imp.Isotope, fraction*100))
		return verdict.RiskMedium, nil
	}
	return verdict.RiskLow, nil
}

// impurityParentAtoms counts the atoms of an impurity's parent in the target.
func (e *Evaluator) impurityParentAtoms(p *pipeline, parent string) float64 {
	if parent == p.d.Target {
		return p.targetAtoms
	}
	if route.SameElement(parent, p.d.Target) {
		return p.elementAtoms * e.naturalAbundance(p, parent)
	}
	return p.elementAtoms * traceImpurityFraction
}
