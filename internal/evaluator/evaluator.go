// Package evaluator turns a route descriptor and operating conditions into a
// feasibility verdict.
//
// Evaluation is a pipeline of gates and checks. Physical impossibility or a
// regulatory block ends it early with a "Not recommended" verdict; softer
// findings accumulate as reasons (which downgrade to "Feasible with
// constraints") or as warnings (which never change the classification).
// Malformed input is returned as an error before any verdict is built.
package evaluator

import (
	"context"
	"fmt"

	"isoplan/domain/core"
	"isoplan/domain/route"
	"isoplan/domain/verdict"
	"isoplan/internal/kinetics"
	"isoplan/ports"
)

const (
	// DefaultAtomicMass (g/mol) is used when the target element is not tabulated.
	DefaultAtomicMass = 100.0
	// PlaceholderCrossSection (barns) stands in for an unspecified cross-section.
	PlaceholderCrossSection = 1.0
	// FastFluxFraction of the thermal flux is assumed when no fast flux is given.
	FastFluxFraction = 0.1
	// DefaultIngrowthSeconds applies to generator routes without an ingrowth time.
	DefaultIngrowthSeconds = 24 * core.SecondsPerHour
	// MinReactionRate (1/s) below which a low-rate warning is raised.
	MinReactionRate = 1e6
	// NCASpecificActivityTBqPerG is the n.c.a. specific-activity requirement.
	NCASpecificActivityTBqPerG = 1.0
)

// Options tune optional evaluation features.
type Options struct {
	MonteCarloSamples int
	MonteCarloSeed    uint64
}

// Evaluator is stateless between calls and safe for concurrent use.
type Evaluator struct {
	data ports.NuclearDataPort
	opts Options
}

// New creates an evaluator. A nil data source behaves as an empty table.
func New(data ports.NuclearDataPort, opts Options) *Evaluator {
	if data == nil {
		data = noData{}
	}
	return &Evaluator{data: data, opts: opts}
}

// MonteCarloEnabled reports whether evaluations draw uncertainty samples.
func (e *Evaluator) MonteCarloEnabled() bool { return e.opts.MonteCarloSamples > 1 }

// pipeline carries the verdict under construction.
type pipeline struct {
	d        route.Descriptor
	c        route.Conditions
	res      verdict.Result
	terminal bool

	// computed along the way
	lambda       float64
	atomicMass   float64
	targetAtoms  float64
	elementAtoms float64
	shielding    float64
	yield        yieldInput
	activityEOB  float64
	delivered    float64
	specificTBqG *float64
}

func (p *pipeline) reject(format string, args ...interface{}) {
	p.res.Reasons = append(p.res.Reasons, fmt.Sprintf(format, args...))
	p.terminal = true
}

func (p *pipeline) constrain(format string, args ...interface{}) {
	p.res.Reasons = append(p.res.Reasons, fmt.Sprintf(format, args...))
}

func (p *pipeline) warn(ws ...core.Warning) {
	p.res.Warnings = append(p.res.Warnings, ws...)
}

// Evaluate runs the full pipeline for one (route, conditions) pair.
func (e *Evaluator) Evaluate(ctx context.Context, d route.Descriptor, c route.Conditions) (verdict.Result, error) {
	if err := d.Validate(); err != nil {
		return verdict.Result{}, err
	}
	c, err := route.NewConditions(c)
	if err != nil {
		return verdict.Result{}, err
	}

	p := &pipeline{
		d: d,
		c: c,
		res: verdict.Result{
			EvaluationID: core.NewEvaluationID(),
			RouteID:      d.ID,
			Application:  string(c.Application),
			Reasons:      []string{},
			Warnings:     []core.Warning{},
			ImpurityRisk: verdict.RiskUnknown,
		},
	}

	stages := []func(context.Context, *pipeline) error{
		e.thresholdGate,
		e.separabilityGate,
		e.crossSectionAndFlux,
		e.targetAtomCount,
		e.reactionRateAndYield,
		e.activity,
		e.impurities,
		e.regulatory,
		e.activityViability,
		e.specificActivityCheck,
		e.reactionRateCheck,
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return verdict.Result{}, err
		}
		if err := stage(ctx, p); err != nil {
			return verdict.Result{}, err
		}
		if p.terminal {
			break
		}
	}

	if !p.terminal {
		if err := e.uncertainty(ctx, p); err != nil {
			return verdict.Result{}, err
		}
	}
	return p.finish(), nil
}

// finish applies the final classification: Not recommended wins, any reason
// downgrades, otherwise Feasible.
func (p *pipeline) finish() verdict.Result {
	switch {
	case p.terminal:
		p.res.Classification = verdict.NotRecommended
		p.res.Feasible = false
	case len(p.res.Reasons) > 0:
		p.res.Classification = verdict.FeasibleWithConstraints
		p.res.Feasible = true
	default:
		p.res.Classification = verdict.Feasible
		p.res.Feasible = true
	}
	p.res.EvaluatedAt = core.Now()
	return p.res
}

// Stage 1.
func (e *Evaluator) thresholdGate(_ context.Context, p *pipeline) error {
	if !p.d.HasThreshold() {
		return nil
	}
	if p.c.NeutronEnergyMeV < p.d.ThresholdMeV {
		p.reject("neutron energy %.2f MeV is below the %.2f MeV reaction threshold (deficit %.2f MeV)",
			p.c.NeutronEnergyMeV, p.d.ThresholdMeV, p.d.ThresholdMeV-p.c.NeutronEnergyMeV)
	}
	return nil
}

// Stage 2.
func (e *Evaluator) separabilityGate(_ context.Context, p *pipeline) error {
	if !p.d.ChemicallySeparable && !p.d.CarrierAddedAcceptable {
		p.reject("%s is not chemically separable from %s and carrier-added product is not acceptable",
			p.d.Product, p.d.Target)
	}
	return nil
}

// producedIsotope is what the irradiation makes: the product, or the
// generator parent.
func producedIsotope(d route.Descriptor) string {
	if d.Generator != nil {
		return d.Generator.Parent
	}
	return d.Product
}

// pathwayKey is the nuclear-data key of the irradiation step.
func pathwayKey(d route.Descriptor) string {
	kind := d.Reaction
	if kind == route.ReactionGenerator {
		kind = route.ReactionCapture
	}
	return route.ProductionPath{Parent: d.Target, Reaction: kind}.Key(producedIsotope(d))
}

// fluxFor selects the flux driving a reaction. The bool reports that the
// fast flux was defaulted.
func fluxFor(kind route.ReactionKind, c route.Conditions) (float64, bool) {
	if !kind.IsFastNeutron() {
		return c.Flux, false
	}
	if c.FastFlux > 0 {
		return c.FastFlux, false
	}
	return FastFluxFraction * c.Flux, true
}

// Stage 3.
func (e *Evaluator) crossSectionAndFlux(_ context.Context, p *pipeline) error {
	sigma := p.d.CrossSectionBarns
	if sigma <= 0 {
		if pw, ok := e.data.LookupPathway(pathwayKey(p.d)); ok && pw.CrossSectionBarns > 0 {
			sigma = pw.CrossSectionBarns
			p.warn(core.NewWarning(core.WarnMissingCrossSection, core.SeverityInfo, core.CategoryData,
				"route has no cross-section; using tabulated %.4g b for %s", sigma, pathwayKey(p.d)))
		} else {
			sigma = PlaceholderCrossSection
			p.warn(core.NewWarning(core.WarnMissingCrossSection, core.SeverityModerate, core.CategoryData,
				"route has no cross-section; using a conservative %.0f b placeholder", PlaceholderCrossSection))
		}
	}

	flux, defaulted := fluxFor(p.d.Reaction, p.c)
	if defaulted {
		p.warn(core.NewWarning(core.WarnFastFluxDefault, core.SeverityInfo, core.CategoryPhysics,
			"no fast flux given; assuming %.0f%% of the thermal flux (%.3g n/cm²/s)", FastFluxFraction*100, flux))
	}

	if p.d.Reaction.IsThresholdReaction() && p.d.HasThreshold() {
		mode := kinetics.ActivationStep
		if p.c.ThresholdModel == route.ThresholdEnergyScaled {
			mode = kinetics.ActivationScaled
		}
		scaled, err := kinetics.ThresholdActivation(p.c.NeutronEnergyMeV, p.d.ThresholdMeV, sigma, mode,
			p.d.Reaction.ScalingExponent())
		if err != nil {
			return err
		}
		sigma = scaled
	}

	p.res.Physics.EffectiveCrossSection = ptr(sigma)
	p.res.Physics.FluxUsed = ptr(flux)
	if sigma <= 0 {
		p.reject("effective cross-section is zero at %.2f MeV (threshold %.2f MeV)",
			p.c.NeutronEnergyMeV, p.d.ThresholdMeV)
		return nil
	}

	p.yield.sigmaCm2 = kinetics.BarnsToCm2(sigma)
	p.yield.flux = flux
	return nil
}

// Stage 4.
func (e *Evaluator) targetAtomCount(_ context.Context, p *pipeline) error {
	element, _ := route.ElementSymbol(p.d.Target)
	mass, ok := e.data.AtomicMass(element)
	if !ok || mass <= 0 {
		mass = DefaultAtomicMass
		p.warn(core.NewWarning(core.WarnUnknownAtomicMass, core.SeverityModerate, core.CategoryData,
			"atomic mass of %q unknown; assuming %.0f g/mol", element, DefaultAtomicMass))
	}
	p.atomicMass = mass

	enrichment := p.c.Enrichment
	if enrichment == 0 {
		enrichment = e.naturalAbundance(p, p.d.Target)
		p.warn(core.NewWarning(core.WarnNaturalEnrichment, core.SeverityInfo, core.CategoryData,
			"no enrichment given; using natural abundance %.4g of %s", enrichment, p.d.Target))
	}

	atoms, err := kinetics.TargetAtoms(p.c.TargetMassGrams, enrichment, mass)
	if err != nil {
		return err
	}
	p.elementAtoms, err = kinetics.TargetAtoms(p.c.TargetMassGrams, 1, mass)
	if err != nil {
		return err
	}
	p.targetAtoms = atoms
	p.res.Physics.TargetAtoms = ptr(atoms)
	return nil
}

// naturalAbundance looks up the natural abundance of an isotope, warning
// and using the trace default when it is not tabulated.
func (e *Evaluator) naturalAbundance(p *pipeline, isotope string) float64 {
	element, _ := route.ElementSymbol(isotope)
	a, okA := route.MassNumber(isotope)
	if okA {
		if ab, ok := e.data.Abundance(element, a); ok {
			return ab
		}
	}
	p.warn(core.NewWarning(core.WarnUnknownAbundance, core.SeverityModerate, core.CategoryData,
		"natural abundance of %s unknown; assuming %.1f%%", isotope, traceImpurityFraction*100))
	return traceImpurityFraction
}

// Stage 5.
func (e *Evaluator) reactionRateAndYield(_ context.Context, p *pipeline) error {
	lambda, err := kinetics.DecayConstant(p.d.HalfLifeDays)
	if err != nil {
		return err
	}
	p.lambda = lambda
	p.res.Physics.DecayConstant = ptr(lambda)

	shield, err := e.selfShielding(p)
	if err != nil {
		return err
	}
	p.shielding = shield
	p.res.Physics.SelfShielding = ptr(shield)

	y := &p.yield
	y.targetAtoms = p.targetAtoms
	y.shielding = shield
	y.derating = p.c.DeratingFactor()
	y.lambdaProduct = lambda
	y.lambdaProduced = lambda
	y.irradiation = p.c.IrradiationSeconds
	y.thicknessCm = p.c.TargetThicknessCm
	if p.c.TargetDensity > 0 {
		y.volumeCm3 = p.c.TargetMassGrams / p.c.TargetDensity
	}
	// the burn-up cross-section belongs to the product, which a generator
	// route only makes after EOB
	if p.d.HasBurnup() && p.d.Generator == nil {
		y.burnupSigmaCm2 = kinetics.BarnsToCm2(p.d.BurnupCrossSectionBarns)
	}

	if g := p.d.Generator; g != nil {
		y.lambdaProduced, err = kinetics.DecayConstant(g.ParentHalfLifeDays)
		if err != nil {
			return err
		}
		secs := p.c.IngrowthSeconds
		if secs <= 0 {
			secs = DefaultIngrowthSeconds
			p.warn(core.NewWarning(core.WarnIngrowthDefault, core.SeverityInfo, core.CategoryYield,
				"no ingrowth time given for generator parent %s; assuming %.0f h", g.Parent, secs/core.SecondsPerHour))
		}
		y.generator = &ingrowth{branching: g.BranchingRatio, seconds: secs}
	}

	out, err := y.compute()
	if err != nil {
		return err
	}
	p.warn(out.warnings...)

	p.res.Physics.ReactionRate = ptr(out.rate)
	p.res.Physics.SaturationFactor = ptr(out.saturation)
	p.res.Physics.AtomsAtEOB = ptr(out.productAtoms)
	if out.burnupRate > 0 {
		p.res.Physics.BurnupRate = ptr(out.burnupRate)
	}
	p.activityEOB = out.activity
	return nil
}

// selfShielding derives the factor from target geometry when thickness and
// density are given, else uses the supplied factor, else 1.
func (e *Evaluator) selfShielding(p *pipeline) (float64, error) {
	if p.c.TargetThicknessCm > 0 && p.c.TargetDensity > 0 {
		enrichment := 0.0
		if p.elementAtoms > 0 {
			enrichment = p.targetAtoms / p.elementAtoms
		}
		density := p.c.TargetDensity * kinetics.Avogadro / p.atomicMass * enrichment
		macro, err := kinetics.MacroscopicCrossSection(density, p.yield.sigmaCm2)
		if err != nil {
			return 0, err
		}
		return kinetics.SelfShieldingFactor(macro, p.c.TargetThicknessCm)
	}
	if p.c.SelfShielding > 0 {
		return p.c.SelfShielding, nil
	}
	return 1, nil
}

// productAtomicMass approximates the product molar mass by its mass number.
func (e *Evaluator) productAtomicMass(product string) float64 {
	if a, ok := route.MassNumber(product); ok {
		return float64(a)
	}
	element, _ := route.ElementSymbol(product)
	if m, ok := e.data.AtomicMass(element); ok {
		return m
	}
	return DefaultAtomicMass
}

// Stage 6.
func (e *Evaluator) activity(_ context.Context, p *pipeline) error {
	p.res.Physics.ActivityEOB = ptr(p.activityEOB)

	delivered, err := kinetics.DecayedActivity(p.activityEOB, p.lambda, p.c.TotalDelaySeconds())
	if err != nil {
		return err
	}
	p.delivered = delivered
	p.res.Physics.DeliveredActivity = ptr(delivered)

	molar := e.productAtomicMass(p.d.Product)
	productGrams := kinetics.AtomsToGrams(*p.res.Physics.AtomsAtEOB, molar)
	carrier := 0.0
	if p.d.CarrierAddedAcceptable {
		carrier = p.c.CarrierMassGrams
		if carrier <= 0 {
			carrier = p.c.TargetMassGrams
		}
	}
	if productGrams+carrier > 0 {
		sa, err := kinetics.SpecificActivity(p.activityEOB, productGrams, carrier)
		if err != nil {
			return err
		}
		p.res.Physics.SpecificActivity = ptr(sa)
		p.specificTBqG = ptr(sa / kinetics.BqPerTBq)
	}

	maxSA, err := kinetics.MaxSpecificActivity(p.lambda, molar)
	if err != nil {
		return err
	}
	p.res.Physics.MaxSpecificActivity = ptr(maxSA)
	return nil
}

// Stage 8.
func (e *Evaluator) regulatory(_ context.Context, p *pipeline) error {
	switch p.d.Regulatory {
	case route.RegulatoryExploratory:
		p.constrain("regulatory flag is exploratory: route needs regulatory review before production")
	case route.RegulatoryConstrained:
		p.constrain("regulatory flag is constrained: production is subject to additional regulatory limits")
	}
	return nil
}

// Stage 9.
func (e *Evaluator) activityViability(_ context.Context, p *pipeline) error {
	tier := TierFor(p.c.Application)
	gbq := p.delivered / kinetics.BqPerGBq
	label := "delivered"
	if p.c.TotalDelaySeconds() == 0 {
		label = "EOB"
	}
	switch tier.classify(gbq) {
	case notViable:
		p.reject("%s activity %.3g GBq is below the %g GBq minimum for %s use", label, gbq, tier.NotViable, p.c.Application)
	case insufficient:
		p.constrain("%s activity %.3g GBq is insufficient for %s use (marginal from %g GBq)", label, gbq, p.c.Application, tier.Marginal)
	case marginal:
		p.constrain("%s activity %.3g GBq is marginal for %s use (viable from %g GBq)", label, gbq, p.c.Application, tier.Viable)
	}
	return nil
}

// Stage 10.
func (e *Evaluator) specificActivityCheck(_ context.Context, p *pipeline) error {
	if !p.d.RequiresNoCarrier() || p.specificTBqG == nil {
		return nil
	}
	if *p.specificTBqG < NCASpecificActivityTBqPerG {
		p.constrain("specific activity %.3g TBq/g is below the %.0f TBq/g n.c.a. requirement",
			*p.specificTBqG, NCASpecificActivityTBqPerG)
	}
	return nil
}

// Stage 11.
func (e *Evaluator) reactionRateCheck(_ context.Context, p *pipeline) error {
	rate, ok := verdict.Value(p.res.Physics.ReactionRate)
	if ok && rate < MinReactionRate {
		p.warn(core.NewWarning(core.WarnLowReactionRate, core.SeverityModerate, core.CategoryYield,
			"reaction rate %.3g /s is below %.0e /s", rate, MinReactionRate))
	}
	return nil
}

// uncertainty attaches the RSS combination and, when enabled, a Monte Carlo
// band on EOB activity.
func (e *Evaluator) uncertainty(ctx context.Context, p *pipeline) error {
	u := p.c.Uncertainty
	if u == nil {
		return nil
	}
	sigmas := kinetics.RelativeSigmas{CrossSection: u.CrossSection, Flux: u.Flux, Mass: u.Mass, HalfLife: u.HalfLife}
	rss, err := kinetics.UncertaintyRSS(sigmas.Slice())
	if err != nil {
		return err
	}
	band := &verdict.Uncertainty{
		MeanBq:      p.activityEOB,
		RelativeRSS: rss,
		StdDevBq:    rss * p.activityEOB,
	}

	if e.opts.MonteCarloSamples > 1 && rss > 0 {
		summary, err := kinetics.MonteCarlo(e.opts.MonteCarloSamples, e.opts.MonteCarloSeed, sigmas,
			func(pert kinetics.Perturbation) (float64, error) {
				if err := ctx.Err(); err != nil {
					return 0, err
				}
				out, err := p.yield.perturbed(pert).compute()
				return out.activity, err
			})
		if err != nil {
			return err
		}
		band.Samples = summary.Samples
		band.MeanBq = summary.Mean
		band.StdDevBq = summary.StdDev
		band.P5Bq = summary.P5
		band.P50Bq = summary.P50
		band.P95Bq = summary.P95
	}
	p.res.Uncertainty = band
	return nil
}

func ptr(v float64) *float64 { return &v }

// noData is the null nuclear-data source.
type noData struct{}

func (noData) AtomicMass(string) (float64, bool)           { return 0, false }
func (noData) Abundance(string, int) (float64, bool)       { return 0, false }
func (noData) HalfLife(string) (ports.HalfLife, bool)      { return ports.HalfLife{}, false }
func (noData) ImpurityCrossSection(string) (float64, bool) { return 0, false }
func (noData) LookupPathway(string) (ports.Pathway, bool)  { return ports.Pathway{}, false }
