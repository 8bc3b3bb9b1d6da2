package evaluator

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isoplan/adapters/nucleardata"
	"isoplan/adapters/registry"
	"isoplan/domain/core"
	"isoplan/domain/route"
	"isoplan/domain/verdict"
	"isoplan/internal/kinetics"
)

func referenceRoute(t *testing.T, id core.RouteID) route.Descriptor {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	d, err := reg.Get(context.Background(), id)
	require.NoError(t, err)
	return d
}

func hasWarning(res verdict.Result, code string) bool {
	for _, w := range res.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func hasTrap(res verdict.Result, tt verdict.TrapType) bool {
	for _, tr := range res.Traps {
		if tr.Type == tt {
			return true
		}
	}
	return false
}

func mustValue(t *testing.T, p *float64) float64 {
	t.Helper()
	v, ok := verdict.Value(p)
	require.True(t, ok, "expected a computed value")
	return v
}

func lu177Conditions() route.Conditions {
	return route.Conditions{
		Flux:               1e14,
		TargetMassGrams:    1e-3,
		Enrichment:         0.75,
		IrradiationSeconds: 5 * core.SecondsPerDay,
		Application:        route.ApplicationMedical,
	}
}

func TestLu177DirectRegression(t *testing.T) {
	ev := New(nucleardata.Builtin(), Options{})
	res, err := ev.Evaluate(context.Background(), referenceRoute(t, "lu177-direct"), lu177Conditions())
	require.NoError(t, err)

	assert.InEpsilon(t, 5.395e11, mustValue(t, res.Physics.ReactionRate), 1e-3)
	assert.InEpsilon(t, 1.2069e-6, mustValue(t, res.Physics.DecayConstant), 1e-3)
	assert.InEpsilon(t, 0.4063, mustValue(t, res.Physics.SaturationFactor), 1e-3)
	assert.InEpsilon(t, 219e9, mustValue(t, res.Physics.ActivityEOB), 5e-3)
	assert.Equal(t, mustValue(t, res.Physics.ActivityEOB), mustValue(t, res.Physics.DeliveredActivity))

	assert.True(t, res.Feasible)
	assert.Equal(t, verdict.FeasibleWithConstraints, res.Classification)
	assert.Equal(t, verdict.RiskHigh, res.ImpurityRisk)
	assert.True(t, res.HasReasonContaining("impurity"))
	assert.True(t, hasTrap(res, verdict.TrapLongLived))
	assert.True(t, hasTrap(res, verdict.TrapSameElement))
	assert.True(t, hasTrap(res, verdict.TrapFailCondition))
	assert.True(t, hasWarning(res, core.WarnLongLivedImpurity))

	require.Len(t, res.Impurities, 1)
	assert.Equal(t, "Lu-177m", res.Impurities[0].Isotope)
	assert.InEpsilon(t, 7e-5, res.Impurities[0].FractionOfProd, 0.05)

	assert.NotEmpty(t, res.EvaluationID)
	assert.Equal(t, core.RouteID("lu177-direct"), res.RouteID)
}

func TestThresholdGate(t *testing.T) {
	d := route.Descriptor{
		ID: "thr", Target: "Ni-58", Product: "Co-58", Reaction: route.ReactionNP,
		ThresholdMeV: 5, CrossSectionBarns: 0.11, HalfLifeDays: 70.86,
		ChemicallySeparable: true, Regulatory: route.RegulatoryStandard,
	}
	c := lu177Conditions()
	c.NeutronEnergyMeV = 3

	res, err := New(nucleardata.Builtin(), Options{}).Evaluate(context.Background(), d, c)
	require.NoError(t, err)
	assert.False(t, res.Feasible)
	assert.Equal(t, verdict.NotRecommended, res.Classification)
	assert.True(t, res.HasReasonContaining("threshold"))
	assert.Nil(t, res.Physics.ReactionRate)
	assert.Nil(t, res.Physics.ActivityEOB)
	assert.Equal(t, verdict.RiskUnknown, res.ImpurityRisk)

	c.NeutronEnergyMeV = 14.1
	res, err = New(nucleardata.Builtin(), Options{}).Evaluate(context.Background(), d, c)
	require.NoError(t, err)
	assert.False(t, res.HasReasonContaining("threshold"))
	assert.NotNil(t, res.Physics.ReactionRate)
}

func TestScaledThresholdModelLowersCrossSection(t *testing.T) {
	d := referenceRoute(t, "mo99-n2n")
	c := lu177Conditions()
	c.Enrichment = 0.95
	c.NeutronEnergyMeV = 11

	step, err := New(nucleardata.Builtin(), Options{}).Evaluate(context.Background(), d, c)
	require.NoError(t, err)
	c.ThresholdModel = route.ThresholdEnergyScaled
	scaled, err := New(nucleardata.Builtin(), Options{}).Evaluate(context.Background(), d, c)
	require.NoError(t, err)

	assert.InDelta(t, 1.4, mustValue(t, step.Physics.EffectiveCrossSection), 1e-12)
	assert.Less(t, mustValue(t, scaled.Physics.EffectiveCrossSection), 1.4)
	assert.True(t, hasWarning(step, core.WarnFastFluxDefault))
	assert.InDelta(t, 1e13, mustValue(t, step.Physics.FluxUsed), 1)
}

func TestSeparabilityGate(t *testing.T) {
	d := route.Descriptor{
		ID: "sep", Target: "Co-59", Product: "Co-60", Reaction: route.ReactionCapture,
		CrossSectionBarns: 37.2, HalfLifeDays: 1925.28,
		ChemicallySeparable: false, CarrierAddedAcceptable: false, Regulatory: route.RegulatoryStandard,
	}
	res, err := New(nucleardata.Builtin(), Options{}).Evaluate(context.Background(), d, lu177Conditions())
	require.NoError(t, err)
	assert.Equal(t, verdict.NotRecommended, res.Classification)
	assert.True(t, res.HasReasonContaining("separable"))
	assert.Nil(t, res.Physics.ReactionRate)
}

func TestSameElementImpurityWithoutCarrierIsRejected(t *testing.T) {
	c := route.Conditions{
		Flux:               1e14,
		FastFlux:           1e14,
		NeutronEnergyMeV:   14.1,
		TargetMassGrams:    10,
		Enrichment:         0.9,
		IrradiationSeconds: 7 * core.SecondsPerDay,
		Application:        route.ApplicationResearch,
	}
	res, err := New(nucleardata.Builtin(), Options{}).Evaluate(context.Background(), referenceRoute(t, "cu67-np"), c)
	require.NoError(t, err)

	assert.Equal(t, verdict.NotRecommended, res.Classification)
	assert.True(t, res.HasReasonContaining("impurity"))
	assert.True(t, hasTrap(res, verdict.TrapSameElement))
	// Cu-64 is shorter-lived than Cu-67
	assert.False(t, hasTrap(res, verdict.TrapLongLived))
	assert.False(t, hasTrap(res, verdict.TrapFailCondition))
	assert.True(t, hasWarning(res, core.WarnSameElementImpurity))
	assert.NotNil(t, res.Physics.ActivityEOB)
}

func TestGeneratorRouteIngrowth(t *testing.T) {
	d := referenceRoute(t, "lu177-indirect")
	c := route.Conditions{
		Flux:               1e14,
		TargetMassGrams:    0.1,
		Enrichment:         0.97,
		IrradiationSeconds: 2 * core.SecondsPerDay,
		Application:        route.ApplicationResearch,
	}
	ev := New(nucleardata.Builtin(), Options{})

	defaulted, err := ev.Evaluate(context.Background(), d, c)
	require.NoError(t, err)
	assert.True(t, hasWarning(defaulted, core.WarnIngrowthDefault))

	c.IngrowthSeconds = DefaultIngrowthSeconds
	explicit, err := ev.Evaluate(context.Background(), d, c)
	require.NoError(t, err)
	assert.False(t, hasWarning(explicit, core.WarnIngrowthDefault))
	assert.InEpsilon(t, mustValue(t, defaulted.Physics.ActivityEOB), mustValue(t, explicit.Physics.ActivityEOB), 1e-12)

	// Yb-177 saturates during irradiation, then feeds Lu-177 for one day
	rate := mustValue(t, explicit.Physics.ReactionRate)
	lambdaYb, _ := kinetics.DecayConstant(0.0792)
	lambdaLu, _ := kinetics.DecayConstant(6.647)
	parentAtoms := rate * -math.Expm1(-lambdaYb*c.IrradiationSeconds) / lambdaYb
	tg := c.IngrowthSeconds
	daughter := parentAtoms * lambdaYb / (lambdaLu - lambdaYb) * (math.Exp(-lambdaYb*tg) - math.Exp(-lambdaLu*tg))
	assert.InEpsilon(t, daughter, mustValue(t, explicit.Physics.AtomsAtEOB), 1e-6)
	assert.InEpsilon(t, lambdaLu*daughter, mustValue(t, explicit.Physics.ActivityEOB), 1e-6)
}

func TestDelayReducesDeliveredActivity(t *testing.T) {
	c := lu177Conditions()
	c.ChemistryDelaySeconds = 6.647 * core.SecondsPerDay
	res, err := New(nucleardata.Builtin(), Options{}).Evaluate(context.Background(), referenceRoute(t, "lu177-direct"), c)
	require.NoError(t, err)
	assert.InEpsilon(t, mustValue(t, res.Physics.ActivityEOB)/2, mustValue(t, res.Physics.DeliveredActivity), 1e-9)
}

func TestViabilityTiers(t *testing.T) {
	medical := TierFor(route.ApplicationMedical)
	tests := []struct {
		gbq  float64
		want viability
	}{
		{10, viable},
		{9.99, marginal},
		{0.5, insufficient},
		{0.05, notViable},
	}
	for _, tt := range tests {
		if got := medical.classify(tt.gbq); got != tt.want {
			t.Errorf("medical.classify(%g) = %v, want %v", tt.gbq, got, tt.want)
		}
	}

	if got := TierFor(route.ApplicationIndustrial).Viable; got != 100 {
		t.Errorf("industrial Viable = %g, want 100", got)
	}
	if got := TierFor(route.ApplicationResearch).NotViable; got != 0.001 {
		t.Errorf("research NotViable = %g, want 0.001", got)
	}
	if got := TierFor("unknown"); got != medical {
		t.Errorf("TierFor(unknown) = %+v, want medical %+v", got, medical)
	}
}

func TestActivityViabilityOutcomes(t *testing.T) {
	d := referenceRoute(t, "lu177-direct")
	ev := New(nucleardata.Builtin(), Options{})

	c := lu177Conditions()
	c.TargetMassGrams = 1e-5 // about 2.2 GBq: marginal for medical use
	res, err := ev.Evaluate(context.Background(), d, c)
	require.NoError(t, err)
	assert.Equal(t, verdict.FeasibleWithConstraints, res.Classification)
	assert.True(t, res.HasReasonContaining("marginal"))

	c.Flux = 0
	res, err = ev.Evaluate(context.Background(), d, c)
	require.NoError(t, err)
	assert.Equal(t, verdict.NotRecommended, res.Classification)
	assert.True(t, hasWarning(res, core.WarnLowReactionRate) || res.HasReasonContaining("minimum"))
}

func TestRegulatoryFlagDowngrades(t *testing.T) {
	d := referenceRoute(t, "co60-capture")
	d.Impurities = nil
	d.Regulatory = route.RegulatoryExploratory
	c := route.Conditions{
		Flux: 1e14, TargetMassGrams: 10, Enrichment: 1,
		IrradiationSeconds: 30 * core.SecondsPerDay, Application: route.ApplicationIndustrial,
	}
	res, err := New(nucleardata.Builtin(), Options{}).Evaluate(context.Background(), d, c)
	require.NoError(t, err)
	assert.Equal(t, verdict.FeasibleWithConstraints, res.Classification)
	assert.True(t, res.HasReasonContaining("regulatory"))
	assert.Equal(t, verdict.RiskLow, res.ImpurityRisk)
}

func TestGeometricSelfShielding(t *testing.T) {
	ev := New(nucleardata.Builtin(), Options{})
	d := referenceRoute(t, "lu177-direct")
	bare, err := ev.Evaluate(context.Background(), d, lu177Conditions())
	require.NoError(t, err)
	assert.Equal(t, 1.0, mustValue(t, bare.Physics.SelfShielding))

	c := lu177Conditions()
	c.TargetDensity = 9.84
	c.TargetThicknessCm = 0.01
	res, err := ev.Evaluate(context.Background(), d, c)
	require.NoError(t, err)
	f := mustValue(t, res.Physics.SelfShielding)
	assert.Less(t, f, 1.0)
	assert.Greater(t, f, 0.0)
	assert.InEpsilon(t, mustValue(t, bare.Physics.ReactionRate)*f, mustValue(t, res.Physics.ReactionRate), 1e-9)
}

func TestMissingDataWarnings(t *testing.T) {
	d := route.Descriptor{
		ID: "nodata", Target: "Xx-10", Product: "Xx-11", Reaction: route.ReactionCapture,
		HalfLifeDays: 1, ChemicallySeparable: true, CarrierAddedAcceptable: true,
		Impurities: []route.ImpurityRisk{{Isotope: "whatever"}},
		Regulatory: route.RegulatoryStandard,
	}
	c := lu177Conditions()
	c.Enrichment = 0

	res, err := New(nil, Options{}).Evaluate(context.Background(), d, c)
	require.NoError(t, err)
	assert.True(t, hasWarning(res, core.WarnMissingCrossSection))
	assert.True(t, hasWarning(res, core.WarnUnknownAtomicMass))
	assert.True(t, hasWarning(res, core.WarnUnknownAbundance))
	assert.True(t, hasWarning(res, core.WarnUnparseableImpurity))
	assert.Equal(t, verdict.RiskUnknown, res.ImpurityRisk)
	assert.InDelta(t, PlaceholderCrossSection, mustValue(t, res.Physics.EffectiveCrossSection), 1e-12)
}

func TestMonteCarloIsDeterministic(t *testing.T) {
	c := lu177Conditions()
	c.Uncertainty = &route.Uncertainty{CrossSection: 0.05, Flux: 0.1, Mass: 0.01, HalfLife: 0.001}
	ev := New(nucleardata.Builtin(), Options{MonteCarloSamples: 500, MonteCarloSeed: 42})
	d := referenceRoute(t, "lu177-direct")

	a, err := ev.Evaluate(context.Background(), d, c)
	require.NoError(t, err)
	b, err := ev.Evaluate(context.Background(), d, c)
	require.NoError(t, err)

	require.NotNil(t, a.Uncertainty)
	assert.Equal(t, a.Uncertainty, b.Uncertainty)
	assert.Equal(t, 500, a.Uncertainty.Samples)
	assert.InDelta(t, math.Sqrt(0.05*0.05+0.1*0.1+0.01*0.01+0.001*0.001), a.Uncertainty.RelativeRSS, 1e-12)
	assert.Less(t, a.Uncertainty.P5Bq, a.Uncertainty.P50Bq)
	assert.Less(t, a.Uncertainty.P50Bq, a.Uncertainty.P95Bq)
	assert.InEpsilon(t, mustValue(t, a.Physics.ActivityEOB), a.Uncertainty.MeanBq, 0.05)
}

func TestMalformedInputIsAnError(t *testing.T) {
	ev := New(nucleardata.Builtin(), Options{})
	d := referenceRoute(t, "lu177-direct")

	c := lu177Conditions()
	c.Flux = -1
	_, err := ev.Evaluate(context.Background(), d, c)
	assert.True(t, core.IsInvalidInput(err))

	c = lu177Conditions()
	c.Enrichment = 1.5
	_, err = ev.Evaluate(context.Background(), d, c)
	assert.True(t, core.IsInvalidInput(err))

	bad := d
	bad.Reaction = "n,zz"
	_, err = ev.Evaluate(context.Background(), bad, lu177Conditions())
	assert.True(t, core.IsInvalidInput(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ev.Evaluate(ctx, d, lu177Conditions())
	assert.ErrorIs(t, err, context.Canceled)
}
