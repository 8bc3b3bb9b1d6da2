package scorer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isoplan/adapters/nucleardata"
	"isoplan/adapters/registry"
	"isoplan/domain/core"
	"isoplan/domain/priority"
	"isoplan/domain/route"
	"isoplan/domain/verdict"
	"isoplan/internal/evaluator"
)

func f(v float64) *float64 { return &v }

func baseRoute() route.Descriptor {
	return route.Descriptor{
		ID: "r", Target: "Lu-176", Product: "Lu-177", Reaction: route.ReactionCapture,
		CrossSectionBarns: 2090, HalfLifeDays: 6.647,
		ChemicallySeparable: true, CarrierAddedAcceptable: true,
		Regulatory: route.RegulatoryStandard,
	}
}

func TestRuleFactory(t *testing.T) {
	for _, name := range priority.CategoryNames {
		r := GetRuleByName(name)
		if r == nil {
			t.Errorf("expected a rule for %s", name)
			continue
		}
		if r.Name() != name {
			t.Errorf("rule %s reports name %s", name, r.Name())
		}
	}
	if GetRuleByName("bogus") != nil {
		t.Error("expected nil for unknown rule")
	}
}

func TestPhysicsRule(t *testing.T) {
	noXS := baseRoute()
	noXS.CrossSectionBarns = 0

	tests := []struct {
		name  string
		route route.Descriptor
		res   verdict.Result
		want  float64
	}{
		{"feasible", baseRoute(), verdict.Result{Classification: verdict.Feasible}, 5},
		{"constrained", baseRoute(), verdict.Result{Classification: verdict.FeasibleWithConstraints}, 3},
		{"not recommended", baseRoute(), verdict.Result{Classification: verdict.NotRecommended}, 0.5},
		{"threshold failure", baseRoute(), verdict.Result{
			Classification: verdict.NotRecommended,
			Reasons:        []string{"neutron energy 3.00 MeV is below the 5.00 MeV reaction threshold"},
		}, 0},
		{"missing cross-section", noXS, verdict.Result{Classification: verdict.Feasible}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PhysicsRule{}.Score(tt.route, tt.res), 1e-12)
		})
	}
}

func TestYieldRule(t *testing.T) {
	tests := []struct {
		name     string
		rate     *float64
		activity *float64
		want     float64
	}{
		{"best tiers", f(1e13), f(200e9), 4.5},
		{"worst tiers", f(1e5), f(0.01e9), 0.5},
		{"middle", f(1e9), f(5e9), 2.5},
		{"not computed", nil, nil, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := verdict.Result{Physics: verdict.Physics{ReactionRate: tt.rate, ActivityEOB: tt.activity}}
			assert.InDelta(t, tt.want, YieldRule{}.Score(baseRoute(), res), 1e-12)
		})
	}
}

func TestSpecificActivityLadders(t *testing.T) {
	nca := baseRoute()
	nca.CarrierAddedAcceptable = false

	tests := []struct {
		name  string
		route route.Descriptor
		tbq   *float64
		want  float64
	}{
		{"nca top", nca, f(20), 5},
		{"nca 1", nca, f(1), 4},
		{"nca 0.1", nca, f(0.1), 2.5},
		{"nca floor", nca, f(0.05), 1},
		{"ca top", baseRoute(), f(1), 5},
		{"ca 0.5", baseRoute(), f(0.5), 4},
		{"ca 0.01", baseRoute(), f(0.01), 3},
		{"ca floor", baseRoute(), f(0.001), 2},
		{"unknown", baseRoute(), nil, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sa *float64
			if tt.tbq != nil {
				sa = f(*tt.tbq * 1e12)
			}
			res := verdict.Result{Physics: verdict.Physics{SpecificActivity: sa}}
			assert.InDelta(t, tt.want, SpecificActivityRule{}.Score(tt.route, res), 1e-12)
		})
	}
}

func TestImpurityRule(t *testing.T) {
	high := core.Warning{Code: core.WarnSameElementImpurity, Severity: core.SeverityHigh, Category: core.CategoryImpurity}
	mod := core.Warning{Code: core.WarnLongLivedImpurity, Severity: core.SeverityModerate, Category: core.CategoryImpurity}
	other := core.Warning{Code: core.WarnLowReactionRate, Severity: core.SeverityHigh, Category: core.CategoryYield}

	assert.InDelta(t, 5, ImpurityRule{}.Score(baseRoute(), verdict.Result{ImpurityRisk: verdict.RiskLow}), 1e-12)
	assert.InDelta(t, 2, ImpurityRule{}.Score(baseRoute(), verdict.Result{ImpurityRisk: verdict.RiskUnknown}), 1e-12)
	assert.InDelta(t, 3-1-0.3, ImpurityRule{}.Score(baseRoute(), verdict.Result{
		ImpurityRisk: verdict.RiskMedium,
		Warnings:     []core.Warning{high, mod, other},
	}), 1e-12)

	res := verdict.Result{
		ImpurityRisk: verdict.RiskHigh,
		Warnings:     []core.Warning{high},
		Reasons:      []string{"long-lived same-element impurity Lu-177m stays with Lu-177"},
	}
	assert.InDelta(t, 1-1-1.5, ImpurityRule{}.Score(baseRoute(), res), 1e-12)
	assert.Equal(t, 0.0, Score(baseRoute(), res).Impurity, "category scores are clamped at zero")
}

func TestLogisticsRule(t *testing.T) {
	co60 := baseRoute()
	co60.HalfLifeDays = 1925.28

	inseparable := baseRoute()
	inseparable.ChemicallySeparable = false

	nca := baseRoute()
	nca.CarrierAddedAcceptable = false

	tests := []struct {
		name  string
		route route.Descriptor
		app   route.Application
		want  float64
	}{
		{"industrial long-lived", co60, route.ApplicationIndustrial, 4},
		{"industrial short-lived", baseRoute(), route.ApplicationIndustrial, 2},
		{"medical in window", baseRoute(), route.ApplicationMedical, 4},
		{"medical long-lived", co60, route.ApplicationMedical, 2},
		{"research", baseRoute(), route.ApplicationResearch, 3},
		{"inseparable", inseparable, route.ApplicationResearch, 1.5},
		{"nca medical", nca, route.ApplicationMedical, 3.7},
		{"nca industrial", nca, route.ApplicationIndustrial, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := verdict.Result{Application: string(tt.app)}
			assert.InDelta(t, tt.want, LogisticsRule{}.Score(tt.route, res), 1e-12)
		})
	}
}

func TestRegulatoryRule(t *testing.T) {
	alpha := baseRoute()
	alpha.Regulatory = route.RegulatoryConstrained
	alpha.Category = route.CategoryAlpha

	exploratory := baseRoute()
	exploratory.Regulatory = route.RegulatoryExploratory
	exploratory.DataQuality = route.DataQualityPlanningConservative

	assert.InDelta(t, 5, RegulatoryRule{}.Score(baseRoute(), verdict.Result{}), 1e-12)
	assert.InDelta(t, 2, RegulatoryRule{}.Score(alpha, verdict.Result{}), 1e-12)
	assert.InDelta(t, 1.3, RegulatoryRule{}.Score(exploratory, verdict.Result{}), 1e-12)
}

func TestScoreEvaluatedRoute(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)
	d, err := reg.Get(context.Background(), "lu177-direct")
	require.NoError(t, err)

	res, err := evaluator.New(nucleardata.Builtin(), evaluator.Options{}).Evaluate(context.Background(), d, route.Conditions{
		Flux:               1e14,
		TargetMassGrams:    1e-3,
		Enrichment:         0.75,
		IrradiationSeconds: 5 * core.SecondsPerDay,
		Application:        route.ApplicationMedical,
	})
	require.NoError(t, err)
	before := res.Physics

	s := Score(d, res)
	assert.Equal(t, d.ID, s.RouteID)
	assert.InDelta(t, 3, s.Physics, 1e-12)
	assert.InDelta(t, 3.5, s.Yield, 1e-12)
	assert.InDelta(t, 5, s.SpecificActivity, 1e-12)
	assert.InDelta(t, 0, s.Impurity, 1e-12)
	assert.InDelta(t, 4, s.Logistics, 1e-12)
	assert.InDelta(t, 5, s.Regulatory, 1e-12)
	assert.InDelta(t, 20.5/6, s.Total, 1e-12)
	assert.Equal(t, priority.Conditional, s.Class)

	// scoring is idempotent and leaves the evaluation untouched
	assert.Equal(t, s, Score(d, res))
	assert.Equal(t, before, res.Physics)
	for _, v := range s.Categories() {
		assert.GreaterOrEqual(t, v, priority.MinCategoryScore)
		assert.LessOrEqual(t, v, priority.MaxCategoryScore)
	}
}
