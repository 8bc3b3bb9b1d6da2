package app

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isoplan/adapters/nucleardata"
	"isoplan/adapters/registry"
	"isoplan/adapters/resultstore"
	"isoplan/domain/core"
	"isoplan/domain/priority"
	"isoplan/domain/route"
	"isoplan/domain/verdict"
	"isoplan/internal"
	"isoplan/internal/bateman"
	"isoplan/internal/evaluator"
)

func newService(t *testing.T, opts ServiceOptions) (*PlanningService, *resultstore.Memory) {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	store := resultstore.NewMemory(0)
	return NewPlanningService(reg, nucleardata.Builtin(), store, opts, internal.NewLogger(internal.LogLevelError)), store
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

func TestEvaluateStoresScoredResult(t *testing.T) {
	svc, store := newService(t, ServiceOptions{})
	ctx := context.Background()

	ev, err := svc.Evaluate(ctx, "lu177-direct", lu177Conditions())
	require.NoError(t, err)
	assert.Equal(t, verdict.FeasibleWithConstraints, ev.Result.Classification)
	assert.Equal(t, core.RouteID("lu177-direct"), ev.Score.RouteID)
	assert.Equal(t, priority.Conditional, ev.Score.Class)
	assert.Equal(t, 1, store.Len())

	got, err := svc.Evaluation(ctx, ev.Result.EvaluationID)
	require.NoError(t, err)
	assert.Equal(t, ev.Score, got.Score)

	_, err = svc.Evaluate(ctx, "no-such-route", lu177Conditions())
	assert.True(t, core.IsNotFoundError(err))

	_, err = svc.Evaluate(ctx, "lu177-direct", route.Conditions{Flux: -1, Application: route.ApplicationMedical})
	assert.True(t, core.IsCallerError(err))
	assert.Equal(t, 1, store.Len())
}

func TestRoutesAndFingerprint(t *testing.T) {
	svc, _ := newService(t, ServiceOptions{})
	ctx := context.Background()

	all, err := svc.Routes(ctx, "")
	require.NoError(t, err)
	lu, err := svc.Routes(ctx, "Lu-177")
	require.NoError(t, err)
	assert.Len(t, lu, 2)
	assert.Greater(t, len(all), len(lu))

	a, err := svc.RegistryFingerprint(ctx)
	require.NoError(t, err)
	b, err := svc.RegistryFingerprint(ctx)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a.String())
}

func TestActivityCurve(t *testing.T) {
	svc, _ := newService(t, ServiceOptions{})
	ctx := context.Background()
	c := lu177Conditions()

	curve, err := svc.ActivityCurve(ctx, "lu177-direct", c, 10*core.SecondsPerDay, 31)
	require.NoError(t, err)
	require.NotEmpty(t, curve)
	assert.Equal(t, 0.0, curve[0].ActivityBq)

	var peak float64
	for _, p := range curve {
		peak = math.Max(peak, p.ActivityBq)
	}
	assert.InEpsilon(t, 219e9, peak, 1e-2)
	assert.Less(t, curve[len(curve)-1].ActivityBq, peak)

	_, err = svc.ActivityCurve(ctx, "lu177-indirect", c, core.SecondsPerDay, 10)
	assert.True(t, core.IsInvalidInput(err))
}

func TestSolveChainParentDaughter(t *testing.T) {
	svc, _ := newService(t, ServiceOptions{Solver: bateman.Options{MaxSteps: 1_000_000}})
	req := ChainRequest{
		Isotopes: []ChainIsotope{
			{Name: "Mo-99"},
			{Name: "Tc-99m", Parents: []bateman.ParentLink{{Parent: "Mo-99", BranchingRatio: 0.876}}},
		},
		Initial: map[string]float64{"Mo-99": 1e15},
		Times:   []float64{0, core.SecondsPerDay},
	}

	res, err := svc.SolveChain(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Points, 2)
	assert.Equal(t, bateman.MethodRecursive, res.Points[1].Method)
	assert.Equal(t, 0.0, res.Points[0].Populations["Tc-99m"])

	lambda := math.Ln2 / (2.7475 * core.SecondsPerDay)
	assert.InEpsilon(t, 1e15*math.Exp(-lambda*core.SecondsPerDay), res.Points[1].Populations["Mo-99"], 1e-9)
	assert.InEpsilon(t, lambda*res.Points[1].Populations["Mo-99"], res.Points[1].Activities["Mo-99"], 1e-9)
	assert.Greater(t, res.Points[1].Populations["Tc-99m"], 0.0)
}

func TestSolveChainInputErrors(t *testing.T) {
	svc, _ := newService(t, ServiceOptions{})
	ctx := context.Background()

	tests := []struct {
		name string
		req  ChainRequest
	}{
		{"no times", ChainRequest{Isotopes: []ChainIsotope{{Name: "Mo-99"}}}},
		{"unknown half-life", ChainRequest{Isotopes: []ChainIsotope{{Name: "Xx-1"}}, Times: []float64{1}}},
		{"unknown initial", ChainRequest{Isotopes: []ChainIsotope{{Name: "Mo-99"}}, Initial: map[string]float64{"Tc-99m": 1}, Times: []float64{1}}},
		{"negative time", ChainRequest{Isotopes: []ChainIsotope{{Name: "Mo-99"}}, Times: []float64{-1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SolveChain(ctx, tt.req)
			assert.True(t, core.IsCallerError(err), "got %v", err)
		})
	}
}

func TestChainSpecStableIsotope(t *testing.T) {
	svc, _ := newService(t, ServiceOptions{})
	spec, err := svc.ChainSpec(ChainRequest{Isotopes: []ChainIsotope{{Name: "Zn-64"}, {Name: "Cu-64", HalfLifeDays: 0.5292}}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, spec.Isotopes[0].DecayConstant)
	assert.InEpsilon(t, math.Ln2/(0.5292*core.SecondsPerDay), spec.Isotopes[1].DecayConstant, 1e-12)
}

func TestEstimateSource(t *testing.T) {
	svc, _ := newService(t, ServiceOptions{})

	est, err := svc.EstimateSource(SourceRequest{SourceRate: 1e12, DistanceCm: 5, TargetRadiusCm: 1})
	require.NoError(t, err)
	omega := 2 * math.Pi * (1 - 5/math.Hypot(5, 1))
	assert.InEpsilon(t, 1e12*omega/(4*math.Pi)/math.Pi, est.Flux, 1e-12)
	assert.Equal(t, 1.0, est.Derating)

	est, err = svc.EstimateSource(SourceRequest{
		SourceRate: 1e12, DistanceCm: 5, TargetRadiusCm: 1,
		BeamPowerW: 4000, CoolantFlowKgS: 0.1, HeatCapacity: 4000, MaxTemperatureK: 5,
		Fluence: 2e20, FluenceLimit: 1e20,
	})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, est.TemperatureRise, 1e-12)
	assert.InDelta(t, 0.5, est.Thermal, 1e-12)
	assert.InDelta(t, 0.5, est.Damage, 1e-12)
	assert.InDelta(t, 0.25, est.Derating, 1e-12)

	_, err = svc.EstimateSource(SourceRequest{SourceRate: 1e12, DistanceCm: 5, TargetRadiusCm: 0})
	assert.True(t, core.IsInvalidParameter(err))
}

func TestEvaluateBatchPreservesOrder(t *testing.T) {
	svc, store := newService(t, ServiceOptions{BatchCapacity: 2})
	c := lu177Conditions()
	items := []BatchItem{
		{RouteID: "lu177-direct", Conditions: c},
		{RouteID: "missing", Conditions: c},
		{RouteID: "co60-capture", Conditions: c},
		{RouteID: "lu177-indirect", Conditions: c},
		{RouteID: "mo99-capture", Conditions: route.Conditions{Flux: -1, Application: route.ApplicationMedical}},
	}

	res, err := svc.EvaluateBatch(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, res.Outcomes, len(items))
	for i, item := range items {
		assert.Equal(t, item.RouteID, res.Outcomes[i].RouteID)
	}
	assert.NotEmpty(t, res.Outcomes[1].Error)
	assert.NotEmpty(t, res.Outcomes[4].Error)
	assert.Equal(t, 2, res.Failed())
	assert.Len(t, res.Evaluations(), 3)
	assert.Equal(t, 3, store.Len())
	assert.NotEmpty(t, res.BatchID)
	assert.NotEmpty(t, res.Fingerprint)

	// generator route with impurities costs 3, clamped to capacity
	assert.Equal(t, int64(2), res.Outcomes[3].Cost)
}

func TestEvaluateBatchMatchesSingleEvaluation(t *testing.T) {
	opts := ServiceOptions{Evaluator: evaluator.Options{MonteCarloSamples: 200, MonteCarloSeed: 7}}
	svc, _ := newService(t, opts)
	ctx := context.Background()
	c := lu177Conditions()
	c.Uncertainty = &route.Uncertainty{CrossSection: 0.05, Flux: 0.1}

	single, err := svc.Evaluate(ctx, "lu177-direct", c)
	require.NoError(t, err)
	batch, err := svc.EvaluateBatch(ctx, []BatchItem{{RouteID: "lu177-direct", Conditions: c}, {RouteID: "lu177-direct", Conditions: c}})
	require.NoError(t, err)

	for _, ev := range batch.Evaluations() {
		assert.Equal(t, single.Score, ev.Score)
		require.NotNil(t, ev.Result.Uncertainty)
		assert.Equal(t, single.Result.Uncertainty.MeanBq, ev.Result.Uncertainty.MeanBq)
	}
}

func TestEvaluateBatchCanceled(t *testing.T) {
	svc, _ := newService(t, ServiceOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.EvaluateBatch(ctx, []BatchItem{{RouteID: "lu177-direct", Conditions: lu177Conditions()}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateBatchReportsProgress(t *testing.T) {
	svc, _ := newService(t, ServiceOptions{})
	c := lu177Conditions()
	items := []BatchItem{
		{RouteID: "lu177-direct", Conditions: c},
		{RouteID: "missing", Conditions: c},
		{RouteID: "co60-capture", Conditions: c},
	}

	var mu sync.Mutex
	seen := make(map[int]BatchProgress)
	res, err := svc.EvaluateBatchWithProgress(context.Background(), "batch-1", items, func(p BatchProgress) {
		mu.Lock()
		defer mu.Unlock()
		seen[p.Index] = p
	})
	require.NoError(t, err)
	assert.Equal(t, core.BatchID("batch-1"), res.BatchID)
	require.Len(t, seen, len(items))

	maxDone := 0
	for i, p := range seen {
		assert.Equal(t, len(items), p.Total)
		assert.Equal(t, items[i].RouteID, p.Outcome.RouteID)
		if p.Done > maxDone {
			maxDone = p.Done
		}
	}
	assert.Equal(t, len(items), maxDone)
	assert.NotEmpty(t, seen[1].Outcome.Error)
}
