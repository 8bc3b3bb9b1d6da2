package app

import (
	"context"
	"fmt"
	"time"

	"isoplan/domain/core"
	"isoplan/domain/route"
	"isoplan/domain/verdict"
	"isoplan/internal"
	"isoplan/internal/bateman"
	"isoplan/internal/evaluator"
	"isoplan/internal/kinetics"
	"isoplan/internal/metrics"
	"isoplan/internal/scorer"
	"isoplan/ports"
)

// ServiceOptions configure a PlanningService.
type ServiceOptions struct {
	Evaluator     evaluator.Options
	Solver        bateman.Options
	BatchCapacity int64
}

// PlanningService evaluates and scores production routes
type PlanningService struct {
	registry  ports.RouteRegistryPort
	data      ports.NuclearDataPort
	sink      ports.ResultSinkPort
	evaluator *evaluator.Evaluator
	solver    *bateman.Solver
	capacity  int64
	logger    *internal.Logger
}

// NewPlanningService creates a planning service. A nil sink discards results.
func NewPlanningService(registry ports.RouteRegistryPort, data ports.NuclearDataPort, sink ports.ResultSinkPort, opts ServiceOptions, logger *internal.Logger) *PlanningService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if opts.BatchCapacity <= 0 {
		opts.BatchCapacity = DefaultBatchCapacity
	}
	return &PlanningService{
		registry:  registry,
		data:      data,
		sink:      sink,
		evaluator: evaluator.New(data, opts.Evaluator),
		solver:    bateman.NewSolver(opts.Solver),
		capacity:  opts.BatchCapacity,
		logger:    logger,
	}
}

// Evaluate looks up a registered route, evaluates and scores it.
func (s *PlanningService) Evaluate(ctx context.Context, id core.RouteID, c route.Conditions) (ports.Evaluation, error) {
	d, err := s.registry.Get(ctx, id)
	if err != nil {
		return ports.Evaluation{}, err
	}
	return s.EvaluateRoute(ctx, d, c)
}

// EvaluateRoute evaluates and scores a descriptor that need not be registered.
func (s *PlanningService) EvaluateRoute(ctx context.Context, d route.Descriptor, c route.Conditions) (ports.Evaluation, error) {
	start := time.Now()

	res, err := s.evaluator.Evaluate(ctx, d, c)
	if err != nil {
		metrics.RecordEvaluationError()
		return ports.Evaluation{}, fmt.Errorf("evaluate route %s: %w", d.ID, err)
	}
	score := scorer.Score(d, res)
	ev := ports.Evaluation{Result: res, Score: score}

	metrics.RecordEvaluation(string(res.Classification), time.Since(start))
	metrics.RecordScore(string(score.Class))
	s.logger.Warnings(string(d.ID), res.Warnings)
	s.logger.Debug("route %s: %s (score %.2f, %s)", d.ID, res.Classification, score.Total, score.Class)

	if s.sink != nil {
		if err := s.sink.Store(ctx, ev); err != nil {
			return ports.Evaluation{}, fmt.Errorf("store evaluation %s: %w", res.EvaluationID, err)
		}
	}
	return ev, nil
}

// Routes lists the registry, optionally filtered by product isotope.
func (s *PlanningService) Routes(ctx context.Context, product string) ([]route.Descriptor, error) {
	if product != "" {
		return s.registry.ByProduct(ctx, product)
	}
	return s.registry.List(ctx)
}

// Route returns one registered route.
func (s *PlanningService) Route(ctx context.Context, id core.RouteID) (route.Descriptor, error) {
	return s.registry.Get(ctx, id)
}

// RegistryFingerprint hashes the current registry contents.
func (s *PlanningService) RegistryFingerprint(ctx context.Context) (core.RegistryHash, error) {
	routes, err := s.registry.List(ctx)
	if err != nil {
		return "", err
	}
	entries := make(map[string]interface{}, len(routes))
	for _, d := range routes {
		entries[string(d.ID)] = d
	}
	return core.ComputeRegistryHash(entries), nil
}

// Evaluation returns a stored evaluation.
func (s *PlanningService) Evaluation(ctx context.Context, id core.EvaluationID) (ports.Evaluation, error) {
	if s.sink == nil {
		return ports.Evaluation{}, core.NewEvaluationNotFoundError(id.String())
	}
	return s.sink.Get(ctx, id)
}

// Evaluations lists stored evaluations, oldest first.
func (s *PlanningService) Evaluations(ctx context.Context) ([]ports.Evaluation, error) {
	if s.sink == nil {
		return nil, nil
	}
	return s.sink.List(ctx)
}

// ActivityCurve evaluates a route and samples its activity from start of
// irradiation to decaySeconds after EOB.
func (s *PlanningService) ActivityCurve(ctx context.Context, id core.RouteID, c route.Conditions, decaySeconds float64, points int) ([]kinetics.CurvePoint, error) {
	d, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Generator != nil {
		return nil, core.NewInputError("route", "activity curves are not available for generator routes")
	}
	res, err := s.evaluator.Evaluate(ctx, d, c)
	if err != nil {
		return nil, err
	}
	rate, ok := verdict.Value(res.Physics.ReactionRate)
	if !ok {
		return nil, core.NewInputError("route", fmt.Sprintf("%s stops before yield (%s)", d.ID, res.Classification))
	}
	lambda, _ := verdict.Value(res.Physics.DecayConstant)
	burnup, _ := verdict.Value(res.Physics.BurnupRate)
	return kinetics.ActivityCurve(rate, lambda, burnup, c.IrradiationSeconds, decaySeconds, points)
}
