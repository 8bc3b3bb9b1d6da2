package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"isoplan/domain/core"
	"isoplan/domain/route"
	"isoplan/ports"
)

// DefaultBatchCapacity is the total cost units evaluated at once.
const DefaultBatchCapacity = 8

// Evaluation cost weights
const (
	baseCost       = 1
	generatorCost  = 1
	impurityCost   = 1
	monteCarloCost = 3
)

// BatchItem is one route/conditions pair of a batch.
type BatchItem struct {
	RouteID    core.RouteID     `json:"route_id" yaml:"route_id"`
	Conditions route.Conditions `json:"conditions" yaml:"conditions"`
}

// BatchOutcome is the evaluation of one item, or the error that prevented it.
type BatchOutcome struct {
	RouteID    core.RouteID      `json:"route_id"`
	Evaluation *ports.Evaluation `json:"evaluation,omitempty"`
	Error      string            `json:"error,omitempty"`
	Cost       int64             `json:"cost"`
	DurationMs int64             `json:"duration_ms"`
}

// BatchResult preserves the input order of the batch.
type BatchResult struct {
	BatchID     core.BatchID      `json:"batch_id"`
	Outcomes    []BatchOutcome    `json:"outcomes"`
	Fingerprint core.RegistryHash `json:"registry_fingerprint"`
	RuntimeMs   int64             `json:"runtime_ms"`
}

// Failed counts outcomes that carry an error.
func (b BatchResult) Failed() int {
	n := 0
	for _, o := range b.Outcomes {
		if o.Error != "" {
			n++
		}
	}
	return n
}

// Evaluations returns the successful evaluations in input order.
func (b BatchResult) Evaluations() []ports.Evaluation {
	out := make([]ports.Evaluation, 0, len(b.Outcomes))
	for _, o := range b.Outcomes {
		if o.Evaluation != nil {
			out = append(out, *o.Evaluation)
		}
	}
	return out
}

// evaluationCost weights a route by the work its evaluation does.
func (s *PlanningService) evaluationCost(d route.Descriptor) int64 {
	cost := int64(baseCost)
	if d.Generator != nil {
		cost += generatorCost
	}
	if len(d.Impurities) > 0 {
		cost += impurityCost
	}
	if s.evaluator.MonteCarloEnabled() {
		cost += monteCarloCost
	}
	if cost > s.capacity {
		cost = s.capacity
	}
	return cost
}

// BatchProgress reports one finished item of a running batch.
type BatchProgress struct {
	BatchID core.BatchID `json:"batch_id"`
	Index   int          `json:"index"`
	Done    int          `json:"done"`
	Total   int          `json:"total"`
	Outcome BatchOutcome `json:"outcome"`
}

// ProgressFunc receives progress from the evaluating goroutines. It must be
// safe for concurrent use.
type ProgressFunc func(BatchProgress)

// EvaluateBatch evaluates items concurrently under a weighted semaphore.
// Per-item failures are recorded in the outcome; only cancellation aborts
// the batch.
func (s *PlanningService) EvaluateBatch(ctx context.Context, items []BatchItem) (BatchResult, error) {
	return s.EvaluateBatchWithProgress(ctx, core.NewBatchID(), items, nil)
}

// EvaluateBatchWithProgress is EvaluateBatch under a caller-chosen ID,
// reporting each finished item to progress.
func (s *PlanningService) EvaluateBatchWithProgress(ctx context.Context, id core.BatchID, items []BatchItem, progress ProgressFunc) (BatchResult, error) {
	if id.String() == "" {
		id = core.NewBatchID()
	}
	start := time.Now()
	fingerprint, err := s.RegistryFingerprint(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("fingerprint registry: %w", err)
	}

	outcomes := make([]BatchOutcome, len(items))
	var done atomic.Int64
	report := func(i int) {
		n := done.Add(1)
		if progress != nil {
			progress(BatchProgress{BatchID: id, Index: i, Done: int(n), Total: len(items), Outcome: outcomes[i]})
		}
	}

	sem := semaphore.NewWeighted(s.capacity)
	g, gctx := errgroup.WithContext(ctx)

	for i, item := range items {
		d, err := s.registry.Get(gctx, item.RouteID)
		if err != nil {
			if gctx.Err() != nil {
				break
			}
			outcomes[i] = BatchOutcome{RouteID: item.RouteID, Error: err.Error()}
			report(i)
			continue
		}
		cost := s.evaluationCost(d)
		if err := sem.Acquire(gctx, cost); err != nil {
			break
		}

		g.Go(func() error {
			defer sem.Release(cost)
			itemStart := time.Now()
			out := BatchOutcome{RouteID: item.RouteID, Cost: cost}

			ev, err := s.EvaluateRoute(gctx, d, item.Conditions)
			switch {
			case err == nil:
				out.Evaluation = &ev
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				out.Error = err.Error()
			}
			out.DurationMs = time.Since(itemStart).Milliseconds()
			outcomes[i] = out
			report(i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{
		BatchID:     id,
		Outcomes:    outcomes,
		Fingerprint: fingerprint,
		RuntimeMs:   time.Since(start).Milliseconds(),
	}
	s.logger.Info("batch %s: %d routes, %d failed (%dms)", res.BatchID, len(items), res.Failed(), res.RuntimeMs)
	return res, nil
}
