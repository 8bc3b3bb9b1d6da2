// Package metrics holds the prometheus instruments of the planning service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// =============================================================================
// Prometheus Metrics for Route Planning
// =============================================================================

var (
	// evaluations counts route evaluations.
	// Labels: classification (Feasible, Feasible with constraints, Not recommended)
	evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "isoplan",
		Name:      "evaluations_total",
		Help:      "Route evaluations by classification",
	}, []string{"classification"})

	// evaluationDuration measures one evaluate+score call.
	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "isoplan",
		Name:      "evaluation_duration_seconds",
		Help:      "Route evaluation latency in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	// batemanSolves counts decay-chain solves.
	// Labels: method (recursive, euler)
	batemanSolves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "isoplan",
		Name:      "bateman_solves_total",
		Help:      "Decay-chain solves by method",
	}, []string{"method"})

	// scores counts scored routes.
	// Labels: priority (High Priority, Conditional, Low Priority)
	scores = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "isoplan",
		Name:      "score_total",
		Help:      "Scored routes by priority class",
	}, []string{"priority"})

	// evaluationErrors counts evaluations rejected as malformed input.
	evaluationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "isoplan",
		Name:      "evaluation_errors_total",
		Help:      "Evaluations that failed with an error",
	})
)

// =============================================================================
// Recording helpers
// =============================================================================

// RecordEvaluation records one evaluation outcome and its latency.
func RecordEvaluation(classification string, d time.Duration) {
	evaluations.WithLabelValues(classification).Inc()
	evaluationDuration.Observe(d.Seconds())
}

// RecordEvaluationError records a failed evaluation.
func RecordEvaluationError() {
	evaluationErrors.Inc()
}

// RecordScore records the priority class of a scored route.
func RecordScore(class string) {
	scores.WithLabelValues(class).Inc()
}

// RecordSolve records the method used for a chain solve.
func RecordSolve(method string) {
	batemanSolves.WithLabelValues(method).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
