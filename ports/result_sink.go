package ports

import (
	"context"

	"isoplan/domain/core"
	"isoplan/domain/priority"
	"isoplan/domain/verdict"
)

// Evaluation pairs a verdict with its score.
type Evaluation struct {
	Result verdict.Result          `json:"result"`
	Score  priority.ScoreBreakdown `json:"score"`
}

// ResultSinkPort receives finished evaluations for presentation or export.
type ResultSinkPort interface {
	Store(ctx context.Context, evaluation Evaluation) error
	Get(ctx context.Context, id core.EvaluationID) (Evaluation, error)
	List(ctx context.Context) ([]Evaluation, error)
}
