package priority

import "isoplan/domain/core"

// Class is the priority tier derived from the total score.
type Class string

const (
	HighPriority Class = "High Priority"
	Conditional  Class = "Conditional"
	LowPriority  Class = "Low Priority"
)

// Tier thresholds on the total score.
const (
	HighPriorityThreshold = 4.0
	ConditionalThreshold  = 2.5

	MinCategoryScore = 0.0
	MaxCategoryScore = 5.0
)

// ClassFor maps a total score onto a priority class.
func ClassFor(total float64) Class {
	switch {
	case total >= HighPriorityThreshold:
		return HighPriority
	case total >= ConditionalThreshold:
		return Conditional
	default:
		return LowPriority
	}
}

// ScoreBreakdown is the six-category score of one route evaluation.
type ScoreBreakdown struct {
	RouteID          core.RouteID `json:"route_id"`
	Physics          float64      `json:"physics"`
	Yield            float64      `json:"yield"`
	SpecificActivity float64      `json:"specific_activity"`
	Impurity         float64      `json:"impurity"`
	Logistics        float64      `json:"logistics"`
	Regulatory       float64      `json:"regulatory"`
	Total            float64      `json:"total"`
	Class            Class        `json:"class"`
}

// Categories returns the six category scores in canonical order.
func (s ScoreBreakdown) Categories() [6]float64 {
	return [6]float64{s.Physics, s.Yield, s.SpecificActivity, s.Impurity, s.Logistics, s.Regulatory}
}

// CategoryNames matches the order of Categories.
var CategoryNames = [6]string{"physics", "yield", "specific_activity", "impurity", "logistics", "regulatory"}
