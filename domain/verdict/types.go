package verdict

import (
	"strings"

	"isoplan/domain/core"
)

// Classification is the feasibility verdict of a route evaluation.
type Classification string

const (
	Feasible                Classification = "Feasible"
	FeasibleWithConstraints Classification = "Feasible with constraints"
	NotRecommended          Classification = "Not recommended"
)

// Rank orders classifications from best (0) to worst.
func (c Classification) Rank() int {
	switch c {
	case Feasible:
		return 0
	case FeasibleWithConstraints:
		return 1
	default:
		return 2
	}
}

// RiskLevel grades impurity risk.
type RiskLevel string

const (
	RiskLow     RiskLevel = "Low"
	RiskMedium  RiskLevel = "Medium"
	RiskHigh    RiskLevel = "High"
	RiskUnknown RiskLevel = "Unknown"
)

func (r RiskLevel) rank() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	}
	return -1
}

// AtLeast returns the higher of r and floor. Unknown never lowers a known level.
func (r RiskLevel) AtLeast(floor RiskLevel) RiskLevel {
	if floor.rank() > r.rank() {
		return floor
	}
	return r
}

// TrapType names the contamination mechanism an ImpurityTrap describes.
type TrapType string

const (
	TrapLongLived        TrapType = "long_lived_impurity"
	TrapStableAccumulate TrapType = "stable_accumulator"
	TrapSameElement      TrapType = "same_element"
	TrapFailCondition    TrapType = "long_lived_inseparable"
)

// TrapSeverity grades a trap.
type TrapSeverity string

const (
	TrapModerate TrapSeverity = "moderate"
	TrapHigh     TrapSeverity = "high"
)

// ImpurityTrap is one detected contamination risk.
type ImpurityTrap struct {
	Type     TrapType     `json:"type"`
	Severity TrapSeverity `json:"severity"`
	Isotope  string       `json:"isotope"`
	Message  string       `json:"message"`
}

// ImpurityActivity is the quantitative estimate for one tabulated impurity.
type ImpurityActivity struct {
	Isotope        string  `json:"isotope"`
	ActivityBq     float64 `json:"activity_bq"`
	FractionOfProd float64 `json:"fraction_of_product"`
}

// Uncertainty summarizes the optional Monte Carlo band on EOB activity.
type Uncertainty struct {
	Samples     int     `json:"samples"`
	MeanBq      float64 `json:"mean_bq"`
	StdDevBq    float64 `json:"std_dev_bq"`
	P5Bq        float64 `json:"p5_bq"`
	P50Bq       float64 `json:"p50_bq"`
	P95Bq       float64 `json:"p95_bq"`
	RelativeRSS float64 `json:"relative_rss"`
}

// Physics holds the computed quantities. Pointers stay nil when a terminal
// gate fired before the quantity was computed.
type Physics struct {
	DecayConstant         *float64 `json:"decay_constant_per_s,omitempty"`
	SaturationFactor      *float64 `json:"saturation_factor,omitempty"`
	TargetAtoms           *float64 `json:"target_atoms,omitempty"`
	EffectiveCrossSection *float64 `json:"effective_cross_section_barns,omitempty"`
	FluxUsed              *float64 `json:"flux_used,omitempty"`
	SelfShielding         *float64 `json:"self_shielding,omitempty"`
	BurnupRate            *float64 `json:"burnup_rate_per_s,omitempty"`
	ReactionRate          *float64 `json:"reaction_rate_per_s,omitempty"`
	AtomsAtEOB            *float64 `json:"atoms_at_eob,omitempty"`
	ActivityEOB           *float64 `json:"activity_eob_bq,omitempty"`
	DeliveredActivity     *float64 `json:"delivered_activity_bq,omitempty"`
	SpecificActivity      *float64 `json:"specific_activity_bq_per_g,omitempty"`
	MaxSpecificActivity   *float64 `json:"max_specific_activity_bq_per_g,omitempty"`
}

// Result is the outcome of evaluating one route under one set of conditions.
// It is built once by the evaluator and not modified afterwards.
type Result struct {
	EvaluationID   core.EvaluationID  `json:"evaluation_id"`
	RouteID        core.RouteID       `json:"route_id"`
	Application    string             `json:"application"`
	Feasible       bool               `json:"feasible"`
	Classification Classification     `json:"classification"`
	Reasons        []string           `json:"reasons"`
	Warnings       []core.Warning     `json:"warnings"`
	ImpurityRisk   RiskLevel          `json:"impurity_risk"`
	Traps          []ImpurityTrap     `json:"traps,omitempty"`
	Impurities     []ImpurityActivity `json:"impurity_activities,omitempty"`
	Physics        Physics            `json:"physics"`
	Uncertainty    *Uncertainty       `json:"uncertainty,omitempty"`
	EvaluatedAt    core.Timestamp     `json:"evaluated_at"`
}

// HasReasonContaining reports whether any reason mentions substr (case-insensitive).
func (r Result) HasReasonContaining(substr string) bool {
	substr = strings.ToLower(substr)
	for _, reason := range r.Reasons {
		if strings.Contains(strings.ToLower(reason), substr) {
			return true
		}
	}
	return false
}

// WarningsIn returns the warnings of one category.
func (r Result) WarningsIn(category core.WarningCategory) []core.Warning {
	var out []core.Warning
	for _, w := range r.Warnings {
		if w.Category == category {
			out = append(out, w)
		}
	}
	return out
}

// Value dereferences an optional physics quantity.
func Value(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
