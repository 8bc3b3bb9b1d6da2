// Package scorer ranks evaluated routes on six independent categories.
//
// Scoring is read-only with respect to the evaluation: it never recomputes
// or modifies a physics value, and the same (route, result) pair always
// produces the same breakdown.
package scorer

import (
	"math"
	"strings"

	"isoplan/domain/core"
	"isoplan/domain/priority"
	"isoplan/domain/route"
	"isoplan/domain/verdict"
	"isoplan/internal/kinetics"
)

// Rule scores one category of a route evaluation. Implementations return
// an unclamped value; Score clamps it.
type Rule interface {
	Name() string
	Score(d route.Descriptor, res verdict.Result) float64
}

// Rules returns the six category rules in canonical order.
func Rules() []Rule {
	return []Rule{
		PhysicsRule{},
		YieldRule{},
		SpecificActivityRule{},
		ImpurityRule{},
		LogisticsRule{},
		RegulatoryRule{},
	}
}

// GetRuleByName acts as a factory for single-category scoring.
func GetRuleByName(name string) Rule {
	for _, r := range Rules() {
		if r.Name() == strings.ToLower(strings.TrimSpace(name)) {
			return r
		}
	}
	return nil
}

// Score computes the six-category breakdown, its mean and the priority class.
func Score(d route.Descriptor, res verdict.Result) priority.ScoreBreakdown {
	var cats [6]float64
	sum := 0.0
	for i, r := range Rules() {
		cats[i] = clamp(r.Score(d, res))
		sum += cats[i]
	}
	total := sum / float64(len(cats))
	return priority.ScoreBreakdown{
		RouteID:          d.ID,
		Physics:          cats[0],
		Yield:            cats[1],
		SpecificActivity: cats[2],
		Impurity:         cats[3],
		Logistics:        cats[4],
		Regulatory:       cats[5],
		Total:            total,
		Class:            priority.ClassFor(total),
	}
}

func clamp(v float64) float64 {
	return math.Max(priority.MinCategoryScore, math.Min(priority.MaxCategoryScore, v))
}

// PhysicsRule scores the classification tier.
type PhysicsRule struct{}

func (PhysicsRule) Name() string { return "physics" }

func (PhysicsRule) Score(d route.Descriptor, res verdict.Result) float64 {
	var s float64
	switch res.Classification {
	case verdict.Feasible:
		s = PhysicsFeasible
	case verdict.FeasibleWithConstraints:
		s = PhysicsWithConstraints
	default:
		s = PhysicsNotRecommended
	}
	if res.HasReasonContaining("threshold") {
		return 0
	}
	if !d.HasCrossSection() {
		s -= PhysicsMissingCrossSection
	}
	return s
}

// YieldRule scores reaction rate and EOB activity.
type YieldRule struct{}

func (YieldRule) Name() string { return "yield" }

func (YieldRule) Score(_ route.Descriptor, res verdict.Result) float64 {
	s := YieldBase
	if rate, ok := verdict.Value(res.Physics.ReactionRate); ok {
		switch {
		case rate >= HighReactionRate:
			s += YieldAdjustment
		case rate < LowReactionRate:
			s -= YieldAdjustment
		}
	}
	if a, ok := verdict.Value(res.Physics.ActivityEOB); ok {
		gbq := a / kinetics.BqPerGBq
		switch {
		case gbq >= HighActivityGBq:
			s += YieldAdjustment
		case gbq < LowActivityGBq:
			s -= YieldAdjustment
		}
	}
	return s
}

// SpecificActivityRule scores TBq/g on the ladder matching the carrier policy.
type SpecificActivityRule struct{}

func (SpecificActivityRule) Name() string { return "specific_activity" }

func (SpecificActivityRule) Score(d route.Descriptor, res verdict.Result) float64 {
	sa, ok := verdict.Value(res.Physics.SpecificActivity)
	if !ok {
		return SpecificActivityUnknown
	}
	tbq := sa / kinetics.BqPerTBq
	if d.RequiresNoCarrier() {
		return climb(ncaLadder, ncaFloor, tbq)
	}
	return climb(carrierAddedLadder, carrierAddedFloor, tbq)
}

func climb(ladder []ladderStep, floor, v float64) float64 {
	for _, step := range ladder {
		if v >= step.Min {
			return step.Score
		}
	}
	return floor
}

// ImpurityRule scores the impurity risk and impurity warnings.
type ImpurityRule struct{}

func (ImpurityRule) Name() string { return "impurity" }

var impurityBase = map[verdict.RiskLevel]float64{
	verdict.RiskLow:     5,
	verdict.RiskMedium:  3,
	verdict.RiskHigh:    1,
	verdict.RiskUnknown: 2,
}

func (ImpurityRule) Score(_ route.Descriptor, res verdict.Result) float64 {
	s, ok := impurityBase[res.ImpurityRisk]
	if !ok {
		s = impurityBase[verdict.RiskUnknown]
	}
	for _, w := range res.WarningsIn(core.CategoryImpurity) {
		if w.Severity == core.SeverityHigh {
			s -= ImpurityHighWarningPenalty
		} else {
			s -= ImpurityOtherWarningPenalty
		}
	}
	if res.HasReasonContaining("impurit") {
		s -= ImpurityReasonPenalty
	}
	return s
}

// LogisticsRule scores half-life fit and processing chemistry.
type LogisticsRule struct{}

func (LogisticsRule) Name() string { return "logistics" }

func (LogisticsRule) Score(d route.Descriptor, res verdict.Result) float64 {
	s := LogisticsBase
	app := route.Application(res.Application)
	switch app {
	case route.ApplicationIndustrial:
		if d.HalfLifeDays >= IndustrialMinHalfLifeDays {
			s += LogisticsHalfLifeAdjust
		} else {
			s -= LogisticsHalfLifeAdjust
		}
	case route.ApplicationMedical, "":
		if d.HalfLifeDays >= MedicalMinHalfLifeDays && d.HalfLifeDays <= MedicalMaxHalfLifeDays {
			s += LogisticsHalfLifeAdjust
		} else {
			s -= LogisticsHalfLifeAdjust
		}
	}
	if !d.ChemicallySeparable {
		s -= LogisticsInseparable
	}
	if d.RequiresNoCarrier() && app != route.ApplicationIndustrial {
		s -= LogisticsNCAOutsideIndustry
	}
	return s
}

// RegulatoryRule scores the regulatory standing.
type RegulatoryRule struct{}

func (RegulatoryRule) Name() string { return "regulatory" }

func (RegulatoryRule) Score(d route.Descriptor, _ verdict.Result) float64 {
	var s float64
	switch d.Regulatory {
	case route.RegulatoryConstrained:
		s = RegulatoryConstrained
	case route.RegulatoryExploratory:
		s = RegulatoryExploratory
	default:
		s = RegulatoryStandard
	}
	if d.IsAlpha() {
		s -= AlphaPenalty
	}
	if d.DataQuality == route.DataQualityPlanningConservative {
		s -= ConservativeDataPenalty
	}
	return s
}
