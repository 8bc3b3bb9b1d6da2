package scorer

// scorer_const.go
//
// Fixed scoring ladders for the six categories. Every category is clamped to
// [0,5] after its adjustments are applied.

// ============================================================================
// 1. PHYSICS - classification tier
// ============================================================================

const (
	PhysicsFeasible            = 5.0
	PhysicsWithConstraints     = 3.0
	PhysicsNotRecommended      = 0.5
	PhysicsMissingCrossSection = 1.0
)

// ============================================================================
// 2. YIELD - reaction rate and EOB activity tiers
// ============================================================================

const (
	YieldBase       = 2.5
	YieldAdjustment = 1.0

	// reactions per second
	HighReactionRate = 1e12
	LowReactionRate  = 1e6

	// GBq
	HighActivityGBq = 100.0
	LowActivityGBq  = 0.1
)

// ============================================================================
// 3. SPECIFIC ACTIVITY - TBq/g ladders
// ============================================================================

// ladderStep awards Score when the value is at or above Min.
type ladderStep struct {
	Min   float64
	Score float64
}

// carrier-free product must meet a stricter ladder
var ncaLadder = []ladderStep{{10, 5.0}, {1, 4.0}, {0.1, 2.5}}

const ncaFloor = 1.0

var carrierAddedLadder = []ladderStep{{1, 5.0}, {0.1, 4.0}, {0.01, 3.0}}

const carrierAddedFloor = 2.0

// SpecificActivityUnknown is used when no specific activity was computed.
const SpecificActivityUnknown = 2.5

// ============================================================================
// 4. IMPURITY - risk level and warning penalties
// ============================================================================

const (
	ImpurityHighWarningPenalty  = 1.0
	ImpurityOtherWarningPenalty = 0.3
	ImpurityReasonPenalty       = 1.5
)

// ============================================================================
// 5. LOGISTICS - half-life fit and chemistry
// ============================================================================

const (
	LogisticsBase               = 3.0
	LogisticsHalfLifeAdjust     = 1.0
	LogisticsInseparable        = 1.5
	LogisticsNCAOutsideIndustry = 0.3

	IndustrialMinHalfLifeDays = 30.0
	MedicalMinHalfLifeDays    = 1.0
	MedicalMaxHalfLifeDays    = 10.0
)

// ============================================================================
// 6. REGULATORY - flag, category and data quality
// ============================================================================

const (
	RegulatoryStandard    = 5.0
	RegulatoryConstrained = 3.0
	RegulatoryExploratory = 1.5

	AlphaPenalty            = 1.0
	ConservativeDataPenalty = 0.2
)
