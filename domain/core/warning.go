package core

import "fmt"

// Severity grades an advisory warning.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// WarningCategory groups warnings by the pipeline concern that raised them.
type WarningCategory string

const (
	CategoryData     WarningCategory = "data"
	CategoryPhysics  WarningCategory = "physics"
	CategoryImpurity WarningCategory = "impurity"
	CategorySolver   WarningCategory = "solver"
	CategoryYield    WarningCategory = "yield"
)

// Warning codes
const (
	WarnMissingCrossSection   = "missing_cross_section"
	WarnUnknownAtomicMass     = "unknown_atomic_mass"
	WarnUnknownAbundance      = "unknown_abundance"
	WarnUnparseableImpurity   = "unparseable_impurity"
	WarnBurnupDominant        = "burnup_dominant"
	WarnStabilityGuard        = "stability_guard"
	WarnStepBudgetStretched   = "step_budget_stretched"
	WarnBranchingOverflow     = "branching_overflow"
	WarnFastFluxDefault       = "fast_flux_default"
	WarnLowReactionRate       = "low_reaction_rate"
	WarnLongLivedImpurity     = "long_lived_impurity"
	WarnSameElementImpurity   = "same_element_impurity"
	WarnImpurityActivity      = "impurity_activity"
	WarnImpurityTrap          = "impurity_trap"
	WarnIngrowthDefault       = "ingrowth_default"
	WarnCyclicChain           = "cyclic_chain"
	WarnMissingGeneratorInput = "missing_generator_input"
	WarnNaturalEnrichment     = "natural_enrichment"
)

// Warning is a structured advisory record. Warnings never change a
// computed value; a caller that discards them still has a correct result.
type Warning struct {
	Code     string          `json:"code" yaml:"code"`
	Severity Severity        `json:"severity" yaml:"severity"`
	Category WarningCategory `json:"category" yaml:"category"`
	Message  string          `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s/%s] %s", w.Category, w.Severity, w.Message)
}

// NewWarning builds a warning with a formatted message.
func NewWarning(code string, severity Severity, category WarningCategory, format string, args ...interface{}) Warning {
	return Warning{
		Code:     code,
		Severity: severity,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}
