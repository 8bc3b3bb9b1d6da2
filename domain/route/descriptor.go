package route

import (
	"strings"

	"isoplan/domain/core"
)

// RegulatoryFlag is the registry's regulatory standing for a route.
type RegulatoryFlag string

const (
	RegulatoryStandard    RegulatoryFlag = "standard"
	RegulatoryConstrained RegulatoryFlag = "constrained"
	RegulatoryExploratory RegulatoryFlag = "exploratory"
)

// Data-quality labels carried by registry entries.
const (
	DataQualityReference            = "reference"
	DataQualityPlanningConservative = "planning-conservative"
)

// CategoryAlpha marks alpha-emitter routes.
const CategoryAlpha = "alpha"

// GeneratorSpec describes the parent of a generator route. The parent is
// produced from the route target by capture; the product grows in by decay.
type GeneratorSpec struct {
	Parent             string  `json:"parent" yaml:"parent" validate:"required,isotope"`
	ParentHalfLifeDays float64 `json:"parent_half_life_days" yaml:"parent_half_life_days" validate:"gt=0"`
	BranchingRatio     float64 `json:"branching_ratio" yaml:"branching_ratio" validate:"gt=0,lte=1"`
}

// Descriptor is one production pathway. Registry loaders build it through
// NewDescriptor; evaluation code treats it as read-only.
type Descriptor struct {
	ID                      core.RouteID   `json:"id" yaml:"id" validate:"required"`
	Target                  string         `json:"target" yaml:"target" validate:"required,isotope"`
	Product                 string         `json:"product" yaml:"product" validate:"required,isotope"`
	Reaction                ReactionKind   `json:"reaction" yaml:"reaction" validate:"required,reaction"`
	ThresholdMeV            float64        `json:"threshold_mev,omitempty" yaml:"threshold_mev,omitempty" validate:"gte=0"`
	CrossSectionBarns       float64        `json:"cross_section_barns,omitempty" yaml:"cross_section_barns,omitempty" validate:"gte=0"`
	HalfLifeDays            float64        `json:"half_life_days" yaml:"half_life_days" validate:"gt=0"`
	ChemicallySeparable     bool           `json:"chemically_separable" yaml:"chemically_separable"`
	CarrierAddedAcceptable  bool           `json:"carrier_added_acceptable" yaml:"carrier_added_acceptable"`
	Impurities              []ImpurityRisk `json:"impurities,omitempty" yaml:"impurities,omitempty" validate:"dive"`
	Regulatory              RegulatoryFlag `json:"regulatory" yaml:"regulatory" validate:"required,oneof=standard constrained exploratory"`
	BurnupCrossSectionBarns float64        `json:"burnup_cross_section_barns,omitempty" yaml:"burnup_cross_section_barns,omitempty" validate:"gte=0"`
	Category                string         `json:"category,omitempty" yaml:"category,omitempty"`
	DataQuality             string         `json:"data_quality,omitempty" yaml:"data_quality,omitempty"`
	Generator               *GeneratorSpec `json:"generator,omitempty" yaml:"generator,omitempty"`
	Notes                   string         `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// NewDescriptor validates d and returns an independent copy. Regulatory flag
// defaults to standard when empty.
func NewDescriptor(d Descriptor) (Descriptor, error) {
	d.ID = core.RouteID(strings.TrimSpace(string(d.ID)))
	d.Target = strings.TrimSpace(d.Target)
	d.Product = strings.TrimSpace(d.Product)
	if d.Regulatory == "" {
		d.Regulatory = RegulatoryStandard
	}
	d.Regulatory = RegulatoryFlag(strings.ToLower(string(d.Regulatory)))
	d.Category = strings.ToLower(strings.TrimSpace(d.Category))
	d.DataQuality = strings.ToLower(strings.TrimSpace(d.DataQuality))

	if len(d.Impurities) > 0 {
		d.Impurities = append([]ImpurityRisk(nil), d.Impurities...)
	}
	if d.Generator != nil {
		g := *d.Generator
		d.Generator = &g
	}

	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// Validate checks the struct-level invariants.
func (d Descriptor) Validate() error {
	if err := validateStruct(d); err != nil {
		return err
	}
	if d.Reaction == ReactionGenerator && d.Generator == nil {
		return core.NewInputError("generator", "generator routes require a generator parent")
	}
	return nil
}

// HasThreshold reports a positive threshold energy.
func (d Descriptor) HasThreshold() bool { return d.ThresholdMeV > 0 }

// HasCrossSection reports whether a nominal cross-section is tabulated.
func (d Descriptor) HasCrossSection() bool { return d.CrossSectionBarns > 0 }

// HasBurnup reports an explicit product burn-up cross-section.
func (d Descriptor) HasBurnup() bool { return d.BurnupCrossSectionBarns > 0 }

// RequiresNoCarrier is true when the product must be carrier-free.
func (d Descriptor) RequiresNoCarrier() bool { return !d.CarrierAddedAcceptable }

// IsAlpha reports alpha-emitter routes.
func (d Descriptor) IsAlpha() bool { return d.Category == CategoryAlpha }
