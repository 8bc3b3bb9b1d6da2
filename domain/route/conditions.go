package route

import (
	"strings"

	"isoplan/domain/core"
)

// Application selects the activity-viability thresholds.
type Application string

const (
	ApplicationMedical    Application = "medical"
	ApplicationIndustrial Application = "industrial"
	ApplicationResearch   Application = "research"
)

// ThresholdModel selects how a threshold reaction's cross-section responds to
// neutron energy.
type ThresholdModel string

const (
	ThresholdStep         ThresholdModel = "step"
	ThresholdEnergyScaled ThresholdModel = "energy-scaled"
)

// Uncertainty holds one-sigma relative uncertainties of the main inputs.
// Zero entries are ignored.
type Uncertainty struct {
	CrossSection float64 `json:"cross_section" yaml:"cross_section" validate:"gte=0,lt=1"`
	Flux         float64 `json:"flux" yaml:"flux" validate:"gte=0,lt=1"`
	Mass         float64 `json:"mass" yaml:"mass" validate:"gte=0,lt=1"`
	HalfLife     float64 `json:"half_life" yaml:"half_life" validate:"gte=0,lt=1"`
}

// Conditions is the per-evaluation operating point. Units: flux n/cm²/s,
// energy MeV, mass g, time s, density g/cm³, thickness cm.
type Conditions struct {
	Flux                  float64        `json:"flux" yaml:"flux" validate:"gte=0"`
	FastFlux              float64        `json:"fast_flux,omitempty" yaml:"fast_flux,omitempty" validate:"gte=0"`
	NeutronEnergyMeV      float64        `json:"neutron_energy_mev,omitempty" yaml:"neutron_energy_mev,omitempty" validate:"gte=0"`
	TargetMassGrams       float64        `json:"target_mass_g" yaml:"target_mass_g" validate:"gte=0"`
	Enrichment            float64        `json:"enrichment" yaml:"enrichment" validate:"gte=0,lte=1"`
	IrradiationSeconds    float64        `json:"irradiation_s" yaml:"irradiation_s" validate:"gte=0"`
	SelfShielding         float64        `json:"self_shielding,omitempty" yaml:"self_shielding,omitempty" validate:"gte=0,lte=1"`
	TargetDensity         float64        `json:"target_density,omitempty" yaml:"target_density,omitempty" validate:"gte=0"`
	TargetThicknessCm     float64        `json:"target_thickness_cm,omitempty" yaml:"target_thickness_cm,omitempty" validate:"gte=0"`
	ChemistryDelaySeconds float64        `json:"chemistry_delay_s,omitempty" yaml:"chemistry_delay_s,omitempty" validate:"gte=0"`
	TransportSeconds      float64        `json:"transport_s,omitempty" yaml:"transport_s,omitempty" validate:"gte=0"`
	IngrowthSeconds       float64        `json:"ingrowth_s,omitempty" yaml:"ingrowth_s,omitempty" validate:"gte=0"`
	CarrierMassGrams      float64        `json:"carrier_mass_g,omitempty" yaml:"carrier_mass_g,omitempty" validate:"gte=0"`
	Derating              float64        `json:"derating,omitempty" yaml:"derating,omitempty" validate:"gte=0,lte=1"`
	Application           Application    `json:"application" yaml:"application" validate:"required,oneof=medical industrial research"`
	ThresholdModel        ThresholdModel `json:"threshold_model,omitempty" yaml:"threshold_model,omitempty" validate:"omitempty,oneof=step energy-scaled"`
	Uncertainty           *Uncertainty   `json:"uncertainty,omitempty" yaml:"uncertainty,omitempty"`
}

// NewConditions validates c, fills defaults and returns the normalized copy.
func NewConditions(c Conditions) (Conditions, error) {
	c.Application = Application(strings.ToLower(strings.TrimSpace(string(c.Application))))
	if c.Application == "" {
		c.Application = ApplicationMedical
	}
	if c.ThresholdModel == "" {
		c.ThresholdModel = ThresholdStep
	}
	if c.Uncertainty != nil {
		u := *c.Uncertainty
		c.Uncertainty = &u
	}
	if err := c.Validate(); err != nil {
		return Conditions{}, err
	}
	return c, nil
}

// Validate checks the struct-level invariants.
func (c Conditions) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	if c.TargetThicknessCm > 0 && c.TargetDensity == 0 {
		return core.NewInputError("target_density", "required when target thickness is set")
	}
	return nil
}

// TotalDelaySeconds is the time between EOB and delivery.
func (c Conditions) TotalDelaySeconds() float64 {
	return c.ChemistryDelaySeconds + c.TransportSeconds
}

// DeratingFactor returns the rate multiplier, 1 when unset.
func (c Conditions) DeratingFactor() float64 {
	if c.Derating <= 0 {
		return 1.0
	}
	return c.Derating
}
