// Package registry holds RouteRegistryPort implementations backed by memory
// and YAML documents, and the flat Record shape shared by every tabular
// registry source.
package registry

import (
	"strings"

	"isoplan/domain/core"
	"isoplan/domain/route"
)

// Record is the flat, source-neutral form of a route. YAML documents,
// workbook rows and database rows all decode into it.
type Record struct {
	ID                          string   `yaml:"id" db:"id"`
	Target                      string   `yaml:"target" db:"target"`
	Product                     string   `yaml:"product" db:"product"`
	Reaction                    string   `yaml:"reaction" db:"reaction"`
	ThresholdMeV                float64  `yaml:"threshold_mev" db:"threshold_mev"`
	CrossSectionBarns           float64  `yaml:"cross_section_barns" db:"cross_section_barns"`
	HalfLifeDays                float64  `yaml:"half_life_days" db:"half_life_days"`
	ChemicallySeparable         bool     `yaml:"chemically_separable" db:"chemically_separable"`
	CarrierAddedAcceptable      bool     `yaml:"carrier_added_acceptable" db:"carrier_added_acceptable"`
	Impurities                  []string `yaml:"impurities" db:"-"`
	Regulatory                  string   `yaml:"regulatory" db:"regulatory"`
	BurnupCrossSectionBarns     float64  `yaml:"burnup_cross_section_barns" db:"burnup_cross_section_barns"`
	Category                    string   `yaml:"category" db:"category"`
	DataQuality                 string   `yaml:"data_quality" db:"data_quality"`
	GeneratorParent             string   `yaml:"generator_parent" db:"generator_parent"`
	GeneratorParentHalfLifeDays float64  `yaml:"generator_parent_half_life_days" db:"generator_parent_half_life_days"`
	GeneratorBranchingRatio     float64  `yaml:"generator_branching_ratio" db:"generator_branching_ratio"`
	Notes                       string   `yaml:"notes" db:"notes"`
}

// Descriptor converts the record into a validated route descriptor.
// Impurity strings that cannot be parsed are kept verbatim.
func (r Record) Descriptor() (route.Descriptor, error) {
	kind, err := route.NormalizeReaction(r.Reaction)
	if err != nil {
		return route.Descriptor{}, err
	}
	d := route.Descriptor{
		ID:                      core.RouteID(r.ID),
		Target:                  r.Target,
		Product:                 r.Product,
		Reaction:                kind,
		ThresholdMeV:            r.ThresholdMeV,
		CrossSectionBarns:       r.CrossSectionBarns,
		HalfLifeDays:            r.HalfLifeDays,
		ChemicallySeparable:     r.ChemicallySeparable,
		CarrierAddedAcceptable:  r.CarrierAddedAcceptable,
		Regulatory:              route.RegulatoryFlag(r.Regulatory),
		BurnupCrossSectionBarns: r.BurnupCrossSectionBarns,
		Category:                r.Category,
		DataQuality:             r.DataQuality,
		Notes:                   r.Notes,
	}
	for _, text := range r.Impurities {
		if strings.TrimSpace(text) == "" {
			continue
		}
		d.Impurities = append(d.Impurities, route.ImpurityFromText(text))
	}
	if strings.TrimSpace(r.GeneratorParent) != "" {
		d.Generator = &route.GeneratorSpec{
			Parent:             strings.TrimSpace(r.GeneratorParent),
			ParentHalfLifeDays: r.GeneratorParentHalfLifeDays,
			BranchingRatio:     r.GeneratorBranchingRatio,
		}
		if d.Generator.BranchingRatio == 0 {
			d.Generator.BranchingRatio = 1
		}
	}
	return route.NewDescriptor(d)
}

// FromDescriptor flattens a descriptor, the inverse of Descriptor.
func FromDescriptor(d route.Descriptor) Record {
	r := Record{
		ID:                      string(d.ID),
		Target:                  d.Target,
		Product:                 d.Product,
		Reaction:                string(d.Reaction),
		ThresholdMeV:            d.ThresholdMeV,
		CrossSectionBarns:       d.CrossSectionBarns,
		HalfLifeDays:            d.HalfLifeDays,
		ChemicallySeparable:     d.ChemicallySeparable,
		CarrierAddedAcceptable:  d.CarrierAddedAcceptable,
		Regulatory:              string(d.Regulatory),
		BurnupCrossSectionBarns: d.BurnupCrossSectionBarns,
		Category:                d.Category,
		DataQuality:             d.DataQuality,
		Notes:                   d.Notes,
	}
	for _, imp := range d.Impurities {
		r.Impurities = append(r.Impurities, imp.String())
	}
	if d.Generator != nil {
		r.GeneratorParent = d.Generator.Parent
		r.GeneratorParentHalfLifeDays = d.Generator.ParentHalfLifeDays
		r.GeneratorBranchingRatio = d.Generator.BranchingRatio
	}
	return r
}
