package ports

// Pathway is tabulated data for one target(reaction)product pathway.
type Pathway struct {
	CrossSectionBarns float64 `json:"cross_section_barns" yaml:"cross_section_barns"`
	ThresholdMeV      float64 `json:"threshold_mev,omitempty" yaml:"threshold_mev,omitempty"`
}

// HalfLife is a tabulated half-life. Stable isotopes carry Stable=true and no
// finite value.
type HalfLife struct {
	Days   float64 `json:"days,omitempty" yaml:"days,omitempty"`
	Stable bool    `json:"stable,omitempty" yaml:"stable,omitempty"`
}

// NuclearDataPort is the reference-data capability consulted by the
// evaluator. Every lookup reports whether the value is known; callers fall
// back to conservative defaults on a miss.
type NuclearDataPort interface {
	// AtomicMass returns g/mol for an element symbol.
	AtomicMass(element string) (float64, bool)
	// Abundance returns the natural isotopic abundance fraction (0-1).
	Abundance(element string, massNumber int) (float64, bool)
	HalfLife(isotope string) (HalfLife, bool)
	// ImpurityCrossSection is keyed like "Zn-64(n,p)Cu-64".
	ImpurityCrossSection(pathKey string) (float64, bool)
	// LookupPathway is keyed like "Lu-176(n,gamma)Lu-177".
	LookupPathway(key string) (Pathway, bool)
}
