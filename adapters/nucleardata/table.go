// Package nucleardata provides NuclearDataPort implementations: a built-in
// reference table, a YAML overlay on top of it, and a null object.
package nucleardata

import (
	"fmt"
	"maps"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"isoplan/ports"
)

// Table is an immutable lookup table. Safe for concurrent reads.
type Table struct {
	atomicMasses map[string]float64
	abundances   map[string]float64
	halfLives    map[string]ports.HalfLife
	impurityXS   map[string]float64
	pathways     map[string]ports.Pathway
}

var _ ports.NuclearDataPort = (*Table)(nil)

// Overlay is the YAML document shape accepted by LoadOverlay.
type Overlay struct {
	AtomicMasses          map[string]float64        `yaml:"atomic_masses"`
	Abundances            map[string]float64        `yaml:"abundances"`
	HalfLives             map[string]ports.HalfLife `yaml:"half_lives"`
	ImpurityCrossSections map[string]float64        `yaml:"impurity_cross_sections"`
	Pathways              map[string]ports.Pathway  `yaml:"pathways"`
}

// Builtin returns the reference table shipped with the planner.
func Builtin() *Table {
	return &Table{
		atomicMasses: maps.Clone(builtinAtomicMasses),
		abundances:   maps.Clone(builtinAbundances),
		halfLives:    maps.Clone(builtinHalfLives),
		impurityXS:   maps.Clone(builtinImpurityCrossSections),
		pathways:     maps.Clone(builtinPathways),
	}
}

// WithOverlay returns a new table where overlay entries replace or extend t.
func (t *Table) WithOverlay(o Overlay) (*Table, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	out := &Table{
		atomicMasses: maps.Clone(t.atomicMasses),
		abundances:   maps.Clone(t.abundances),
		halfLives:    maps.Clone(t.halfLives),
		impurityXS:   maps.Clone(t.impurityXS),
		pathways:     maps.Clone(t.pathways),
	}
	maps.Copy(out.atomicMasses, o.AtomicMasses)
	maps.Copy(out.abundances, o.Abundances)
	maps.Copy(out.halfLives, o.HalfLives)
	maps.Copy(out.impurityXS, o.ImpurityCrossSections)
	maps.Copy(out.pathways, o.Pathways)
	return out, nil
}

// LoadOverlay reads a YAML overlay file and applies it to the built-in table.
func LoadOverlay(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read nuclear data overlay: %w", err)
	}
	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse nuclear data overlay %s: %w", path, err)
	}
	return Builtin().WithOverlay(o)
}

func (o Overlay) validate() error {
	for k, v := range o.AtomicMasses {
		if v <= 0 {
			return fmt.Errorf("atomic mass for %s must be positive, got %g", k, v)
		}
	}
	for k, v := range o.Abundances {
		if v < 0 || v > 1 {
			return fmt.Errorf("abundance for %s must be within [0,1], got %g", k, v)
		}
	}
	for k, v := range o.HalfLives {
		if !v.Stable && v.Days <= 0 {
			return fmt.Errorf("half-life for %s must be positive or marked stable", k)
		}
	}
	for k, v := range o.ImpurityCrossSections {
		if v < 0 {
			return fmt.Errorf("impurity cross-section for %s must be >= 0, got %g", k, v)
		}
	}
	for k, v := range o.Pathways {
		if v.CrossSectionBarns < 0 || v.ThresholdMeV < 0 {
			return fmt.Errorf("pathway %s has negative values", k)
		}
	}
	return nil
}

func (t *Table) AtomicMass(element string) (float64, bool) {
	v, ok := t.atomicMasses[strings.TrimSpace(element)]
	return v, ok
}

func (t *Table) Abundance(element string, massNumber int) (float64, bool) {
	v, ok := t.abundances[strings.TrimSpace(element)+"-"+strconv.Itoa(massNumber)]
	return v, ok
}

func (t *Table) HalfLife(isotope string) (ports.HalfLife, bool) {
	v, ok := t.halfLives[strings.TrimSpace(isotope)]
	return v, ok
}

// ImpurityCrossSection consults the impurity table first, then the pathway
// table.
func (t *Table) ImpurityCrossSection(pathKey string) (float64, bool) {
	if v, ok := t.impurityXS[pathKey]; ok {
		return v, true
	}
	if p, ok := t.pathways[pathKey]; ok {
		return p.CrossSectionBarns, true
	}
	return 0, false
}

func (t *Table) LookupPathway(key string) (ports.Pathway, bool) {
	p, ok := t.pathways[key]
	return p, ok
}

// Len reports the number of entries per table, for startup logging.
func (t *Table) Len() map[string]int {
	return map[string]int{
		"atomic_masses": len(t.atomicMasses),
		"abundances":    len(t.abundances),
		"half_lives":    len(t.halfLives),
		"impurity_xs":   len(t.impurityXS),
		"pathways":      len(t.pathways),
	}
}

// Null knows nothing; every lookup misses.
type Null struct{}

var _ ports.NuclearDataPort = Null{}

func (Null) AtomicMass(string) (float64, bool)           { return 0, false }
func (Null) Abundance(string, int) (float64, bool)       { return 0, false }
func (Null) HalfLife(string) (ports.HalfLife, bool)      { return ports.HalfLife{}, false }
func (Null) ImpurityCrossSection(string) (float64, bool) { return 0, false }
func (Null) LookupPathway(string) (ports.Pathway, bool)  { return ports.Pathway{}, false }
