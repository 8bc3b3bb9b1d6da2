// Package bateman solves radioactive decay networks dN/dt = Λ·N.
//
// Λ is square with Λ[i][i] = −λᵢ and Λ[i][j] = BRⱼ→ᵢ·λⱼ for i ≠ j. Small
// acyclic networks are solved in closed form; larger or cyclic networks use
// an adaptive explicit-Euler integrator with a stability guard.
package bateman

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"isoplan/domain/core"
)

// ParentLink is one decay feed into an isotope.
type ParentLink struct {
	Parent         string  `json:"parent" yaml:"parent"`
	BranchingRatio float64 `json:"branching_ratio" yaml:"branching_ratio"`
}

// Isotope is one node of a decay network.
type Isotope struct {
	Name          string       `json:"name" yaml:"name"`
	DecayConstant float64      `json:"decay_constant" yaml:"decay_constant"`
	Parents       []ParentLink `json:"parents,omitempty" yaml:"parents,omitempty"`
}

// ChainSpec lists the isotopes of a network in matrix order.
type ChainSpec struct {
	Isotopes []Isotope `json:"isotopes" yaml:"isotopes"`
}

// Index returns the matrix row of an isotope.
func (c ChainSpec) Index(name string) (int, bool) {
	for i, iso := range c.Isotopes {
		if iso.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Names returns the isotope names in matrix order.
func (c ChainSpec) Names() []string {
	names := make([]string, len(c.Isotopes))
	for i, iso := range c.Isotopes {
		names[i] = iso.Name
	}
	return names
}

// Validate checks structure and branching ratios. A parent whose branching
// ratios sum above 1 is a data-quality warning, not an error.
func (c ChainSpec) Validate() ([]core.Warning, error) {
	if len(c.Isotopes) == 0 {
		return nil, core.NewInputError("chain", "no isotopes")
	}
	seen := make(map[string]bool, len(c.Isotopes))
	for _, iso := range c.Isotopes {
		if strings.TrimSpace(iso.Name) == "" {
			return nil, core.NewInputError("chain", "isotope with empty name")
		}
		if seen[iso.Name] {
			return nil, core.NewInputError("chain", "duplicate isotope "+iso.Name)
		}
		seen[iso.Name] = true
		if math.IsNaN(iso.DecayConstant) || iso.DecayConstant < 0 || math.IsInf(iso.DecayConstant, 0) {
			return nil, core.NewParameterError("decay_constant["+iso.Name+"]", iso.DecayConstant, "finite and >= 0")
		}
	}

	outflow := make(map[string]float64)
	for _, iso := range c.Isotopes {
		for _, link := range iso.Parents {
			if !seen[link.Parent] {
				return nil, core.NewInputError("chain", fmt.Sprintf("%s lists unknown parent %s", iso.Name, link.Parent))
			}
			if link.Parent == iso.Name {
				return nil, core.NewInputError("chain", iso.Name+" lists itself as parent")
			}
			if math.IsNaN(link.BranchingRatio) || link.BranchingRatio < 0 || link.BranchingRatio > 1 {
				return nil, core.NewParameterError("branching_ratio["+link.Parent+"->"+iso.Name+"]", link.BranchingRatio, "within [0,1]")
			}
			outflow[link.Parent] += link.BranchingRatio
		}
	}

	var warnings []core.Warning
	for _, iso := range c.Isotopes {
		if sum := outflow[iso.Name]; sum > 1+1e-9 {
			warnings = append(warnings, core.NewWarning(core.WarnBranchingOverflow, core.SeverityModerate, core.CategoryData,
				"branching ratios out of %s sum to %.4f (> 1)", iso.Name, sum))
		}
	}
	return warnings, nil
}

// Matrix builds the decay matrix Λ.
func (c ChainSpec) Matrix() (*mat.Dense, []core.Warning, error) {
	warnings, err := c.Validate()
	if err != nil {
		return nil, nil, err
	}
	n := len(c.Isotopes)
	lambda := mat.NewDense(n, n, nil)
	for i, iso := range c.Isotopes {
		lambda.Set(i, i, -iso.DecayConstant)
		for _, link := range iso.Parents {
			j, _ := c.Index(link.Parent)
			parentLambda := c.Isotopes[j].DecayConstant
			lambda.Set(i, j, lambda.At(i, j)+link.BranchingRatio*parentLambda)
		}
	}
	return lambda, warnings, nil
}

// InitialVector maps named initial populations onto matrix order. Unknown
// names are rejected.
func (c ChainSpec) InitialVector(initial map[string]float64) ([]float64, error) {
	n0 := make([]float64, len(c.Isotopes))
	for name, v := range initial {
		i, ok := c.Index(name)
		if !ok {
			return nil, core.NewInputError("initial", "unknown isotope "+name)
		}
		n0[i] = v
	}
	return n0, nil
}
