package route

import (
	"strings"

	"isoplan/domain/core"
)

// ReactionKind is the closed set of production reaction families.
type ReactionKind string

const (
	ReactionCapture         ReactionKind = "n,gamma"
	ReactionNP              ReactionKind = "n,p"
	ReactionNAlpha          ReactionKind = "n,alpha"
	ReactionN2N             ReactionKind = "n,2n"
	ReactionNNPrime         ReactionKind = "n,n'"
	ReactionChargedParticle ReactionKind = "charged-particle"
	ReactionGenerator       ReactionKind = "generator"
)

// reactionAliases maps every accepted spelling (after canonicalization) to
// its kind. Unicode and ASCII variants both resolve here.
var reactionAliases = map[string]ReactionKind{
	"n,gamma": ReactionCapture,
	"n,γ":     ReactionCapture,
	"n,g":     ReactionCapture,
	"capture": ReactionCapture,

	"n,p": ReactionNP,

	"n,alpha": ReactionNAlpha,
	"n,α":     ReactionNAlpha,
	"n,a":     ReactionNAlpha,

	"n,2n": ReactionN2N,

	"n,n'":      ReactionNNPrime,
	"n,n’":      ReactionNNPrime,
	"n,nprime":  ReactionNNPrime,
	"n,inl":     ReactionNNPrime,
	"inelastic": ReactionNNPrime,

	"p,n":              ReactionChargedParticle,
	"p,2n":             ReactionChargedParticle,
	"p,alpha":          ReactionChargedParticle,
	"p,α":              ReactionChargedParticle,
	"d,n":              ReactionChargedParticle,
	"d,2n":             ReactionChargedParticle,
	"alpha,n":          ReactionChargedParticle,
	"α,n":              ReactionChargedParticle,
	"alpha,2n":         ReactionChargedParticle,
	"α,2n":             ReactionChargedParticle,
	"charged":          ReactionChargedParticle,
	"charged-particle": ReactionChargedParticle,
	"cp":               ReactionChargedParticle,

	"generator": ReactionGenerator,
	"gen":       ReactionGenerator,
	"decay":     ReactionGenerator,
}

// NormalizeReaction maps a free-form reaction label such as "(n,γ)",
// "n, gamma" or "N,2N" onto a ReactionKind.
func NormalizeReaction(label string) (ReactionKind, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	key = strings.Trim(key, "()")
	key = strings.ReplaceAll(key, " ", "")
	if kind, ok := reactionAliases[key]; ok {
		return kind, nil
	}
	return "", core.NewInputError("reaction", "unrecognized reaction type "+label)
}

// UnmarshalText normalizes at the decoding boundary so registry files may use
// any accepted alias.
func (k *ReactionKind) UnmarshalText(text []byte) error {
	kind, err := NormalizeReaction(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Valid reports whether k is one of the declared kinds.
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionCapture, ReactionNP, ReactionNAlpha, ReactionN2N, ReactionNNPrime,
		ReactionChargedParticle, ReactionGenerator:
		return true
	}
	return false
}

// UsesThermalFlux is true for capture-driven routes, including generator
// parents produced by capture.
func (k ReactionKind) UsesThermalFlux() bool {
	return k == ReactionCapture || k == ReactionGenerator
}

// IsFastNeutron reports the fast-neutron threshold family.
func (k ReactionKind) IsFastNeutron() bool {
	switch k {
	case ReactionNP, ReactionNAlpha, ReactionN2N, ReactionNNPrime:
		return true
	}
	return false
}

// IsThresholdReaction reports reactions whose cross-section is gated by an
// energy threshold.
func (k ReactionKind) IsThresholdReaction() bool {
	return k.IsFastNeutron() || k == ReactionChargedParticle
}

// ScalingExponent is the exponent of the energy-scaled threshold model.
func (k ReactionKind) ScalingExponent() float64 {
	if k == ReactionN2N {
		return 2.0
	}
	return 1.5
}

func (k ReactionKind) String() string { return string(k) }
