package evaluator

import "isoplan/domain/route"

// ViabilityTier holds the activity cutoffs (GBq) for one application.
// At or above Viable is clean; [Marginal, Viable) and [NotViable, Marginal)
// downgrade; below NotViable is terminal.
type ViabilityTier struct {
	Viable    float64
	Marginal  float64
	NotViable float64
}

var viabilityTiers = map[route.Application]ViabilityTier{
	route.ApplicationMedical:    {Viable: 10, Marginal: 1, NotViable: 0.1},
	route.ApplicationIndustrial: {Viable: 100, Marginal: 10, NotViable: 1},
	route.ApplicationResearch:   {Viable: 1, Marginal: 0.1, NotViable: 0.001},
}

// TierFor returns the cutoffs of an application, medical when unknown.
func TierFor(app route.Application) ViabilityTier {
	if t, ok := viabilityTiers[app]; ok {
		return t
	}
	return viabilityTiers[route.ApplicationMedical]
}

type viability int

const (
	viable viability = iota
	marginal
	insufficient
	notViable
)

func (t ViabilityTier) classify(gbq float64) viability {
	switch {
	case gbq >= t.Viable:
		return viable
	case gbq >= t.Marginal:
		return marginal
	case gbq >= t.NotViable:
		return insufficient
	default:
		return notViable
	}
}
