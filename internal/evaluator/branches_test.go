package evaluator

import (
	"context"
	"testing"

	"isoplan/adapters/nucleardata"
	"isoplan/domain/core"
	"isoplan/domain/route"
	"isoplan/domain/verdict"
	"isoplan/ports"
)

// scaledImpurityData multiplies every tabulated impurity cross-section.
type scaledImpurityData struct {
	ports.NuclearDataPort
	factor float64
}

func (s scaledImpurityData) ImpurityCrossSection(key string) (float64, bool) {
	v, ok := s.NuclearDataPort.ImpurityCrossSection(key)
	return v * s.factor, ok
}

func warningSeverity(res verdict.Result, code string) (core.Severity, bool) {
	for _, w := range res.Warnings {
		if w.Code == code {
			return w.Severity, true
		}
	}
	return "", false
}

func fastConditions() route.Conditions {
	return route.Conditions{
		Flux:               1e14,
		FastFlux:           1e14,
		NeutronEnergyMeV:   14.1,
		TargetMassGrams:    10,
		Enrichment:         0.9,
		IrradiationSeconds: 7 * core.SecondsPerDay,
		Application:        route.ApplicationResearch,
	}
}

func chlorine36() route.Descriptor {
	return route.Descriptor{
		ID: "cl36-capture", Target: "Cl-35", Product: "Cl-36", Reaction: route.ReactionCapture,
		CrossSectionBarns: 43.6, HalfLifeDays: 1.099e8,
		ChemicallySeparable: true, CarrierAddedAcceptable: false, Regulatory: route.RegulatoryStandard,
	}
}

func TestEvaluateBranches(t *testing.T) {
	tests := []struct {
		name       string
		route      func(t *testing.T) route.Descriptor
		conditions func() route.Conditions
		data       ports.NuclearDataPort

		class     verdict.Classification
		risk      verdict.RiskLevel
		reason    string
		trap      verdict.TrapType
		warning   string
		severity  core.Severity
		noWarning string
	}{
		{
			name:  "zero enrichment falls back to natural abundance",
			route: func(t *testing.T) route.Descriptor { return referenceRoute(t, "lu177-direct") },
			conditions: func() route.Conditions {
				c := lu177Conditions()
				c.Enrichment = 0
				return c
			},
			warning:  core.WarnNaturalEnrichment,
			severity: core.SeverityInfo,
		},
		{
			name:       "explicit enrichment is used as given",
			route:      func(t *testing.T) route.Descriptor { return referenceRoute(t, "lu177-direct") },
			conditions: lu177Conditions,
			noWarning:  core.WarnNaturalEnrichment,
		},
		{
			name: "stable impurity accumulates after EOB",
			route: func(t *testing.T) route.Descriptor {
				d := referenceRoute(t, "lu177-direct")
				d.Impurities = []route.ImpurityRisk{{Isotope: "Yb-176"}}
				return d
			},
			conditions: lu177Conditions,
			risk:       verdict.RiskHigh,
			trap:       verdict.TrapStableAccumulate,
			warning:    core.WarnImpurityTrap,
			severity:   core.SeverityHigh,
		},
		{
			name:       "impurity above one percent of product is high",
			route:      func(t *testing.T) route.Descriptor { return referenceRoute(t, "lu177-direct") },
			conditions: lu177Conditions,
			data:       scaledImpurityData{NuclearDataPort: nucleardata.Builtin(), factor: 400},
			risk:       verdict.RiskHigh,
			warning:    core.WarnImpurityActivity,
			severity:   core.SeverityHigh,
		},
		{
			name:       "impurity between 0.1 and 1 percent is medium",
			route:      func(t *testing.T) route.Descriptor { return referenceRoute(t, "lu177-direct") },
			conditions: lu177Conditions,
			data:       scaledImpurityData{NuclearDataPort: nucleardata.Builtin(), factor: 40},
			warning:    core.WarnImpurityActivity,
			severity:   core.SeverityModerate,
		},
		{
			name:       "impurity below 0.1 percent raises no activity warning",
			route:      func(t *testing.T) route.Descriptor { return referenceRoute(t, "lu177-direct") },
			conditions: lu177Conditions,
			noWarning:  core.WarnImpurityActivity,
		},
		{
			name: "same-element impurity alone is high risk",
			route: func(t *testing.T) route.Descriptor {
				d := referenceRoute(t, "cu67-np")
				d.CarrierAddedAcceptable = true
				return d
			},
			conditions: fastConditions,
			risk:       verdict.RiskHigh,
			trap:       verdict.TrapSameElement,
		},
		{
			name:  "n.c.a. product below 1 TBq/g is downgraded",
			route: func(*testing.T) route.Descriptor { return chlorine36() },
			conditions: func() route.Conditions {
				return route.Conditions{
					Flux: 1e14, TargetMassGrams: 10, Enrichment: 0.76,
					IrradiationSeconds: 30 * core.SecondsPerDay, Application: route.ApplicationResearch,
				}
			},
			class:  verdict.FeasibleWithConstraints,
			reason: "n.c.a.",
		},
		{
			name:  "scaled cross-section vanishes at the threshold",
			route: func(t *testing.T) route.Descriptor { return referenceRoute(t, "mo99-n2n") },
			conditions: func() route.Conditions {
				c := lu177Conditions()
				c.NeutronEnergyMeV = 8.3
				c.ThresholdModel = route.ThresholdEnergyScaled
				return c
			},
			class:  verdict.NotRecommended,
			reason: "cross-section is zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.data
			if data == nil {
				data = nucleardata.Builtin()
			}
			res, err := New(data, Options{}).Evaluate(context.Background(), tt.route(t), tt.conditions())
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}

			if tt.class != "" && res.Classification != tt.class {
				t.Errorf("Classification = %q, want %q (reasons %v)", res.Classification, tt.class, res.Reasons)
			}
			if tt.risk != "" && res.ImpurityRisk != tt.risk {
				t.Errorf("ImpurityRisk = %q, want %q", res.ImpurityRisk, tt.risk)
			}
			if tt.reason != "" && !res.HasReasonContaining(tt.reason) {
				t.Errorf("Reasons = %v, want one containing %q", res.Reasons, tt.reason)
			}
			if tt.trap != "" && !hasTrap(res, tt.trap) {
				t.Errorf("Traps = %v, want %q", res.Traps, tt.trap)
			}
			if tt.warning != "" {
				sev, ok := warningSeverity(res, tt.warning)
				if !ok {
					t.Errorf("missing warning %q in %v", tt.warning, res.Warnings)
				} else if tt.severity != "" && sev != tt.severity {
					t.Errorf("warning %q severity = %q, want %q", tt.warning, sev, tt.severity)
				}
			}
			if tt.noWarning != "" && hasWarning(res, tt.noWarning) {
				t.Errorf("unexpected warning %q", tt.noWarning)
			}
			if res.Classification != verdict.NotRecommended {
				if atoms, ok := verdict.Value(res.Physics.TargetAtoms); !ok || atoms <= 0 {
					t.Errorf("TargetAtoms = %v, want positive", res.Physics.TargetAtoms)
				}
			}
		})
	}
}

func TestScaledThresholdZeroCrossSection(t *testing.T) {
	c := lu177Conditions()
	c.NeutronEnergyMeV = 8.3
	c.ThresholdModel = route.ThresholdEnergyScaled

	res, err := New(nucleardata.Builtin(), Options{}).Evaluate(context.Background(), referenceRoute(t, "mo99-n2n"), c)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if sigma, ok := verdict.Value(res.Physics.EffectiveCrossSection); !ok || sigma != 0 {
		t.Errorf("EffectiveCrossSection = %v, want 0", res.Physics.EffectiveCrossSection)
	}
	if res.Physics.ReactionRate != nil {
		t.Errorf("ReactionRate = %v, want nil after a terminal gate", *res.Physics.ReactionRate)
	}
}

func thinLutetium() route.Conditions {
	c := lu177Conditions()
	c.TargetDensity = 9.84
	c.TargetThicknessCm = 0.01
	return c
}

func TestProductBurnup(t *testing.T) {
	tests := []struct {
		name        string
		id          core.RouteID
		barns       float64
		conditions  route.Conditions
		wantRate    bool
		wantWarning bool
	}{
		{
			name:       "direct route loses product to burn-up",
			id:         "lu177-direct",
			barns:      1000,
			conditions: thinLutetium(),
			wantRate:   true,
		},
		{
			name:        "burn-up faster than decay is flagged",
			id:          "lu177-direct",
			barns:       1e5,
			conditions:  thinLutetium(),
			wantRate:    true,
			wantWarning: true,
		},
		{
			name:  "generator parent is not burned with the product cross-section",
			id:    "lu177-indirect",
			barns: 1000,
			conditions: route.Conditions{
				Flux: 1e14, TargetMassGrams: 0.1, Enrichment: 0.97,
				TargetDensity: 6.9, TargetThicknessCm: 0.01,
				IrradiationSeconds: 2 * core.SecondsPerDay, IngrowthSeconds: DefaultIngrowthSeconds,
				Application: route.ApplicationResearch,
			},
			wantRate: false,
		},
	}

	ev := New(nucleardata.Builtin(), Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := referenceRoute(t, tt.id)
			bare, err := ev.Evaluate(context.Background(), d, tt.conditions)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}

			d.BurnupCrossSectionBarns = tt.barns
			burned, err := ev.Evaluate(context.Background(), d, tt.conditions)
			if err != nil {
				t.Fatalf("Evaluate() with burn-up error = %v", err)
			}

			before := mustValue(t, bare.Physics.ActivityEOB)
			after := mustValue(t, burned.Physics.ActivityEOB)
			if !tt.wantRate {
				if burned.Physics.BurnupRate != nil {
					t.Errorf("BurnupRate = %g, want nil", *burned.Physics.BurnupRate)
				}
				if after != before {
					t.Errorf("ActivityEOB = %g, want unchanged %g", after, before)
				}
				return
			}

			rate, ok := verdict.Value(burned.Physics.BurnupRate)
			if !ok || rate <= 0 {
				t.Fatalf("BurnupRate = %v, want positive", burned.Physics.BurnupRate)
			}
			if after >= before {
				t.Errorf("ActivityEOB with burn-up = %g, want below %g", after, before)
			}
			if got := hasWarning(burned, core.WarnBurnupDominant); got != tt.wantWarning {
				t.Errorf("burn-up dominant warning = %v, want %v", got, tt.wantWarning)
			}
			if bare.Physics.BurnupRate != nil {
				t.Errorf("BurnupRate without a burn-up cross-section = %g, want nil", *bare.Physics.BurnupRate)
			}
		})
	}
}
