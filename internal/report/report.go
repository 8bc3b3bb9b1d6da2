// Package report renders evaluations as markdown and HTML.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"isoplan/domain/core"
	"isoplan/domain/priority"
	"isoplan/domain/verdict"
	"isoplan/internal/kinetics"
	"isoplan/ports"
)

// Markdown renders one evaluation.
func Markdown(ev ports.Evaluation) string {
	res := ev.Result
	var b strings.Builder

	fmt.Fprintf(&b, "# Route %s\n\n", res.RouteID)
	fmt.Fprintf(&b, "- **Classification:** %s\n", res.Classification)
	fmt.Fprintf(&b, "- **Priority:** %s (%.2f / 5)\n", ev.Score.Class, ev.Score.Total)
	fmt.Fprintf(&b, "- **Impurity risk:** %s\n", res.ImpurityRisk)
	if res.Application != "" {
		fmt.Fprintf(&b, "- **Application:** %s\n", res.Application)
	}
	fmt.Fprintf(&b, "- **Evaluation:** `%s` at %s\n\n", res.EvaluationID, res.EvaluatedAt.Time().Format("2006-01-02 15:04:05 MST"))

	if len(res.Reasons) > 0 {
		b.WriteString("## Reasons\n\n")
		for _, r := range res.Reasons {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	writePhysics(&b, res.Physics)
	writeScore(&b, ev.Score)

	if res.Uncertainty != nil {
		u := res.Uncertainty
		b.WriteString("## Uncertainty\n\n")
		fmt.Fprintf(&b, "Combined relative uncertainty (RSS): %.1f%%\n\n", 100*u.RelativeRSS)
		if u.Samples > 0 {
			fmt.Fprintf(&b, "Monte Carlo, %d samples: mean %s, P5 %s, P50 %s, P95 %s\n\n",
				u.Samples, gbq(u.MeanBq), gbq(u.P5Bq), gbq(u.P50Bq), gbq(u.P95Bq))
		}
	}

	if len(res.Traps) > 0 || len(res.Impurities) > 0 {
		b.WriteString("## Impurities\n\n")
		for _, tr := range res.Traps {
			fmt.Fprintf(&b, "- **%s** (%s) %s: %s\n", tr.Isotope, tr.Severity, tr.Type, tr.Message)
		}
		if len(res.Impurities) > 0 {
			b.WriteString("\n| Isotope | Activity | Fraction of product |\n|---|---|---|\n")
			for _, a := range res.Impurities {
				fmt.Fprintf(&b, "| %s | %.3g Bq | %.3g%% |\n", a.Isotope, a.ActivityBq, 100*a.FractionOfProd)
			}
		}
		b.WriteString("\n")
	}

	writeWarnings(&b, res.Warnings)
	return b.String()
}

func writePhysics(b *strings.Builder, p verdict.Physics) {
	rows := []struct {
		label string
		value *float64
		unit  string
	}{
		{"Decay constant", p.DecayConstant, "1/s"},
		{"Saturation factor", p.SaturationFactor, ""},
		{"Target atoms", p.TargetAtoms, ""},
		{"Effective cross-section", p.EffectiveCrossSection, "b"},
		{"Flux used", p.FluxUsed, "n/cm²/s"},
		{"Self-shielding", p.SelfShielding, ""},
		{"Burn-up rate", p.BurnupRate, "1/s"},
		{"Reaction rate", p.ReactionRate, "1/s"},
		{"Atoms at EOB", p.AtomsAtEOB, ""},
		{"Activity at EOB", p.ActivityEOB, "Bq"},
		{"Delivered activity", p.DeliveredActivity, "Bq"},
		{"Specific activity", p.SpecificActivity, "Bq/g"},
		{"Carrier-free specific activity", p.MaxSpecificActivity, "Bq/g"},
	}
	var lines []string
	for _, r := range rows {
		if v, ok := verdict.Value(r.value); ok {
			lines = append(lines, fmt.Sprintf("| %s | %.4g %s |", r.label, v, r.unit))
		}
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("## Physics\n\n| Quantity | Value |\n|---|---|\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
}

func writeScore(b *strings.Builder, s priority.ScoreBreakdown) {
	b.WriteString("## Score\n\n| Category | Score |\n|---|---|\n")
	cats := s.Categories()
	for i, name := range priority.CategoryNames {
		fmt.Fprintf(b, "| %s | %.2f |\n", name, cats[i])
	}
	fmt.Fprintf(b, "| **total** | **%.2f** |\n\n", s.Total)
}

func writeWarnings(b *strings.Builder, ws []core.Warning) {
	if len(ws) == 0 {
		return
	}
	byCategory := make(map[core.WarningCategory][]core.Warning)
	for _, w := range ws {
		byCategory[w.Category] = append(byCategory[w.Category], w)
	}
	cats := make([]string, 0, len(byCategory))
	for c := range byCategory {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)

	b.WriteString("## Warnings\n\n")
	for _, c := range cats {
		fmt.Fprintf(b, "### %s\n\n", c)
		for _, w := range byCategory[core.WarningCategory(c)] {
			fmt.Fprintf(b, "- _%s_ %s\n", w.Severity, w.Message)
		}
		b.WriteString("\n")
	}
}

func gbq(bq float64) string {
	return fmt.Sprintf("%.3g GBq", bq/kinetics.BqPerGBq)
}

// HTML renders markdown to a standalone HTML fragment.
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.ToHTML([]byte(md), p, renderer)
}

// Summary renders a table of evaluations, one row each.
func Summary(evs []ports.Evaluation) string {
	var b strings.Builder
	b.WriteString("| Route | Classification | Priority | Total | Impurity risk | EOB activity |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, ev := range evs {
		activity := "n/a"
		if v, ok := verdict.Value(ev.Result.Physics.ActivityEOB); ok {
			activity = gbq(v)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %.2f | %s | %s |\n",
			ev.Result.RouteID, ev.Result.Classification, ev.Score.Class, ev.Score.Total, ev.Result.ImpurityRisk, activity)
	}
	return b.String()
}
