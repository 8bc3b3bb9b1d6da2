package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"isoplan/domain/core"
	"isoplan/domain/priority"
	"isoplan/domain/verdict"
	"isoplan/ports"
)

func sampleEvaluation() ports.Evaluation {
	activity := 219e9
	return ports.Evaluation{
		Result: verdict.Result{
			EvaluationID:   "ev-1",
			RouteID:        "lu177-direct",
			Application:    "medical",
			Feasible:       true,
			Classification: verdict.FeasibleWithConstraints,
			Reasons:        []string{"long-lived same-element impurity Lu-177m"},
			Warnings: []core.Warning{
				core.NewWarning(core.WarnSameElementImpurity, core.SeverityHigh, core.CategoryImpurity, "Lu-177m is the same element"),
			},
			ImpurityRisk: verdict.RiskHigh,
			Traps: []verdict.ImpurityTrap{
				{Type: verdict.TrapSameElement, Severity: verdict.TrapHigh, Isotope: "Lu-177m", Message: "inseparable"},
			},
			Physics:     verdict.Physics{ActivityEOB: &activity},
			EvaluatedAt: core.Now(),
		},
		Score: priority.ScoreBreakdown{RouteID: "lu177-direct", Physics: 3, Total: 3.4, Class: priority.Conditional},
	}
}

func TestMarkdownSections(t *testing.T) {
	md := Markdown(sampleEvaluation())

	for _, want := range []string{
		"# Route lu177-direct",
		"Feasible with constraints",
		"## Reasons",
		"## Physics",
		"| Activity at EOB | 2.19e+11 Bq |",
		"## Score",
		"| physics | 3.00 |",
		"## Impurities",
		"### impurity",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "## Uncertainty")
	assert.NotContains(t, md, "Reaction rate")
}

func TestHTML(t *testing.T) {
	out := string(HTML(Markdown(sampleEvaluation())))
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<table>")
	assert.True(t, strings.Contains(out, "Lu-177m"))
}

func TestSummary(t *testing.T) {
	ev := sampleEvaluation()
	noActivity := ev
	noActivity.Result.Physics = verdict.Physics{}

	out := Summary([]ports.Evaluation{ev, noActivity})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[2], "219 GBq")
	assert.Contains(t, lines[3], "n/a")
}
