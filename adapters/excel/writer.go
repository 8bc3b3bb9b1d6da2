package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"isoplan/adapters/registry"
	"isoplan/domain/verdict"
	"isoplan/ports"
)

var (
	resultHeaders = []interface{}{
		"evaluation_id", "route_id", "classification", "feasible", "impurity_risk",
		"reaction_rate_per_s", "activity_eob_bq", "delivered_activity_bq",
		"specific_activity_bq_per_g", "reasons", "warnings",
	}
	scoreHeaders = []interface{}{
		"route_id", "physics", "yield", "specific_activity", "impurity",
		"logistics", "regulatory", "total", "class",
	}
	routeHeaders = []interface{}{
		"id", "target", "product", "reaction", "threshold_mev", "cross_section_barns",
		"half_life_days", "chemically_separable", "carrier_added_acceptable", "impurities",
		"regulatory", "burnup_cross_section_barns", "category", "data_quality",
		"generator_parent", "generator_parent_half_life_days", "generator_branching_ratio", "notes",
	}
)

// ResultsWorkbook builds a workbook with a Results sheet and a Scores sheet.
// The caller owns the returned file and must close it.
func ResultsWorkbook(evaluations []ports.Evaluation) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(ScoresSheet); err != nil {
		f.Close()
		return nil, err
	}

	results := make([][]interface{}, 0, len(evaluations))
	scores := make([][]interface{}, 0, len(evaluations))
	for _, ev := range evaluations {
		r := ev.Result
		warnings := make([]string, 0, len(r.Warnings))
		for _, w := range r.Warnings {
			warnings = append(warnings, w.String())
		}
		results = append(results, []interface{}{
			string(r.EvaluationID), string(r.RouteID), string(r.Classification), r.Feasible, string(r.ImpurityRisk),
			optional(r.Physics.ReactionRate), optional(r.Physics.ActivityEOB), optional(r.Physics.DeliveredActivity),
			optional(r.Physics.SpecificActivity), strings.Join(r.Reasons, "\n"), strings.Join(warnings, "\n"),
		})
		s := ev.Score
		scores = append(scores, []interface{}{
			string(s.RouteID), s.Physics, s.Yield, s.SpecificActivity, s.Impurity,
			s.Logistics, s.Regulatory, s.Total, string(s.Class),
		})
	}

	if err := writeTable(f, ResultsSheet, resultHeaders, results); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeTable(f, ScoresSheet, scoreHeaders, scores); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteResults writes the results workbook to w.
func WriteResults(w io.Writer, evaluations []ports.Evaluation) error {
	f, err := ResultsWorkbook(evaluations)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

// SaveResults writes the results workbook to path.
func SaveResults(path string, evaluations []ports.Evaluation) error {
	f, err := ResultsWorkbook(evaluations)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// SaveRoutes writes records as a Routes sheet readable by DataReader.
func SaveRoutes(path string, records []registry.Record) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", RoutesSheet); err != nil {
		return err
	}
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{
			r.ID, r.Target, r.Product, r.Reaction, r.ThresholdMeV, r.CrossSectionBarns,
			r.HalfLifeDays, r.ChemicallySeparable, r.CarrierAddedAcceptable, strings.Join(r.Impurities, ImpuritySeparator),
			r.Regulatory, r.BurnupCrossSectionBarns, r.Category, r.DataQuality,
			r.GeneratorParent, r.GeneratorParentHalfLifeDays, r.GeneratorBranchingRatio, r.Notes,
		})
	}
	if err := writeTable(f, RoutesSheet, routeHeaders, rows); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func writeTable(f *excelize.File, sheet string, headers []interface{}, rows [][]interface{}) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

// optional renders a missing physics quantity as an empty cell.
func optional(p *float64) interface{} {
	if v, ok := verdict.Value(p); ok {
		return v
	}
	return ""
}
