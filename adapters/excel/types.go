package excel

// RawRowData represents a row of raw sheet data keyed by header
type RawRowData map[string]string

// SheetData represents one sheet read as strings
type SheetData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Sheet names used by the results workbook
const (
	RoutesSheet  = "Routes"
	ResultsSheet = "Results"
	ScoresSheet  = "Scores"
)

// ImpuritySeparator splits the impurities cell of a route row.
const ImpuritySeparator = ";"
