package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"isoplan/adapters/registry"
)

// DataReader reads route tables from xlsx or csv files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader; the file type follows the extension
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData reads the route sheet into structured format
func (r *DataReader) ReadData() (*SheetData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads the Routes sheet, or the first sheet when absent
func (r *DataReader) readExcelData() (*SheetData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]
	if slices.Contains(sheets, RoutesSheet) {
		sheet = RoutesSheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}
	return r.processRows(rows)
}

func (r *DataReader) readCSVData() (*SheetData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}
	return r.processRows(rows)
}

// processRows converts raw string rows into SheetData; headers are
// lower-cased so column lookup is case-insensitive
func (r *DataReader) processRows(rows [][]string) (*SheetData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.ToLower(strings.TrimSpace(header))
	}

	var dataRows []RawRowData
	for i := 1; i < len(rows); i++ {
		rowData := make(RawRowData)
		empty := true
		for j, cell := range rows[i] {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
				if rowData[headers[j]] != "" {
					empty = false
				}
			}
		}
		if !empty {
			dataRows = append(dataRows, rowData)
		}
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &SheetData{Headers: headers, Rows: dataRows}, nil
}

// ReadRecords reads and decodes every route row
func (r *DataReader) ReadRecords() ([]registry.Record, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	for _, required := range []string{"id", "target", "product", "reaction", "half_life_days"} {
		if !slices.Contains(data.Headers, required) {
			return nil, fmt.Errorf("route sheet is missing column %q", required)
		}
	}

	records := make([]registry.Record, 0, len(data.Rows))
	for i, row := range data.Rows {
		rec, err := recordFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadRegistry reads a route workbook into a memory registry
func LoadRegistry(path string) (*registry.Memory, error) {
	records, err := NewDataReader(path).ReadRecords()
	if err != nil {
		return nil, err
	}
	reg, _ := registry.NewMemory()
	for _, rec := range records {
		d, err := rec.Descriptor()
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", rec.ID, err)
		}
		if err := reg.Add(d); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func recordFromRow(row RawRowData) (registry.Record, error) {
	var err error
	num := func(col string) float64 {
		v := row[col]
		if v == "" || err != nil {
			return 0
		}
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			err = fmt.Errorf("column %s: %q is not a number", col, v)
		}
		return f
	}
	flag := func(col string) bool {
		switch strings.ToLower(row[col]) {
		case "true", "yes", "y", "1", "x":
			return true
		}
		return false
	}

	rec := registry.Record{
		ID:                          row["id"],
		Target:                      row["target"],
		Product:                     row["product"],
		Reaction:                    row["reaction"],
		ThresholdMeV:                num("threshold_mev"),
		CrossSectionBarns:           num("cross_section_barns"),
		HalfLifeDays:                num("half_life_days"),
		ChemicallySeparable:         flag("chemically_separable"),
		CarrierAddedAcceptable:      flag("carrier_added_acceptable"),
		Regulatory:                  row["regulatory"],
		BurnupCrossSectionBarns:     num("burnup_cross_section_barns"),
		Category:                    row["category"],
		DataQuality:                 row["data_quality"],
		GeneratorParent:             row["generator_parent"],
		GeneratorParentHalfLifeDays: num("generator_parent_half_life_days"),
		GeneratorBranchingRatio:     num("generator_branching_ratio"),
		Notes:                       row["notes"],
	}
	if cell := row["impurities"]; cell != "" {
		rec.Impurities = strings.Split(cell, ImpuritySeparator)
	}
	return rec, err
}
