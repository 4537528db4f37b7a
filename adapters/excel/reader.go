package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"abtest/domain/dataset"
	"abtest/internal"
	"abtest/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger}
}

// FileType returns "xlsx" or "csv"
func (r *DataReader) FileType() string {
	return r.fileType
}

// ReadSheet reads one sheet of a workbook. For CSV files the sheet name only
// labels the resulting table.
func (r *DataReader) ReadSheet(sheet string) (*dataset.Table, error) {
	r.logger.Debug("[DataReader] Reading %s file %s (sheet %q)", r.fileType, r.filePath, sheet)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows(sheet)
	}
	if err != nil {
		return nil, err
	}

	return r.processRows(sheet, rows)
}

// SheetNames lists the sheets of a workbook; a CSV file has none
func (r *DataReader) SheetNames() ([]string, error) {
	if r.fileType == "csv" {
		return nil, nil
	}
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open Excel file %s", r.filePath)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func (r *DataReader) readExcelRows(sheet string) ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open Excel file %s", r.filePath)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return nil, errors.NotFound(fmt.Sprintf("sheet %q in %s (have %s)",
			sheet, r.filePath, strings.Join(f.GetSheetList(), ", ")))
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q", sheet)
	}
	r.logger.Debug("[DataReader] Sheet %q read in %.2fms (%d rows)",
		sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open CSV file %s", r.filePath)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "failed to read CSV file %s", r.filePath))
	}
	return rows, nil
}

// processRows converts raw string rows into a Table, trimming cells and
// dropping fully blank trailing rows
func (r *DataReader) processRows(name string, rows [][]string) (*dataset.Table, error) {
	for len(rows) > 0 && isBlank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	if len(rows) < 2 {
		return nil, errors.InsufficientData("%s must have a header row and at least one data row", describeSource(r.fileType, name))
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]dataset.Row, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(dataset.Row, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Info("[DataReader] %s loaded (%d columns, %d rows)", describeSource(r.fileType, name), len(headers), len(dataRows))

	return &dataset.Table{
		Name:    name,
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func describeSource(fileType, name string) string {
	if fileType == "csv" {
		return fmt.Sprintf("CSV %q", name)
	}
	return fmt.Sprintf("sheet %q", name)
}
