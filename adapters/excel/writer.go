package excel

import (
	"strconv"

	"abtest/domain/dataset"
	"abtest/internal/errors"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook writes each table to its own sheet, named after the table.
// Cells that parse as numbers are stored as numbers.
func WriteWorkbook(path string, tables ...*dataset.Table) error {
	if len(tables) == 0 {
		return errors.InvalidInput("no tables to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, table := range tables {
		if table.Name == "" {
			return errors.InvalidInput("table " + strconv.Itoa(i+1) + " has no sheet name")
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", table.Name); err != nil {
				return errors.Wrapf(err, "failed to name sheet %q", table.Name)
			}
		} else if _, err := f.NewSheet(table.Name); err != nil {
			return errors.Wrapf(err, "failed to create sheet %q", table.Name)
		}

		if err := writeTable(f, table); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save workbook %s", path)
	}
	return nil
}

func writeTable(f *excelize.File, table *dataset.Table) error {
	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(table.Name, "A1", &header); err != nil {
		return errors.Wrapf(err, "failed to write header of %q", table.Name)
	}

	for r, row := range table.Rows {
		values := make([]interface{}, len(table.Headers))
		for c, h := range table.Headers {
			cell := row[h]
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				values[c] = v
			} else {
				values[c] = cell
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return errors.Wrap(err, "invalid cell reference")
		}
		if err := f.SetSheetRow(table.Name, cell, &values); err != nil {
			return errors.Wrapf(err, "failed to write row %d of %q", r+2, table.Name)
		}
	}
	return nil
}
