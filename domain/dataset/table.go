package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"abtest/internal/errors"
)

// Row is one data row keyed by column header
type Row map[string]string

// Table is a sheet of raw cell values: a header row plus data rows.
type Table struct {
	Name    string
	Headers []string
	Rows    []Row
}

// Shape returns (rows, columns)
func (t *Table) Shape() (int, int) {
	return len(t.Rows), len(t.Headers)
}

// HasColumn reports whether a header with this exact name exists
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Column parses a column as float64 values. Empty cells are skipped and
// counted; any other non-numeric cell is an error naming its row.
func (t *Table) Column(name string) (values []float64, skipped int, err error) {
	if !t.HasColumn(name) {
		return nil, 0, errors.NotFound(fmt.Sprintf("column %q in %s", name, t.label()))
	}

	values = make([]float64, 0, len(t.Rows))
	for i, row := range t.Rows {
		cell := strings.TrimSpace(row[name])
		if cell == "" {
			skipped++
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			// +2: one for the header row, one for 1-based numbering
			return nil, 0, errors.InvalidInput(fmt.Sprintf("row %d column %q in %s: %q is not numeric", i+2, name, t.label(), cell))
		}
		values = append(values, v)
	}
	return values, skipped, nil
}

func (t *Table) label() string {
	if t.Name == "" {
		return "table"
	}
	return strconv.Quote(t.Name)
}
