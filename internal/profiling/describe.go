package profiling

import (
	"strconv"
	"strings"

	"abtest/domain/dataset"
)

// Column types reported for a table
const (
	TypeInt64   = "int64"
	TypeFloat64 = "float64"
	TypeObject  = "object"
)

// ColumnInfo describes one column's inferred type and missing values
type ColumnInfo struct {
	Name    string
	Type    string
	NonNull int
	Missing int
}

// TableSummary is the overview printed before testing: first and last rows,
// column types, shape, missing values and a describe table for numeric columns.
type TableSummary struct {
	Name    string
	Rows    int
	Cols    int
	Head    []dataset.Row
	Tail    []dataset.Row
	Columns []ColumnInfo
	Numeric []ColumnSummary
}

// Describe summarises a table. maxRows bounds the head and tail excerpts.
func Describe(table *dataset.Table, maxRows int) (*TableSummary, error) {
	rows, cols := table.Shape()
	summary := &TableSummary{
		Name: table.Name,
		Rows: rows,
		Cols: cols,
		Head: head(table.Rows, maxRows),
		Tail: tail(table.Rows, maxRows),
	}

	analyzer := NewDistributionAnalyzer()
	for _, name := range table.Headers {
		info := inspectColumn(table, name)
		summary.Columns = append(summary.Columns, info)

		if info.Type == TypeObject || info.NonNull == 0 {
			continue
		}
		values, _, err := table.Column(name)
		if err != nil {
			return nil, err
		}
		colSummary, err := analyzer.Summarize(name, values)
		if err != nil {
			return nil, err
		}
		summary.Numeric = append(summary.Numeric, colSummary)
	}

	return summary, nil
}

func inspectColumn(table *dataset.Table, name string) ColumnInfo {
	info := ColumnInfo{Name: name, Type: TypeInt64}
	for _, row := range table.Rows {
		cell := strings.TrimSpace(row[name])
		if cell == "" {
			info.Missing++
			continue
		}
		info.NonNull++

		if info.Type == TypeObject {
			continue
		}
		if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			info.Type = TypeFloat64
			continue
		}
		info.Type = TypeObject
	}
	if info.NonNull == 0 {
		info.Type = TypeObject
	}
	return info
}

func head(rows []dataset.Row, n int) []dataset.Row {
	if n > len(rows) {
		n = len(rows)
	}
	return rows[:n]
}

func tail(rows []dataset.Row, n int) []dataset.Row {
	if n > len(rows) {
		n = len(rows)
	}
	return rows[len(rows)-n:]
}
