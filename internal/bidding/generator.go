package bidding

import (
	"encoding/csv"
	"math"
	"math/rand"
	"os"
	"strconv"

	"abtest/adapters/excel"
	"abtest/domain/dataset"
	"abtest/internal/errors"
)

// Campaign columns, in sheet order
var Headers = []string{"Impression", "Click", "Purchase", "Earning"}

// Sheet names used for the generated groups
const (
	ControlSheet = "Control Group"
	TestSheet    = "Test Group"
)

// Metric is a normal distribution for one campaign column
type Metric struct {
	Mean   float64
	StdDev float64
}

// GroupProfile shapes one group of the campaign
type GroupProfile struct {
	Impression Metric
	Click      Metric
	Purchase   Metric
	Earning    Metric
}

// Config controls synthetic campaign generation.
//
// The defaults mirror the maximum-bidding (control) versus average-bidding
// (test) campaign: about 40 days per group with purchase means near 550.9
// and 582.1.
type Config struct {
	Rows    int
	Seed    int64
	Control GroupProfile
	Test    GroupProfile
}

func DefaultConfig() Config {
	return Config{
		Rows: 40,
		Seed: 42,
		Control: GroupProfile{
			Impression: Metric{Mean: 101711.45, StdDev: 20302.16},
			Click:      Metric{Mean: 5100.66, StdDev: 1329.99},
			Purchase:   Metric{Mean: 550.89, StdDev: 134.11},
			Earning:    Metric{Mean: 1908.57, StdDev: 302.92},
		},
		Test: GroupProfile{
			Impression: Metric{Mean: 120512.41, StdDev: 18807.45},
			Click:      Metric{Mean: 3967.55, StdDev: 923.10},
			Purchase:   Metric{Mean: 582.11, StdDev: 161.15},
			Earning:    Metric{Mean: 2514.89, StdDev: 282.73},
		},
	}
}

// Generate draws the control and test groups. The same seed always yields the
// same tables. Values are rounded to two decimals and never negative.
func Generate(cfg Config) (control, test *dataset.Table, err error) {
	if cfg.Rows <= 0 {
		return nil, nil, errors.InvalidInput("rows must be > 0")
	}
	for _, p := range []GroupProfile{cfg.Control, cfg.Test} {
		for _, m := range []Metric{p.Impression, p.Click, p.Purchase, p.Earning} {
			if m.StdDev < 0 {
				return nil, nil, errors.InvalidInput("standard deviation must be >= 0")
			}
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	control = generateGroup(rng, ControlSheet, cfg.Rows, cfg.Control)
	test = generateGroup(rng, TestSheet, cfg.Rows, cfg.Test)
	return control, test, nil
}

func generateGroup(rng *rand.Rand, name string, rows int, p GroupProfile) *dataset.Table {
	metrics := []Metric{p.Impression, p.Click, p.Purchase, p.Earning}

	table := &dataset.Table{
		Name:    name,
		Headers: append([]string(nil), Headers...),
		Rows:    make([]dataset.Row, rows),
	}
	for r := 0; r < rows; r++ {
		row := make(dataset.Row, len(Headers))
		for c, h := range Headers {
			x := metrics[c].Mean + rng.NormFloat64()*metrics[c].StdDev
			row[h] = fToStr(math.Max(x, 0), 2)
		}
		table.Rows[r] = row
	}
	return table
}

// WriteXLSX writes both groups to one workbook, one sheet per group
func WriteXLSX(path string, control, test *dataset.Table) error {
	return excel.WriteWorkbook(path, control, test)
}

// WriteCSV writes one group to a CSV file
func WriteCSV(path string, table *dataset.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(table.Headers); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	record := make([]string, len(table.Headers))
	for _, row := range table.Rows {
		for i, h := range table.Headers {
			record[i] = row[h]
		}
		if err := w.Write(record); err != nil {
			return errors.Wrap(err, "failed to write row")
		}
	}
	w.Flush()
	return w.Error()
}

func fToStr(x float64, decimals int) string {
	p := math.Pow10(decimals)
	x = math.Round(x*p) / p
	return strconv.FormatFloat(x, 'f', decimals, 64)
}
