package profiling

import (
	"abtest/internal/errors"

	"github.com/montanaflynn/stats"
)

// ColumnSummary is one row of a describe table
type ColumnSummary struct {
	Name   string
	Count  int
	Mean   float64
	StdDev float64 // sample standard deviation (n-1)
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// DistributionAnalyzer computes summary statistics for numeric columns
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// Summarize computes the describe row for a column. Quartiles are the
// medians of the lower and upper halves.
func (da *DistributionAnalyzer) Summarize(name string, data []float64) (ColumnSummary, error) {
	summary := ColumnSummary{Name: name, Count: len(data)}
	if len(data) == 0 {
		return summary, errors.InsufficientData("column %q has no numeric values", name)
	}

	var err error
	if summary.Mean, err = stats.Mean(data); err != nil {
		return summary, errors.Wrapf(err, "mean of %q", name)
	}
	if summary.Min, err = stats.Min(data); err != nil {
		return summary, errors.Wrapf(err, "min of %q", name)
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return summary, errors.Wrapf(err, "max of %q", name)
	}
	if summary.Median, err = stats.Median(data); err != nil {
		return summary, errors.Wrapf(err, "median of %q", name)
	}

	// A single observation has no spread and no interior quartiles.
	if len(data) == 1 {
		summary.Q25, summary.Q75 = summary.Median, summary.Median
		return summary, nil
	}

	if summary.StdDev, err = stats.StandardDeviationSample(data); err != nil {
		return summary, errors.Wrapf(err, "standard deviation of %q", name)
	}
	quartiles, err := stats.Quartile(data)
	if err != nil {
		return summary, errors.Wrapf(err, "quartiles of %q", name)
	}
	summary.Q25, summary.Q75 = quartiles.Q1, quartiles.Q3

	return summary, nil
}
