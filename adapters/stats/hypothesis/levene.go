package hypothesis

import (
	"math"

	"abtest/domain/stats"
	"abtest/internal"
	"abtest/internal/errors"

	mfstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Levene tests two samples for equal variances using absolute deviations
// from each group's median (the Brown-Forsythe form), which keeps the test
// robust when the samples are not normal.
type Levene struct {
	logger *internal.Logger
}

// NewLevene creates a Levene variance homogeneity test
func NewLevene(logger *internal.Logger) *Levene {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Levene{logger: logger}
}

// Name returns the test name
func (l *Levene) Name() string {
	return "levene"
}

// Test compares the spread of a and b. A p-value below Alpha marks the variances as heterogeneous.
func (l *Levene) Test(a, b []float64) (stats.CheckResult, error) {
	w, p, err := levene(a, b)
	if err != nil {
		return stats.CheckResult{}, err
	}

	l.logger.Debug("[Levene] n1=%d n2=%d W=%.5f p=%.5f", len(a), len(b), w, p)
	return stats.NewCheckResult(stats.CheckVariance, l.Name(), w, p), nil
}

func levene(groups ...[]float64) (w, p float64, err error) {
	k := len(groups)
	if k < 2 {
		return 0, 0, errors.InsufficientData("levene needs at least 2 groups, got %d", k)
	}

	deviations := make([][]float64, k)
	groupMeans := make([]float64, k)
	total := 0
	for i, g := range groups {
		if len(g) < 2 {
			return 0, 0, errors.InsufficientData("levene needs at least 2 observations per group, group %d has %d", i+1, len(g))
		}
		if floats.HasNaN(g) {
			return 0, 0, errors.InvalidInput("levene input contains NaN")
		}

		median, err := mfstats.Median(g)
		if err != nil {
			return 0, 0, errors.Wrapf(err, "median of group %d", i+1)
		}

		z := make([]float64, len(g))
		for j, v := range g {
			z[j] = math.Abs(v - median)
		}
		deviations[i] = z
		groupMeans[i] = stat.Mean(z, nil)
		total += len(g)
	}

	grandMean := 0.0
	for i, z := range deviations {
		grandMean += groupMeans[i] * float64(len(z))
	}
	grandMean /= float64(total)

	between, within := 0.0, 0.0
	for i, z := range deviations {
		d := groupMeans[i] - grandMean
		between += float64(len(z)) * d * d
		for _, v := range z {
			within += (v - groupMeans[i]) * (v - groupMeans[i])
		}
	}
	if within == 0 {
		return 0, 0, errors.DegenerateSample("levene input has no within-group dispersion")
	}

	df1 := float64(k - 1)
	df2 := float64(total - k)
	w = (df2 / df1) * between / within

	fDist := distuv.F{D1: df1, D2: df2}
	return w, fDist.Survival(w), nil
}
