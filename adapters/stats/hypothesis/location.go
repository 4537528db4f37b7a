package hypothesis

import (
	stderrors "errors"

	"abtest/domain/stats"
	"abtest/internal/errors"

	mstats "github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat"
)

// StudentT is the two-sample independent t-test with pooled variance.
type StudentT struct{}

// NewStudentT creates a pooled-variance t-test
func NewStudentT() *StudentT {
	return &StudentT{}
}

// Kind identifies the test
func (t *StudentT) Kind() stats.TestKind {
	return stats.TestStudentT
}

// Compare runs a two-sided test of equal means. The statistic is t for a minus b.
func (t *StudentT) Compare(a, b []float64) (stats.Verdict, error) {
	if len(a) < 2 || len(b) < 2 {
		return stats.Verdict{}, errors.InsufficientData("t-test needs at least 2 observations per sample, got %d and %d", len(a), len(b))
	}
	if stat.Variance(a, nil) == 0 && stat.Variance(b, nil) == 0 {
		return stats.Verdict{}, errors.DegenerateSample("t-test: both samples have zero variance")
	}

	res, err := mstats.TwoSampleTTest(mstats.Sample{Xs: a}, mstats.Sample{Xs: b}, mstats.LocationDiffers)
	if err != nil {
		return stats.Verdict{}, translateTestError(err, "t-test")
	}
	return stats.NewVerdict(stats.TestStudentT, res.T, res.P), nil
}

// MannWhitneyU is the two-sample rank-sum test.
type MannWhitneyU struct{}

// NewMannWhitneyU creates a Mann-Whitney U test
func NewMannWhitneyU() *MannWhitneyU {
	return &MannWhitneyU{}
}

// Kind identifies the test
func (u *MannWhitneyU) Kind() stats.TestKind {
	return stats.TestMannWhitneyU
}

// Compare runs a two-sided rank-sum test. The statistic is U for the first
// sample, counting ties as one half.
func (u *MannWhitneyU) Compare(a, b []float64) (stats.Verdict, error) {
	if len(a) == 0 || len(b) == 0 {
		return stats.Verdict{}, errors.InsufficientData("mann-whitney u needs non-empty samples, got %d and %d", len(a), len(b))
	}

	res, err := mstats.MannWhitneyUTest(a, b, mstats.LocationDiffers)
	if err != nil {
		return stats.Verdict{}, translateTestError(err, "mann-whitney u")
	}
	return stats.NewVerdict(stats.TestMannWhitneyU, res.U, res.P), nil
}

func translateTestError(err error, test string) error {
	switch {
	case stderrors.Is(err, mstats.ErrSampleSize):
		return errors.InsufficientData("%s: %v", test, err)
	case stderrors.Is(err, mstats.ErrZeroVariance), stderrors.Is(err, mstats.ErrSamplesEqual):
		return errors.DegenerateSample("%s: %v", test, err)
	default:
		return errors.Wrapf(err, "%s failed", test)
	}
}
