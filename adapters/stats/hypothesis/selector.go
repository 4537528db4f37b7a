// Package hypothesis decides whether two experiment groups differ in
// location. It checks normality of both samples and, when both look
// normal, variance homogeneity, then runs either a pooled t-test or a
// Mann-Whitney U test. Every check returns its result and the selector
// composes on those returned values only.
package hypothesis

import (
	"context"

	"abtest/domain/stats"
	"abtest/internal"
	"abtest/internal/errors"
)

// NormalityTest checks one sample for normality
type NormalityTest interface {
	Name() string
	Test(xs []float64) (stats.CheckResult, error)
}

// VarianceTest checks two samples for equal variances
type VarianceTest interface {
	Name() string
	Test(a, b []float64) (stats.CheckResult, error)
}

// LocationTest compares the location of two samples and produces the verdict
type LocationTest interface {
	Kind() stats.TestKind
	Compare(a, b []float64) (stats.Verdict, error)
}

// Selector picks and runs the location test for a pair of samples.
type Selector struct {
	Normality NormalityTest
	Variance  VarianceTest
	TTest     LocationTest
	UTest     LocationTest

	logger *internal.Logger
}

// NewSelector wires Shapiro-Wilk, Levene, Student's t and Mann-Whitney U
func NewSelector(logger *internal.Logger) *Selector {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Selector{
		Normality: NewShapiroWilk(logger),
		Variance:  NewLevene(logger),
		TTest:     NewStudentT(),
		UTest:     NewMannWhitneyU(),
		logger:    logger,
	}
}

// Choose maps the two assumption outcomes to a test. homogeneous is only
// consulted when normal is true. Heterogeneous variances fall back to
// Mann-Whitney U, not Welch's t-test.
func Choose(normal, homogeneous bool) (stats.TestKind, stats.Reason) {
	switch {
	case !normal:
		return stats.TestMannWhitneyU, stats.ReasonNonNormal
	case !homogeneous:
		return stats.TestMannWhitneyU, stats.ReasonHeterogeneousVariance
	default:
		return stats.TestStudentT, stats.ReasonAssumptionsMet
	}
}

// Select runs the full decision procedure on control and test.
func (s *Selector) Select(ctx context.Context, control, test stats.Sample) (*stats.Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a, b := control.Values(), test.Values()
	decision := &stats.Decision{}

	for i, sample := range [2]stats.Sample{control, test} {
		res, err := s.Normality.Test(sample.Values())
		if err != nil {
			return nil, errors.Wrapf(err, "normality check on %s group", sample.Group)
		}
		res.Group = sample.Group
		decision.Normality[i] = res
		s.logger.Info("[Selector] %s %s: stat=%.5f p=%.5f violated=%t",
			s.Normality.Name(), sample.Group, res.Statistic, res.PValue, res.Violated)
	}

	homogeneous := false
	if decision.BothNormal() {
		res, err := s.Variance.Test(a, b)
		if err != nil {
			return nil, errors.Wrap(err, "variance homogeneity check")
		}
		decision.Variance = &res
		homogeneous = res.Satisfied()
		s.logger.Info("[Selector] %s: stat=%.5f p=%.5f violated=%t",
			s.Variance.Name(), res.Statistic, res.PValue, res.Violated)
	}

	decision.Test, decision.Reason = Choose(decision.BothNormal(), homogeneous)

	location := s.locationFor(decision.Test)
	if location == nil {
		return nil, errors.InternalError("no location test registered for " + string(decision.Test))
	}

	verdict, err := location.Compare(a, b)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", decision.Test.DisplayName())
	}
	decision.Verdict = verdict

	s.logger.Info("[Selector] %s (%s): stat=%.5f p=%.5f rejected=%t",
		decision.Test, decision.Reason, verdict.Statistic, verdict.PValue, verdict.Rejected)
	return decision, nil
}

func (s *Selector) locationFor(kind stats.TestKind) LocationTest {
	for _, lt := range []LocationTest{s.TTest, s.UTest} {
		if lt != nil && lt.Kind() == kind {
			return lt
		}
	}
	return nil
}
