package stats

import (
	"fmt"
)

// Alpha is the fixed significance level every check and test is judged at.
const Alpha = 0.05

// Group names the two arms of the experiment
type Group string

const (
	GroupControl Group = "control"
	GroupTest    Group = "test"
)

// Sample is the ordered sequence of observations for one experimental group.
// It is treated as immutable once loaded; use Values for a private copy.
type Sample struct {
	Group  Group
	Metric string
	values []float64
}

// NewSample copies xs into a new Sample
func NewSample(group Group, metric string, xs []float64) Sample {
	values := make([]float64, len(xs))
	copy(values, xs)
	return Sample{Group: group, Metric: metric, values: values}
}

// Len returns the number of observations
func (s Sample) Len() int {
	return len(s.values)
}

// Values returns a copy of the observations in load order
func (s Sample) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Mean returns the arithmetic mean, or 0 for an empty sample
func (s Sample) Mean() float64 {
	if len(s.values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.values {
		sum += v
	}
	return sum / float64(len(s.values))
}

// CheckKind identifies an assumption check
type CheckKind string

const (
	CheckNormality CheckKind = "normality"
	CheckVariance  CheckKind = "variance_homogeneity"
)

// CheckResult is the outcome of one assumption check.
type CheckResult struct {
	Kind      CheckKind `json:"kind"`
	Test      string    `json:"test"`            // e.g. "shapiro_wilk", "levene"
	Group     Group     `json:"group,omitempty"` // set for per-sample checks
	Statistic float64   `json:"statistic"`
	PValue    float64   `json:"p_value"`
	Violated  bool      `json:"violated"` // PValue < Alpha
}

// NewCheckResult applies the Alpha policy to a statistic/p-value pair
func NewCheckResult(kind CheckKind, test string, statistic, pValue float64) CheckResult {
	return CheckResult{
		Kind:      kind,
		Test:      test,
		Statistic: statistic,
		PValue:    pValue,
		Violated:  pValue < Alpha,
	}
}

// Satisfied reports whether the assumption holds
func (r CheckResult) Satisfied() bool {
	return !r.Violated
}

// TestKind identifies the location test chosen for the final comparison
type TestKind string

const (
	TestStudentT     TestKind = "student_t"
	TestMannWhitneyU TestKind = "mann_whitney_u"
)

// DisplayName is the human readable test name
func (k TestKind) DisplayName() string {
	switch k {
	case TestStudentT:
		return "Two-Sample Independent t-Test"
	case TestMannWhitneyU:
		return "Mann-Whitney U Test"
	default:
		return string(k)
	}
}

// Reason explains why a TestKind was selected
type Reason string

const (
	ReasonAssumptionsMet        Reason = "assumptions_met"
	ReasonNonNormal             Reason = "non_normal"
	ReasonHeterogeneousVariance Reason = "heterogeneous_variance"
)

// Verdict is the final, externally visible result of the comparison.
type Verdict struct {
	Test      TestKind `json:"test"`
	Statistic float64  `json:"statistic"`
	PValue    float64  `json:"p_value"`
	Rejected  bool     `json:"rejected"` // PValue < Alpha
	Message   string   `json:"message"`
}

const (
	MessageSignificant    = "statistically significant difference"
	MessageNotSignificant = "no statistically significant difference"
)

// NewVerdict applies the Alpha policy to a location-test result
func NewVerdict(test TestKind, statistic, pValue float64) Verdict {
	rejected := pValue < Alpha
	message := MessageNotSignificant
	if rejected {
		message = MessageSignificant
	}
	return Verdict{
		Test:      test,
		Statistic: statistic,
		PValue:    pValue,
		Rejected:  rejected,
		Message:   message,
	}
}

func (v Verdict) String() string {
	return fmt.Sprintf("%s: statistic=%.5f p=%.5f (%s)", v.Test.DisplayName(), v.Statistic, v.PValue, v.Message)
}

// Decision records every step the selector took for one pair of samples.
type Decision struct {
	Normality [2]CheckResult `json:"normality"` // control, test
	Variance  *CheckResult   `json:"variance,omitempty"`
	Test      TestKind       `json:"test"`
	Reason    Reason         `json:"reason"`
	Verdict   Verdict        `json:"verdict"`
}

// BothNormal reports whether neither normality check was violated
func (d *Decision) BothNormal() bool {
	return d.Normality[0].Satisfied() && d.Normality[1].Satisfied()
}
