// Package report renders the outcome of an A/B test run as plain text,
// Markdown tables or a standalone HTML page.
package report

import (
	"io"

	"abtest/domain/core"
	"abtest/domain/stats"
	"abtest/internal/errors"
	"abtest/internal/profiling"
)

// Output formats
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Options controls how a report is formatted. There is no global state; each
// renderer carries its own copy.
type Options struct {
	Format    string
	Precision int // decimals for statistics and p-values
	MaxRows   int // rows shown in head/tail excerpts
	Color     bool
}

// DefaultOptions returns text output with five decimals
func DefaultOptions() Options {
	return Options{
		Format:    FormatText,
		Precision: 5,
		MaxRows:   5,
	}
}

// GroupStats summarises the metric column of one group
type GroupStats struct {
	Group   stats.Group
	Sheet   string
	N       int
	Skipped int // empty cells dropped while loading
	Mean    float64
}

// Report is everything one run produced. Decision is nil for describe-only runs.
type Report struct {
	RunID     core.RunID
	Source    string
	Metric    string
	Groups    []GroupStats
	Summaries []*profiling.TableSummary
	Decision  *stats.Decision
}

// Renderer writes a report in one format
type Renderer interface {
	Render(w io.Writer, r *Report) error
}

// NewRenderer returns the renderer for opts.Format
func NewRenderer(opts Options) (Renderer, error) {
	switch opts.Format {
	case FormatText, "":
		return &TextRenderer{opts: opts}, nil
	case FormatMarkdown:
		return &MarkdownRenderer{opts: opts}, nil
	case FormatHTML:
		return &HTMLRenderer{md: MarkdownRenderer{opts: opts, escapeHTML: true}}, nil
	default:
		return nil, errors.ConfigInvalid("unknown report format " + opts.Format)
	}
}

// NormalitySentence states the conclusion of a normality check
func NormalitySentence(r stats.CheckResult) string {
	if r.Violated {
		return "H0 is rejected, the assumption of normal distribution is not satisfied"
	}
	return "H0 is not rejected, the assumption of normal distribution is satisfied"
}

// VarianceSentence states the conclusion of a variance homogeneity check
func VarianceSentence(r stats.CheckResult) string {
	if r.Violated {
		return "H0 is rejected, the homogeneity of variance is not satisfied"
	}
	return "H0 is not rejected, the homogeneity of variance is satisfied"
}

// CheckSentence dispatches on the kind of check
func CheckSentence(r stats.CheckResult) string {
	if r.Kind == stats.CheckVariance {
		return VarianceSentence(r)
	}
	return NormalitySentence(r)
}

// VerdictSentence states the conclusion of the final comparison
func VerdictSentence(v stats.Verdict) string {
	if v.Rejected {
		return "H0 is rejected, there is a statistically significant difference between the groups"
	}
	return "H0 is not rejected, there is no statistically significant difference between the groups"
}

// ReasonSentence explains why a test was selected
func ReasonSentence(reason stats.Reason) string {
	switch reason {
	case stats.ReasonAssumptionsMet:
		return "both groups are normally distributed with homogeneous variances"
	case stats.ReasonNonNormal:
		return "at least one group is not normally distributed"
	case stats.ReasonHeterogeneousVariance:
		return "both groups are normally distributed but their variances are not homogeneous"
	default:
		return string(reason)
	}
}

func groupLabel(g stats.Group) string {
	switch g {
	case stats.GroupControl:
		return "Control"
	case stats.GroupTest:
		return "Test"
	default:
		return string(g)
	}
}

// cells returns the row values in header order
func cells(headers []string, row map[string]string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = row[h]
	}
	return out
}
