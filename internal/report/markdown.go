package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"abtest/domain/dataset"
	"abtest/domain/stats"
	"abtest/internal/profiling"
)

// MarkdownRenderer writes the report as Markdown tables
type MarkdownRenderer struct {
	opts Options
	// escapeHTML entity-encodes <, > and & in cell text for HTML output
	escapeHTML bool
}

// Render writes the report
func (mr *MarkdownRenderer) Render(w io.Writer, r *Report) error {
	_, err := io.WriteString(w, mr.document(r))
	return err
}

func (mr *MarkdownRenderer) document(r *Report) string {
	var b strings.Builder

	b.WriteString("# A/B Test Report\n\n")
	fmt.Fprintf(&b, "- **Run:** `%s`\n", r.RunID)
	fmt.Fprintf(&b, "- **Source:** %s\n", mr.escape(r.Source))
	fmt.Fprintf(&b, "- **Metric:** %s\n", mr.escape(r.Metric))

	for _, s := range r.Summaries {
		mr.writeSummary(&b, s)
	}

	if len(r.Groups) > 0 {
		b.WriteString("\n## Group means\n\n")
		rows := make([][]string, 0, len(r.Groups))
		for _, g := range r.Groups {
			rows = append(rows, []string{
				groupLabel(g.Group), g.Sheet, strconv.Itoa(g.N), strconv.Itoa(g.Skipped), mr.num(g.Mean),
			})
		}
		mr.writeTable(&b, []string{"Group", "Sheet", "n", "Skipped", "Mean"}, rows)
	}

	if r.Decision != nil {
		mr.writeDecision(&b, r.Decision)
	}
	return b.String()
}

func (mr *MarkdownRenderer) writeSummary(b *strings.Builder, s *profiling.TableSummary) {
	fmt.Fprintf(b, "\n## %s\n\n", mr.escape(s.Name))
	fmt.Fprintf(b, "Shape: %d rows x %d columns\n", s.Rows, s.Cols)

	headers := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Name
	}

	if len(s.Head) > 0 {
		b.WriteString("\n### Head\n\n")
		mr.writeTable(b, headers, rowCells(headers, s.Head))
		b.WriteString("\n### Tail\n\n")
		mr.writeTable(b, headers, rowCells(headers, s.Tail))
	}

	b.WriteString("\n### Columns\n\n")
	types := make([][]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		types = append(types, []string{c.Name, c.Type, strconv.Itoa(c.NonNull), strconv.Itoa(c.Missing)})
	}
	mr.writeTable(b, []string{"Column", "Type", "Non-null", "Missing"}, types)

	if len(s.Numeric) == 0 {
		return
	}
	b.WriteString("\n### Describe\n\n")
	describe := make([][]string, 0, len(s.Numeric))
	for _, c := range s.Numeric {
		describe = append(describe, []string{
			c.Name, strconv.Itoa(c.Count), mr.num(c.Mean), mr.num(c.StdDev), mr.num(c.Min),
			mr.num(c.Q25), mr.num(c.Median), mr.num(c.Q75), mr.num(c.Max),
		})
	}
	mr.writeTable(b, []string{"Column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}, describe)
}

func (mr *MarkdownRenderer) writeDecision(b *strings.Builder, d *stats.Decision) {
	b.WriteString("\n## Assumption checks\n\n")

	checks := make([][]string, 0, 3)
	for _, c := range d.Normality {
		checks = append(checks, mr.checkRow("Normality", groupLabel(c.Group), c))
	}
	if d.Variance != nil {
		checks = append(checks, mr.checkRow("Variance homogeneity", "Both", *d.Variance))
	}
	mr.writeTable(b, []string{"Check", "Group", "Test", "Test Stat", "p-value", "Conclusion"}, checks)
	if d.Variance == nil {
		fmt.Fprintf(b, "\nVariance homogeneity was not checked: %s.\n", ReasonSentence(stats.ReasonNonNormal))
	}

	b.WriteString("\n## Result\n\n")
	fmt.Fprintf(b, "Selected **%s** because %s.\n\n", d.Test.DisplayName(), ReasonSentence(d.Reason))
	mr.writeTable(b, []string{"Test", "Test Stat", "p-value", "Conclusion"}, [][]string{{
		d.Test.DisplayName(), mr.num(d.Verdict.Statistic), mr.num(d.Verdict.PValue), VerdictSentence(d.Verdict),
	}})
}

func (mr *MarkdownRenderer) checkRow(check, group string, r stats.CheckResult) []string {
	return []string{check, group, r.Test, mr.num(r.Statistic), mr.num(r.PValue), CheckSentence(r)}
}

func (mr *MarkdownRenderer) num(x float64) string {
	return formatFloat(x, mr.opts.Precision)
}

func rowCells(headers []string, rows []dataset.Row) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = cells(headers, row)
	}
	return out
}

func (mr *MarkdownRenderer) writeTable(b *strings.Builder, headers []string, rows [][]string) {
	b.WriteString("|")
	for _, h := range headers {
		b.WriteString(" " + mr.escape(h) + " |")
	}
	b.WriteString("\n|")
	for range headers {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("|")
		for _, cell := range row {
			b.WriteString(" " + mr.escape(cell) + " |")
		}
		b.WriteString("\n")
	}
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func (mr *MarkdownRenderer) escape(s string) string {
	if mr.escapeHTML {
		s = htmlEscaper.Replace(s)
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
