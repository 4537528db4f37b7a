package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"abtest/domain/dataset"
	"abtest/domain/stats"
	"abtest/internal/profiling"

	"github.com/fatih/color"
)

// TextRenderer writes the console report
type TextRenderer struct {
	opts Options
}

type palette struct {
	heading *color.Color
	good    *color.Color
	bad     *color.Color
	dim     *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		heading: color.New(color.FgCyan, color.Bold),
		good:    color.New(color.FgGreen),
		bad:     color.New(color.FgRed),
		dim:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.heading, p.good, p.bad, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Render writes the report
func (tr *TextRenderer) Render(w io.Writer, r *Report) error {
	pal := newPalette(tr.opts.Color)
	var b strings.Builder

	pal.heading.Fprintf(&b, "A/B Test Report\n")
	fmt.Fprintf(&b, "Run:    %s\n", r.RunID)
	fmt.Fprintf(&b, "Source: %s\n", r.Source)
	fmt.Fprintf(&b, "Metric: %s\n", r.Metric)

	for _, s := range r.Summaries {
		b.WriteString("\n")
		tr.writeSummary(&b, pal, s)
	}

	if len(r.Groups) > 0 {
		b.WriteString("\n")
		pal.heading.Fprintf(&b, "Group means\n")
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		for _, g := range r.Groups {
			fmt.Fprintf(tw, "  %s\t%s\tn=%d\tskipped=%d\tmean=%s\n",
				groupLabel(g.Group), g.Sheet, g.N, g.Skipped, tr.num(g.Mean))
		}
		tw.Flush()
	}

	if r.Decision != nil {
		b.WriteString("\n")
		tr.writeDecision(&b, pal, r.Decision)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (tr *TextRenderer) writeSummary(b *strings.Builder, pal palette, s *profiling.TableSummary) {
	pal.heading.Fprintf(b, "######## %s\n", s.Name)
	fmt.Fprintf(b, "Shape: %d rows x %d columns\n", s.Rows, s.Cols)

	headers := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Name
	}

	if len(s.Head) > 0 {
		b.WriteString("\nHead:\n")
		writeRows(b, headers, s.Head)
		b.WriteString("\nTail:\n")
		writeRows(b, headers, s.Tail)
	}

	b.WriteString("\nColumns:\n")
	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  column\ttype\tnon-null\tmissing")
	for _, c := range s.Columns {
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%d\n", c.Name, c.Type, c.NonNull, c.Missing)
	}
	tw.Flush()

	if len(s.Numeric) == 0 {
		return
	}
	b.WriteString("\nDescribe:\n")
	tw = tabwriter.NewWriter(b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "column\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax\t")
	for _, c := range s.Numeric {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			c.Name, c.Count, tr.num(c.Mean), tr.num(c.StdDev), tr.num(c.Min),
			tr.num(c.Q25), tr.num(c.Median), tr.num(c.Q75), tr.num(c.Max))
	}
	tw.Flush()
}

func writeRows(b *strings.Builder, headers []string, rows []dataset.Row) {
	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(headers, "\t")+"\t")
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(cells(headers, row), "\t")+"\t")
	}
	tw.Flush()
}

func (tr *TextRenderer) writeDecision(b *strings.Builder, pal palette, d *stats.Decision) {
	pal.heading.Fprintf(b, "Normality (%s)\n", d.Normality[0].Test)
	for _, check := range d.Normality {
		fmt.Fprintf(b, "  %-8s %s\n", groupLabel(check.Group)+":", tr.checkLine(pal, check))
	}

	if d.Variance != nil {
		pal.heading.Fprintf(b, "Variance homogeneity (%s)\n", d.Variance.Test)
		fmt.Fprintf(b, "  %s\n", tr.checkLine(pal, *d.Variance))
	} else {
		pal.heading.Fprintf(b, "Variance homogeneity\n")
		pal.dim.Fprintf(b, "  skipped, %s\n", ReasonSentence(stats.ReasonNonNormal))
	}

	b.WriteString("\n")
	pal.heading.Fprintf(b, "Selected test: %s\n", d.Test.DisplayName())
	fmt.Fprintf(b, "  %s\n", ReasonSentence(d.Reason))

	sentence := pal.good.Sprint(VerdictSentence(d.Verdict))
	if d.Verdict.Rejected {
		sentence = pal.bad.Sprint(VerdictSentence(d.Verdict))
	}
	fmt.Fprintf(b, "  %s %s\n", tr.statLine(d.Verdict.Statistic, d.Verdict.PValue), sentence)
}

func (tr *TextRenderer) checkLine(pal palette, r stats.CheckResult) string {
	c := pal.good
	if r.Violated {
		c = pal.bad
	}
	return tr.statLine(r.Statistic, r.PValue) + " " + c.Sprint(CheckSentence(r))
}

func (tr *TextRenderer) statLine(statistic, pValue float64) string {
	return fmt.Sprintf("Test Stat = %s, p-value = %s", tr.num(statistic), tr.num(pValue))
}

func (tr *TextRenderer) num(x float64) string {
	return formatFloat(x, tr.opts.Precision)
}

func formatFloat(x float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, x)
}
