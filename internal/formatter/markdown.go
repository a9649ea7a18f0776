package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/msgnorm/internal/grouping"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct {
	top   int
	stamp string
	opts  *termfmt.TerminalOptions
}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown(opts Options) Formatter {
	termOpts := termfmt.DefaultOptions()
	termOpts.Color = false
	return &markdownFormatter{top: opts.Top, stamp: opts.TimestampFormat, opts: termOpts}
}

func (f *markdownFormatter) Format(report *grouping.Report) ([]byte, error) {
	var b strings.Builder

	// Header with generation timestamp
	b.WriteString("# Message Group Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format(f.stamp))

	f.writeSummaryTable(&b, report)

	groups := report.Top(f.top)
	if len(groups) > 0 {
		f.writeGroupTable(&b, report, groups)
		f.writeGroupSections(&b, groups)
	}

	b.WriteString("---\n")
	b.WriteString("*Report generated by msgnorm*\n")

	return []byte(b.String()), nil
}

// writeSummaryTable writes the totals table
func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, report *grouping.Report) {
	b.WriteString("## Summary\n\n")

	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	if report.Source != "" {
		fmt.Fprintf(b, "| Source | %s |\n", escapeMarkdownCell(report.Source))
	}
	fmt.Fprintf(b, "| Total Entries | %s |\n", formatNumber(report.TotalEntries))
	fmt.Fprintf(b, "| Grouped | %s |\n", formatNumber(report.Grouped))
	fmt.Fprintf(b, "| Skipped | %s |\n", formatNumber(report.Skipped))
	fmt.Fprintf(b, "| Groups | %d |\n", len(report.Groups))
	fmt.Fprintf(b, "| Duration | %s |\n\n", report.Duration)
}

// writeGroupTable writes the ranked overview
func (f *markdownFormatter) writeGroupTable(b *strings.Builder, report *grouping.Report, groups []*grouping.Group) {
	b.WriteString("## Groups\n\n")
	b.WriteString("| # | Count | Share | Level | Template |\n")
	b.WriteString("|---|-------|-------|-------|----------|\n")
	for i, g := range groups {
		fmt.Fprintf(b, "| %d | %s | %.1f%% | %s | `%s` |\n",
			i+1, formatNumber(g.Count), share(g.Count, report.Grouped)*100, g.Level, escapeMarkdownCell(g.Template))
	}
	b.WriteString("\n")
}

// writeGroupSections writes one section per group with its examples
func (f *markdownFormatter) writeGroupSections(b *strings.Builder, groups []*grouping.Group) {
	for i, g := range groups {
		fmt.Fprintf(b, "### %d. %s %s occurrences\n\n", i+1, getLevelEmoji(g.Level, f.opts), formatNumber(g.Count))
		b.WriteString("```\n" + g.Template + "\n```\n\n")

		fmt.Fprintf(b, "**Fingerprint**: `%s`\n", g.Fingerprint)
		if !g.FirstSeen.IsZero() {
			fmt.Fprintf(b, "First seen: %s | Last seen: %s\n",
				formatTime(g.FirstSeen, f.stamp), formatTime(g.LastSeen, f.stamp))
		}
		if ph := placeholderSummary(g.Placeholders); ph != "" {
			fmt.Fprintf(b, "**Placeholders**: %s\n", ph)
		}
		b.WriteString("\n")

		if len(g.Examples) > 0 {
			b.WriteString("Sample messages:\n")
			b.WriteString("```\n")
			for _, ex := range g.Examples {
				b.WriteString(ex + "\n")
			}
			b.WriteString("```\n\n")
		}
	}
}

// escapeMarkdownCell keeps a value on one table row
func escapeMarkdownCell(s string) string {
	s = truncate(s, 200)
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "`", "'")
}
