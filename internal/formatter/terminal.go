package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/msgnorm/internal/grouping"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts  *termfmt.TerminalOptions
	top   int
	stamp string
}

// NewTerminal creates a new terminal formatter
func NewTerminal(opts Options) Formatter {
	termOpts := termfmt.DefaultOptions()
	termOpts.Color = opts.Color
	termOpts.Emoji = true
	return &terminalFormatter{opts: termOpts, top: opts.Top, stamp: opts.TimestampFormat}
}

func (f *terminalFormatter) Format(report *grouping.Report) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b)
	f.writeStatistics(&b, report)

	groups := report.Top(f.top)
	if len(groups) > 0 {
		f.writeGroups(&b, report, groups)
	} else {
		b.WriteString("No messages to group.\n")
	}

	return []byte(b.String()), nil
}

// writeHeader writes a header with box drawing
func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := "Message Groups"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

// writeStatistics writes statistics with tree-style formatting using go-termfmt
func (f *terminalFormatter) writeStatistics(b *strings.Builder, report *grouping.Report) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Statistics\n")

	items := []termfmt.TreeItem{
		{Label: "Total Entries", Value: formatNumber(report.TotalEntries)},
		{Label: "Grouped", Value: formatNumber(report.Grouped)},
		{Label: "Skipped", Value: formatNumber(report.Skipped)},
		{Label: "Groups", Value: formatNumber(len(report.Groups))},
		{Label: "Duration", Value: report.Duration.String(), Last: true},
	}
	if report.Source != "" {
		items = append([]termfmt.TreeItem{{Label: "Source", Value: report.Source}}, items...)
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeGroups writes one tree entry per group with its share and examples
func (f *terminalFormatter) writeGroups(b *strings.Builder, report *grouping.Report, groups []*grouping.Group) {
	symbol := termfmt.GetEmoji("insights", f.opts)
	if len(groups) < len(report.Groups) {
		fmt.Fprintf(b, "%s Top %d of %d Groups\n", symbol, len(groups), len(report.Groups))
	} else {
		b.WriteString(symbol + " Groups\n")
	}

	items := make([]termfmt.TreeItem, 0, len(groups))
	for i, g := range groups {
		pct := share(g.Count, report.Grouped)
		children := []termfmt.TreeItem{
			{Label: termfmt.CreateConfidenceBar(pct, f.opts), Value: fmt.Sprintf("%.1f%% of grouped", pct*100)},
			{Label: "Fingerprint", Value: g.Fingerprint},
		}
		if seen := f.seenRange(g); seen != "" {
			children = append(children, termfmt.TreeItem{Label: "Seen", Value: seen})
		}
		if ph := placeholderSummary(g.Placeholders); ph != "" {
			children = append(children, termfmt.TreeItem{Label: "Placeholders", Value: ph})
		}
		for _, ex := range g.Examples {
			children = append(children, termfmt.TreeItem{Label: "e.g.", Value: truncate(ex, 120)})
		}
		children[len(children)-1].Last = true

		items = append(items, termfmt.TreeItem{
			Label:    fmt.Sprintf("%s %s", getLevelEmoji(g.Level, f.opts), truncate(g.Template, 120)),
			Value:    fmt.Sprintf("(%s)", formatNumber(g.Count)),
			Children: children,
			Last:     i == len(groups)-1,
		})
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n")
}

func (f *terminalFormatter) seenRange(g *grouping.Group) string {
	first := formatTime(g.FirstSeen, f.stamp)
	last := formatTime(g.LastSeen, f.stamp)
	switch {
	case first == "":
		return ""
	case first == last:
		return first
	default:
		return first + " → " + last
	}
}
