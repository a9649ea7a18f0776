package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/msgnorm/internal/common"
	"github.com/yildizm/msgnorm/internal/normalize"
)

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// getLevelEmoji returns emoji for severity levels using go-termfmt
func getLevelEmoji(level common.LogLevel, opts *termfmt.TerminalOptions) string {
	switch level {
	case common.LevelFatal, common.LevelError:
		return termfmt.GetEmoji("error", opts)
	case common.LevelWarn:
		return termfmt.GetEmoji("warning", opts)
	case common.LevelInfo:
		return termfmt.GetEmoji("info", opts)
	default:
		return termfmt.GetEmoji("insight", opts)
	}
}

// share returns count as a fraction of total.
func share(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

// formatTime formats t, leaving zero times empty.
func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

// placeholderSummary renders label counts as "int×2, ip" in label order.
func placeholderSummary(counts map[normalize.Label]int) string {
	if len(counts) == 0 {
		return ""
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, string(label))
	}
	sort.Strings(labels)

	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		n := counts[normalize.Label(label)]
		if n > 1 {
			parts = append(parts, fmt.Sprintf("%s×%d", label, n))
		} else {
			parts = append(parts, label)
		}
	}
	return strings.Join(parts, ", ")
}

// truncate shortens single-line s to max bytes without splitting a rune.
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
