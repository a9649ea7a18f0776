// Package formatter renders grouping reports for terminals, files and
// language-model prompts.
package formatter

import (
	"fmt"

	"github.com/yildizm/msgnorm/internal/grouping"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(report *grouping.Report) ([]byte, error)
}

// Options are shared by all formatters.
type Options struct {
	Color bool
	// Top limits the groups written; 0 writes all of them.
	Top             int
	TimestampFormat string
}

// New returns the formatter registered for format.
func New(format string, opts Options) (Formatter, error) {
	if opts.TimestampFormat == "" {
		opts.TimestampFormat = "2006-01-02 15:04:05"
	}
	switch format {
	case "json":
		return NewJSON(opts), nil
	case "markdown", "md":
		return NewMarkdown(opts), nil
	case "csv":
		return NewCSV(opts), nil
	case "prompt":
		return NewPrompt(opts), nil
	case "text", "terminal", "":
		return NewTerminal(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (use text, json, markdown, csv or prompt)", format)
	}
}
