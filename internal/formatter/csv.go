package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/yildizm/msgnorm/internal/grouping"
)

// csvFormatter formats groups as CSV
type csvFormatter struct {
	top   int
	stamp string
}

// NewCSV creates a new CSV formatter
func NewCSV(opts Options) Formatter {
	return &csvFormatter{top: opts.Top, stamp: opts.TimestampFormat}
}

func (f *csvFormatter) Format(report *grouping.Report) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	// CSV headers
	headers := []string{
		"Fingerprint",
		"Template",
		"Count",
		"Level",
		"First Seen",
		"Last Seen",
		"First Line",
		"Sample Message",
	}

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, g := range report.Top(f.top) {
		sample := ""
		if len(g.Examples) > 0 {
			sample = truncate(g.Examples[0], 100)
		}

		record := []string{
			g.Fingerprint,
			g.Template,
			strconv.Itoa(g.Count),
			g.Level.String(),
			formatTime(g.FirstSeen, f.stamp),
			formatTime(g.LastSeen, f.stamp),
			strconv.Itoa(g.FirstLine),
			sample,
		}

		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}
