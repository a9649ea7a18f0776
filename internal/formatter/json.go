package formatter

import (
	"encoding/json"

	"github.com/yildizm/msgnorm/internal/grouping"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct {
	top int
}

// NewJSON creates a new JSON formatter
func NewJSON(opts Options) Formatter {
	return &jsonFormatter{top: opts.Top}
}

// jsonOutput is the document written by the JSON formatter
type jsonOutput struct {
	Summary *summaryOutput    `json:"summary"`
	Groups  []*grouping.Group `json:"groups"`
}

type summaryOutput struct {
	Source       string `json:"source,omitempty"`
	TotalEntries int    `json:"total_entries"`
	Grouped      int    `json:"grouped"`
	Skipped      int    `json:"skipped"`
	Groups       int    `json:"groups"`
	Shown        int    `json:"shown"`
	Duration     string `json:"duration"`
}

func (f *jsonFormatter) Format(report *grouping.Report) ([]byte, error) {
	groups := report.Top(f.top)
	if groups == nil {
		groups = []*grouping.Group{}
	}
	output := &jsonOutput{
		Summary: &summaryOutput{
			Source:       report.Source,
			TotalEntries: report.TotalEntries,
			Grouped:      report.Grouped,
			Skipped:      report.Skipped,
			Groups:       len(report.Groups),
			Shown:        len(groups),
			Duration:     report.Duration.String(),
		},
		Groups: groups,
	}

	return json.MarshalIndent(output, "", "  ")
}
