package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-promptfmt"

	"github.com/yildizm/msgnorm/internal/grouping"
)

// defaultPromptGroups bounds the groups put into a prompt when no top is set.
const defaultPromptGroups = 10

// GroupTriagePattern builds a prompt asking a model to triage the most
// frequent message groups of a report.
type GroupTriagePattern struct {
	promptfmt.BasePattern
	Report      *grouping.Report
	MaxGroups   int
	MaxExamples int
}

// NewGroupTriagePattern creates a triage pattern with default limits.
func NewGroupTriagePattern() *GroupTriagePattern {
	return &GroupTriagePattern{
		BasePattern: promptfmt.BasePattern{
			Description: "Triages the most frequent normalized message groups of a log",
			Tags:        []string{"triage", "grouping", "normalization"},
		},
		MaxGroups:   defaultPromptGroups,
		MaxExamples: 2,
	}
}

func (p *GroupTriagePattern) WithReport(report *grouping.Report) *GroupTriagePattern {
	p.Report = report
	return p
}

func (p *GroupTriagePattern) WithMaxGroups(n int) *GroupTriagePattern {
	if n > 0 {
		p.MaxGroups = n
	}
	return p
}

// Build assembles the prompt.
func (p *GroupTriagePattern) Build() *promptfmt.Prompt {
	if p.Report == nil || len(p.Report.Groups) == 0 {
		return promptfmt.New().
			System("You are an on-call engineer triaging recurring log messages.").
			User("No message groups were found in the provided log.").
			Build()
	}

	groups := p.Report.Top(p.MaxGroups)
	pb := promptfmt.New().
		System("You are an on-call engineer triaging recurring log messages. Each group is a message template in which variable parts were replaced by placeholders such as <int>, <ip> or <uuid>.").
		User("Triage these message groups:\n\nTotal Entries: %d\nGroups: %d (showing top %d)",
			p.Report.TotalEntries, len(p.Report.Groups), len(groups))

	pb.AddContext("groups", p.groupsContext(groups))

	type GroupTriageResponse struct {
		Summary string `json:"summary"`
		Groups  []struct {
			Fingerprint string `json:"fingerprint"`
			Severity    string `json:"severity"` // "critical", "high", "medium", "low"
			Category    string `json:"category"` // "bug", "infrastructure", "noise", ...
			Explanation string `json:"explanation"`
			NextStep    string `json:"next_step"`
		} `json:"groups"`
	}

	return pb.ExpectJSON(&GroupTriageResponse{}).Build()
}

func (p *GroupTriagePattern) groupsContext(groups []*grouping.Group) string {
	var b strings.Builder
	b.WriteString("Message Groups:\n")
	for i, g := range groups {
		fmt.Fprintf(&b, "%d. [%s] %s occurrences, level %s\n   template: %s\n",
			i+1, g.Fingerprint, formatNumber(g.Count), g.Level, g.Template)
		for j, ex := range g.Examples {
			if j >= p.MaxExamples {
				break
			}
			fmt.Fprintf(&b, "   example: %s\n", truncate(ex, 200))
		}
	}
	return b.String()
}

// promptFormatter writes a triage prompt
type promptFormatter struct {
	top int
}

// NewPrompt creates a formatter that renders a triage prompt
func NewPrompt(opts Options) Formatter {
	return &promptFormatter{top: opts.Top}
}

func (f *promptFormatter) Format(report *grouping.Report) ([]byte, error) {
	prompt := NewGroupTriagePattern().WithReport(report).WithMaxGroups(f.top).Build()

	var b strings.Builder
	if prompt.SystemPrompt != "" {
		b.WriteString("System: " + prompt.SystemPrompt + "\n\n")
	}
	b.WriteString(prompt.String())
	b.WriteString("\n")
	return []byte(b.String()), nil
}
