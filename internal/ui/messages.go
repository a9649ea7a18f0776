package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/msgnorm/internal/common"
	"github.com/yildizm/msgnorm/internal/grouping"
)

// Message types shared by the browser
type groupingCompleteMsg struct {
	report *grouping.Report
}

type groupingErrorMsg struct {
	err error
}

// CreateGroupingCommand creates a tea command that groups entries
func CreateGroupingCommand(ctx context.Context, grouper *grouping.Grouper, entries []*common.LogEntry) tea.Cmd {
	return func() tea.Msg {
		report, err := grouper.Group(ctx, entries)
		if err != nil {
			return groupingErrorMsg{err: err}
		}
		return groupingCompleteMsg{report: report}
	}
}
