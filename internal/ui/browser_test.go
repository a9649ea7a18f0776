package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/msgnorm/internal/common"
	"github.com/yildizm/msgnorm/internal/grouping"
	"github.com/yildizm/msgnorm/internal/normalize"
)

func testReport() *grouping.Report {
	return &grouping.Report{
		TotalEntries: 6,
		Grouped:      6,
		Groups: []*grouping.Group{
			{Template: "user <int> logged in", Count: 3, Level: common.LevelInfo, Fingerprint: "aaa", Examples: []string{"user 1 logged in"}},
			{Template: "disk at <int> percent", Count: 2, Level: common.LevelWarn, Fingerprint: "bbb"},
			{Template: "worker <int> crashed", Count: 1, Level: common.LevelError, Fingerprint: "ccc"},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m *Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestBrowserNavigation(t *testing.T) {
	m := NewReportModel(testReport(), NewStyles(DefaultTheme, false))
	send(m, tea.WindowSizeMsg{Width: 80, Height: 24})

	if !strings.Contains(m.View(), "user <int> logged in") {
		t.Fatalf("Expected list view to show templates:\n%s", m.View())
	}

	send(m, key("down"), key("j"), key("j"))
	if got := m.Selected(); got == nil || got.Fingerprint != "ccc" {
		t.Errorf("Expected cursor clamped on last group, got %+v", got)
	}

	send(m, key("up"), key("enter"))
	if m.view != ViewDetail {
		t.Fatalf("Expected detail view, got %v", m.view)
	}
	view := m.View()
	if !strings.Contains(view, "disk at <int> percent") || !strings.Contains(view, "Fingerprint: bbb") {
		t.Errorf("Unexpected detail view:\n%s", view)
	}

	send(m, key("?"))
	if m.view != ViewHelp {
		t.Fatalf("Expected help view, got %v", m.view)
	}
	send(m, key("esc"))
	if m.view != ViewDetail {
		t.Errorf("Expected help to return to detail, got %v", m.view)
	}
	send(m, key("esc"))
	if m.view != ViewList {
		t.Errorf("Expected esc to return to list, got %v", m.view)
	}

	send(m, key("G"))
	if m.selected != 2 {
		t.Errorf("Expected G to jump to last group, got %d", m.selected)
	}
	send(m, key("g"))
	if m.selected != 0 {
		t.Errorf("Expected g to jump to first group, got %d", m.selected)
	}

	cmd := send(m, key("q"))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestBrowserGroupsOnStart(t *testing.T) {
	entries := []*common.LogEntry{{LineNumber: 1}}
	entries[0].Message = "job 12 finished"

	grouper := grouping.New(normalize.New(nil), grouping.Options{Workers: 1})
	m := NewModel(context.Background(), grouper, entries, NewStyles(DefaultTheme, false))
	if m.Init() == nil {
		t.Fatal("Expected grouping command on init")
	}
	if !strings.Contains(m.View(), "grouping messages") {
		t.Errorf("Expected progress view, got %q", m.View())
	}

	msg := m.start()
	send(m, msg)
	if m.view != ViewList || m.report == nil || m.report.Groups[0].Template != "job <int> finished" {
		t.Errorf("Expected list of grouped messages, got view %v report %+v", m.view, m.report)
	}
}

func TestBrowserError(t *testing.T) {
	m := NewReportModel(nil, NewStyles(DefaultTheme, false))
	send(m, groupingErrorMsg{err: errors.New("context deadline exceeded")})
	if !strings.Contains(m.View(), "Grouping failed: context deadline exceeded") {
		t.Errorf("Unexpected error view: %q", m.View())
	}
	// Navigation is ignored without groups.
	send(m, key("down"), key("enter"))
	if m.view != ViewError {
		t.Errorf("Expected to stay on error view, got %v", m.view)
	}
}

func TestBrowserEmptyReport(t *testing.T) {
	m := NewReportModel(&grouping.Report{}, NewStyles(DefaultTheme, true))
	send(m, key("enter"))
	if m.view != ViewList {
		t.Errorf("Expected enter to be ignored on empty list, got %v", m.view)
	}
	if !strings.Contains(m.View(), "No messages to group.") {
		t.Errorf("Unexpected empty view: %q", m.View())
	}
}

func TestClip(t *testing.T) {
	if got := clip("abcdef", 4); got != "abc…" {
		t.Errorf("clip() = %q", got)
	}
	if got := clip("ab", 10); got != "ab" {
		t.Errorf("clip() = %q", got)
	}
}

func TestThemeByName(t *testing.T) {
	for _, name := range GetAvailableThemes() {
		if _, ok := ThemeByName(name); !ok {
			t.Errorf("Expected theme %s to exist", name)
		}
	}
	if _, ok := ThemeByName("neon"); ok {
		t.Error("Expected unknown theme to be rejected")
	}
}
