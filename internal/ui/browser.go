// Package ui provides an interactive terminal browser over message groups.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/msgnorm/internal/common"
	"github.com/yildizm/msgnorm/internal/emoji"
	"github.com/yildizm/msgnorm/internal/grouping"
)

// ViewState represents the screens of the browser
type ViewState int

const (
	ViewGrouping ViewState = iota
	ViewList
	ViewDetail
	ViewHelp
	ViewError
)

// pageSize is how far pgup/pgdown move the cursor.
const pageSize = 10

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Model is the bubbletea model of the group browser.
type Model struct {
	width  int
	height int
	styles Styles

	report *grouping.Report
	err    error
	start  tea.Cmd

	view     ViewState
	previous ViewState
	selected int
	quitting bool
	frame    int
}

type tickMsg time.Time

// tick drives the spinner while grouping runs
func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// NewModel creates a browser that groups entries when started.
func NewModel(ctx context.Context, grouper *grouping.Grouper, entries []*common.LogEntry, styles Styles) *Model {
	return &Model{
		styles: styles,
		start:  CreateGroupingCommand(ctx, grouper, entries),
		view:   ViewGrouping,
	}
}

// NewReportModel creates a browser over an existing report.
func NewReportModel(report *grouping.Report, styles Styles) *Model {
	return &Model{
		styles: styles,
		report: report,
		view:   ViewList,
	}
}

// Init starts grouping if needed
func (m *Model) Init() tea.Cmd {
	if m.start == nil {
		return nil
	}
	return tea.Batch(m.start, tick())
}

// Update handles messages and navigation
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tickMsg:
		if m.view == ViewGrouping {
			m.frame = (m.frame + 1) % len(spinnerChars)
			return m, tick()
		}
	case groupingCompleteMsg:
		m.report = msg.report
		m.view = ViewList
		m.selected = 0
	case groupingErrorMsg:
		m.err = msg.err
		m.view = ViewError
	}
	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc", "backspace":
		m.back()
	case "?", "h":
		if m.view == ViewList || m.view == ViewDetail {
			m.previous = m.view
			m.view = ViewHelp
		}
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "pgup":
		m.move(-pageSize)
	case "pgdown":
		m.move(pageSize)
	case "home", "g":
		m.move(-m.groupCount())
	case "end", "G":
		m.move(m.groupCount())
	case "enter", " ":
		if m.view == ViewList && m.groupCount() > 0 {
			m.view = ViewDetail
		}
	}
	return m, nil
}

func (m *Model) back() {
	switch m.view {
	case ViewDetail:
		m.view = ViewList
	case ViewHelp:
		m.view = m.previous
	}
}

// move shifts the cursor by delta, clamped to the group list. In the
// detail view it pages between groups.
func (m *Model) move(delta int) {
	if m.view != ViewList && m.view != ViewDetail {
		return
	}
	n := m.groupCount()
	if n == 0 {
		return
	}
	m.selected += delta
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected >= n {
		m.selected = n - 1
	}
}

func (m *Model) groupCount() int {
	if m.report == nil {
		return 0
	}
	return len(m.report.Groups)
}

// Selected returns the group under the cursor, or nil.
func (m *Model) Selected() *grouping.Group {
	if m.groupCount() == 0 {
		return nil
	}
	return m.report.Groups[m.selected]
}

// View renders the current screen
func (m *Model) View() string {
	if m.quitting {
		return "Bye! " + emoji.GetEmoji("door") + "\n"
	}

	switch m.view {
	case ViewGrouping:
		return m.spinner() + " Normalizing and grouping messages...\n\nPress 'q' to quit"
	case ViewError:
		return m.styles.Error.Render(emoji.GetEmoji("error")+" Grouping failed: "+m.err.Error()) + "\n\nPress 'q' to quit"
	case ViewDetail:
		return m.renderDetail()
	case ViewHelp:
		return m.renderHelp()
	default:
		return m.renderList()
	}
}

func (m *Model) spinner() string {
	return spinnerChars[m.frame]
}

func (m *Model) renderList() string {
	var b strings.Builder

	total := 0
	if m.report != nil {
		total = m.report.TotalEntries
	}
	title := fmt.Sprintf("%s %d groups from %d entries", emoji.GetEmoji("group"), m.groupCount(), total)
	b.WriteString(m.styles.Title.Render(title) + "\n\n")

	if m.groupCount() == 0 {
		b.WriteString(m.styles.Muted.Render("No messages to group.") + "\n")
		return b.String()
	}

	start, end := m.visibleRange()
	width := m.contentWidth()
	for i := start; i < end; i++ {
		g := m.report.Groups[i]
		count := fmt.Sprintf("%7d", g.Count)
		line := fmt.Sprintf("%s %s  %s", m.styles.Level(g.Level).Render(count), emoji.ForLevel(g.Level), clip(g.Template, width-14))
		if i == m.selected {
			b.WriteString(m.styles.ListSelected.Render(line) + "\n")
		} else {
			b.WriteString(m.styles.ListItem.Render(line) + "\n")
		}
	}

	footer := fmt.Sprintf("(%d-%d of %d)  ↑/↓ move • enter details • ? help • q quit", start+1, end, m.groupCount())
	b.WriteString("\n" + m.styles.Muted.Render(footer))
	return b.String()
}

// visibleRange returns the window of rows that keeps the cursor on screen.
func (m *Model) visibleRange() (int, int) {
	rows := m.height - 5
	if rows < 1 {
		rows = pageSize
	}
	start := 0
	if m.selected >= rows {
		start = m.selected - rows + 1
	}
	end := start + rows
	if end > m.groupCount() {
		end = m.groupCount()
	}
	return start, end
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 100
	}
	return m.width
}

func (m *Model) renderDetail() string {
	g := m.Selected()
	if g == nil {
		return m.renderList()
	}

	var lines []string
	lines = append(lines,
		m.styles.Header.Render(fmt.Sprintf("Group %d of %d", m.selected+1, m.groupCount())),
		"",
		emoji.GetEmoji("template")+" "+m.styles.Template.Render(g.Template),
		"",
		fmt.Sprintf("Count:       %d", g.Count),
		fmt.Sprintf("Level:       %s", m.styles.Level(g.Level).Render(g.Level.String())),
		fmt.Sprintf("Fingerprint: %s", g.Fingerprint),
	)
	if g.FirstLine > 0 {
		lines = append(lines, fmt.Sprintf("First line:  %d", g.FirstLine))
	}
	if !g.FirstSeen.IsZero() {
		lines = append(lines, fmt.Sprintf("Seen:        %s → %s",
			g.FirstSeen.Format("2006-01-02 15:04:05"), g.LastSeen.Format("2006-01-02 15:04:05")))
	}
	if len(g.Examples) > 0 {
		lines = append(lines, "", m.styles.Header.Render("Examples"))
		for _, ex := range g.Examples {
			lines = append(lines, "  "+clip(ex, m.contentWidth()-6))
		}
	}

	panel := m.styles.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return panel + "\n" + m.styles.Muted.Render("↑/↓ previous/next group • esc back • q quit")
}

func (m *Model) renderHelp() string {
	help := []string{
		m.styles.Header.Render(emoji.GetEmoji("help") + " Keys"),
		"",
		"↑/k, ↓/j      move",
		"pgup/pgdown   move by page",
		"g/G           first/last group",
		"enter         show group details",
		"esc           back",
		"q             quit",
	}
	return m.styles.Panel.Render(strings.Join(help, "\n"))
}

// clip shortens s to at most width runes.
func clip(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if width < 4 {
		width = 4
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

// Run groups entries and opens the browser on the result.
func Run(ctx context.Context, grouper *grouping.Grouper, entries []*common.LogEntry, styles Styles) error {
	p := tea.NewProgram(NewModel(ctx, grouper, entries, styles), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
