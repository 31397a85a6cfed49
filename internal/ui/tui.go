// Package ui provides optional terminal interfaces.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/journal-go/internal/journal"
)

// RunTUI starts the interactive journal browser.
func RunTUI(ctx context.Context, store *journal.Store) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(store)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*tuiModel); ok && m.fatalErr != nil {
		return m.fatalErr
	}
	return nil
}

// taskRow pairs a task with its 1-based position in the persisted journal,
// so completing a row stays correct while a filter hides other tasks.
type taskRow struct {
	pos  int
	task journal.Task
}

type tuiModel struct {
	store        *journal.Store
	rows         []taskRow
	cursor       int
	filter       journal.Priority
	filterSet    bool
	loadErr      error
	actionErr    error
	fatalErr     error
	showHelp     bool
	tickInterval time.Duration
}

type tickMsg time.Time

func newTUIModel(store *journal.Store) *tuiModel {
	return &tuiModel{
		store:        store,
		tickInterval: time.Second,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
			return m, nil
		case "h", "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
			return m, nil
		case "d":
			m.completeSelected()
			return m, nil
		case "1":
			m.setFilter(journal.PriorityHigh)
			return m, nil
		case "2":
			m.setFilter(journal.PriorityMedium)
			return m, nil
		case "3":
			m.setFilter(journal.PriorityLow)
			return m, nil
		case "0":
			m.filterSet = false
			m.filter = journal.PriorityNone
			m.refresh()
			return m, nil
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}

	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.filterSet {
		b.WriteString(fmt.Sprintf("Filter: %s (0 to clear)\n\n", m.filter))
	}

	if m.loadErr != nil {
		b.WriteString("Error loading journal file:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if len(m.rows) == 0 {
		b.WriteString("  Task list is empty!\n\n")
	} else {
		for i, row := range m.rows {
			marker := "  "
			if i == m.cursor {
				marker = "> "
			}
			b.WriteString(marker + formatRow(row) + "\n")
		}
		b.WriteString("\n")
	}

	if m.actionErr != nil {
		b.WriteString("Error: " + m.actionErr.Error() + "\n\n")
	}

	writeFooter(&b, m.tickInterval)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) refresh() {
	tasks, err := m.store.Load()
	if err != nil {
		m.loadErr = err
		m.rows = nil
		return
	}
	m.loadErr = nil
	m.rows = buildRows(tasks, m.filter, m.filterSet)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) setFilter(p journal.Priority) {
	m.filter = p
	m.filterSet = true
	m.cursor = 0
	m.refresh()
}

func (m *tuiModel) completeSelected() {
	if m.cursor >= len(m.rows) {
		return
	}
	row := m.rows[m.cursor]
	if _, err := m.store.Complete(row.pos); err != nil {
		m.actionErr = err
		return
	}
	m.actionErr = nil
	m.refresh()
}

// buildRows walks the persisted order so positions line up with what the
// done command would see.
func buildRows(tasks []journal.Task, filter journal.Priority, filterSet bool) []taskRow {
	var rows []taskRow
	for i, task := range tasks {
		if filterSet && task.Priority != filter {
			continue
		}
		rows = append(rows, taskRow{pos: i + 1, task: task})
	}
	return rows
}

func formatRow(row taskRow) string {
	priority := "none"
	if row.task.Priority != journal.PriorityNone {
		priority = string(row.task.Priority)
	}
	line := fmt.Sprintf("%3d  [%-6s] %s", row.pos, priority, row.task.Text)
	if row.task.DueDate != nil {
		line += fmt.Sprintf("  (due %s)", row.task.DueDate.Time().Format("2006-01-02"))
	}
	if row.task.Category != nil {
		line += fmt.Sprintf("  #%s", *row.task.Category)
	}
	return line
}

func writeTitle(b *strings.Builder) {
	title := "Journal TUI"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Refresh data\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  j/k, arrows  Move cursor\n")
	b.WriteString("  d            Complete selected task\n")
	b.WriteString("  1            Filter by high priority\n")
	b.WriteString("  2            Filter by medium priority\n")
	b.WriteString("  3            Filter by low priority\n")
	b.WriteString("  0            Clear filter\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	b.WriteString(fmt.Sprintf("Press h for help | q to quit | Refreshing every %s\n", interval))
}

// IsTTY returns true if the writer is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, _ := f.Stat()
	return (info.Mode() & os.ModeCharDevice) != 0
}
