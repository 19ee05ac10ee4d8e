// Package tui renders a live board as a terminal Gantt chart.
//
// It follows the bubbletea model: key presses become messages, Update moves
// the model forward and View draws it. Pressing r regenerates the board in
// place, the same operation the HTTP API exposes.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gantry-dev/gantry/internal/app/gantt"
	"github.com/gantry-dev/gantry/internal/app/shape"
	"github.com/gantry-dev/gantry/internal/domain"
)

const (
	defaultWidth  = 100
	defaultHeight = 30

	// Rows taken by the header, axis and footer.
	chromeRows = 6

	labelWidth = 24
	minChart   = 20
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	todayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	statusStyles = map[domain.TaskStatus]lipgloss.Style{
		domain.StatusNotStarted: lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")),
		domain.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true),
		domain.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true),
		domain.StatusTesting:    lipgloss.NewStyle().Foreground(lipgloss.Color("#B388FF")),
		domain.StatusOnHold:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
)

// StatusStyle returns the color used for a status label.
func StatusStyle(s domain.TaskStatus) lipgloss.Style {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return mutedStyle
}

type keyMap struct {
	Regenerate key.Binding
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Regenerate, k.Up, k.Down, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Regenerate},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Help, k.Quit},
	}
}

func defaultKeys() keyMap {
	return keyMap{
		Regenerate: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "regenerate")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:     key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the chart view over a board.
type Model struct {
	board domain.TaskBoard
	batch domain.Batch
	now   func() time.Time

	offset int
	width  int
	height int

	keys keyMap
	help help.Model
}

// New creates a model showing the board's current batch.
func New(board domain.TaskBoard) *Model {
	m := &Model{
		board:  board,
		now:    time.Now,
		width:  defaultWidth,
		height: defaultHeight,
		keys:   defaultKeys(),
		help:   help.New(),
	}
	m.batch = board.Batch()
	return m
}

// Run starts the interactive program and blocks until the user quits.
func Run(board domain.TaskBoard) error {
	_, err := tea.NewProgram(New(board), tea.WithAltScreen()).Run()
	return err
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampOffset()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Regenerate):
			m.batch = m.board.Regenerate()
			m.clampOffset()
		case key.Matches(msg, m.keys.Up):
			m.offset--
			m.clampOffset()
		case key.Matches(msg, m.keys.Down):
			m.offset++
			m.clampOffset()
		case key.Matches(msg, m.keys.PageUp):
			m.offset -= m.pageSize()
			m.clampOffset()
		case key.Matches(msg, m.keys.PageDown):
			m.offset += m.pageSize()
			m.clampOffset()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder

	header := titleStyle.Render("gantry") + mutedStyle.Render(fmt.Sprintf(
		"  batch #%d · %d tasks · %s",
		m.batch.Seq, len(m.batch.Tasks), m.batch.GeneratedAt.Format("2006-01-02 15:04:05"),
	))
	b.WriteString(header)
	b.WriteString("\n\n")

	if shape.IsEmpty(m.batch.Tasks) {
		b.WriteString(borderStyle.Render(mutedStyle.Render("No tasks on the board. Press r to regenerate.")))
	} else {
		b.WriteString(m.renderChart())
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// ─── Chart rendering ────────────────────────────────────────────────────────

func (m *Model) chartWidth() int {
	return max(m.width-labelWidth-16, minChart)
}

func (m *Model) pageSize() int {
	return max(m.height-chromeRows, 1)
}

func (m *Model) clampOffset() {
	last := max(len(m.batch.Tasks)-m.pageSize(), 0)
	m.offset = min(max(m.offset, 0), last)
}

// span covers the sampling window plus the longest task that can start at
// its end.
func (m *Model) span() (time.Time, time.Time) {
	return m.batch.WindowStart, m.batch.WindowEnd.AddDate(0, 0, gantt.MaxDurationDays)
}

func (m *Model) column(t time.Time, width int) int {
	start, end := m.span()
	total := end.Sub(start)
	if total <= 0 {
		return 0
	}
	col := int(t.Sub(start) * time.Duration(width) / total)
	return min(max(col, 0), width)
}

func (m *Model) renderChart() string {
	width := m.chartWidth()
	var rows []string

	rows = append(rows, strings.Repeat(" ", labelWidth)+m.renderAxis(width))

	tasks := m.batch.Tasks
	end := min(m.offset+m.pageSize(), len(tasks))
	for _, t := range tasks[m.offset:end] {
		rows = append(rows, m.renderRow(t, width))
	}

	if len(tasks) > m.pageSize() {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("rows %d-%d of %d", m.offset+1, end, len(tasks))))
	}
	return strings.Join(rows, "\n")
}

// renderAxis marks every other day and today's column.
func (m *Model) renderAxis(width int) string {
	axis := []rune(strings.Repeat(" ", width+6))
	start, end := m.span()
	for d := start; d.Before(end); d = d.AddDate(0, 0, 2) {
		label := []rune(d.Format("01/02"))
		col := m.column(d, width)
		if col+len(label) > len(axis) {
			break
		}
		copy(axis[col:], label)
	}
	out := mutedStyle.Render(string(axis))

	if now := m.now(); !now.Before(start) && now.Before(end) {
		out += "\n" + strings.Repeat(" ", labelWidth) +
			strings.Repeat(" ", m.column(now, width)) + todayStyle.Render("▼ today")
	}
	return out
}

func (m *Model) renderRow(t domain.GanttTask, width int) string {
	label := fmt.Sprintf("%-8s %-7s", t.Task, t.User)
	if len(label) > labelWidth-1 {
		label = label[:labelWidth-1]
	}

	from := m.column(t.Start, width)
	to := max(m.column(t.End, width), from+1)
	length := to - from
	done := length * t.Progress / gantt.MaxProgress

	style := StatusStyle(t.Status)
	bar := strings.Repeat(" ", from) +
		style.Render(strings.Repeat("█", done)+strings.Repeat("░", length-done)) +
		strings.Repeat(" ", max(width-to, 0))

	return fmt.Sprintf("%-*s%s %s %3d%%", labelWidth, label, bar, style.Render(string(t.Status)), t.Progress)
}
