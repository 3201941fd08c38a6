package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "mailsort/internal/modules/session/dto"
	"mailsort/internal/ui/theme"
)

type Port interface {
	Status(ctx context.Context) (sessiondto.StatusOutput, error)
}

type StatusLoadedMsg struct {
	Status sessiondto.StatusOutput
	Err    error
}

type Model struct {
	port   Port
	status sessiondto.StatusOutput
	err    error
	width  int
	height int
}

func New(port Port) Model {
	return Model{port: port}
}

func (m Model) Init() tea.Cmd { return m.Refresh() }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusLoadedMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.status = msg.Status
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return theme.Hot.Render("Error: " + m.err.Error())
	}
	s := m.status
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Progress") + "\n\n")
	sb.WriteString(progressBar(s.Percent, min(m.width-12, 60)) + fmt.Sprintf(" %5.1f%%\n", s.Percent))
	sb.WriteString(fmt.Sprintf("%s%d / %d  (%d remaining)\n\n",
		theme.Muted.Render("labeled: "), s.Labeled, s.Total, s.Remaining))

	left := table("By label", s.ByLabel)
	right := table("By source", s.BySource)
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right) + "\n")

	if s.Labeled > 0 {
		sb.WriteString(fmt.Sprintf("\n%s%d of %d (%.0f%%)\n",
			theme.Muted.Render("label agrees with source: "),
			s.Agreements, s.Labeled, float64(s.Agreements)*100/float64(s.Labeled)))
	}
	if s.Exhausted && s.Total > 0 {
		sb.WriteString("\n" + theme.Hot.Render("All emails classified.") + "\n")
	}
	return theme.Pane.Width(max(m.width-4, 20)).Render(sb.String())
}

// Refresh reloads progress counters from the session.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		status, err := m.port.Status(context.Background())
		return StatusLoadedMsg{Status: status, Err: err}
	}
}

func progressBar(percent float64, width int) string {
	if width < 10 {
		width = 10
	}
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	bar := lipgloss.NewStyle().Foreground(theme.Green).Render(strings.Repeat("█", filled))
	rest := lipgloss.NewStyle().Foreground(theme.Surface1).Render(strings.Repeat("░", width-filled))
	return bar + rest
}

func table(title string, counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(title) + "\n")
	if len(keys) == 0 {
		sb.WriteString(theme.Muted.Render("(none)") + "\n")
	}
	for _, k := range keys {
		sb.WriteString(theme.Label(k).Render(fmt.Sprintf("%-14s", k)) + fmt.Sprintf(" %5d\n", counts[k]))
	}
	return sb.String()
}
