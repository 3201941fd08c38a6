package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	sessiondto "mailsort/internal/modules/session/dto"
	apperrors "mailsort/internal/platform/errors"
	"mailsort/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the minimal interface this view needs from the session use-case.
type Port interface {
	Current(ctx context.Context) (sessiondto.CurrentOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// CurrentLoadedMsg carries the record under the cursor. Err is
// apperrors.ErrExhausted when nothing is left to classify.
type CurrentLoadedMsg struct {
	Current sessiondto.CurrentOutput
	Err     error
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model shows the email under the cursor, rendered as markdown.
type Model struct {
	port      Port
	viewport  viewport.Model
	spinner   spinner.Model
	renderer  *glamour.TermRenderer
	current   sessiondto.CurrentOutput
	hasRecord bool
	message   string
	shortcuts string
	loading   bool
	width     int
	height    int
}

// New creates a Classify Model. shortcuts is the key legend shown in the footer.
func New(port Port, shortcuts string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)

	return Model{
		port:      port,
		viewport:  viewport.New(0, 0),
		spinner:   sp,
		renderer:  r,
		shortcuts: shortcuts,
		loading:   true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Refresh(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.viewport.SetContent(m.renderContent())

	case CurrentLoadedMsg:
		m.loading = false
		switch {
		case msg.Err == nil:
			m.current = msg.Current
			m.hasRecord = true
			m.message = ""
		case errors.Is(msg.Err, apperrors.ErrExhausted):
			m.current = msg.Current
			m.hasRecord = false
			m.message = ""
		default:
			m.hasRecord = false
			m.message = msg.Err.Error()
		}
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var vCmd tea.Cmd
	m.viewport, vCmd = m.viewport.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	header := m.renderHeader()
	footer := theme.Muted.Render(m.shortcuts + "  ↑/↓: scroll  :classify <label>")
	vpHeight := m.height - lipgloss.Height(header) - 1
	if vpHeight < 1 {
		vpHeight = 1
	}

	if m.loading {
		loading := lipgloss.Place(m.width, vpHeight, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading session…")
		return lipgloss.JoinVertical(lipgloss.Left, header, loading)
	}

	vp := m.viewport
	vp.Height = vpHeight
	return lipgloss.JoinVertical(lipgloss.Left, header, vp.View(), footer)
}

// Refresh reloads the record under the cursor.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		current, err := m.port.Current(context.Background())
		return CurrentLoadedMsg{Current: current, Err: err}
	}
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = m.height - 3
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(m.width),
	); err == nil {
		m.renderer = r
	}
}

func (m Model) renderHeader() string {
	if !m.hasRecord {
		return theme.Title.Render("Classify") + "\n"
	}
	c := m.current
	return theme.Title.Render("Classify") +
		theme.Muted.Render(fmt.Sprintf("  email %d of %d  ", c.Position+1, c.Total)) +
		theme.Label(c.Record.OriginalCategory).Render(c.Record.OriginalCategory) + "\n"
}

func (m Model) renderContent() string {
	if m.message != "" {
		return theme.Hot.Render("Error: " + m.message)
	}
	if !m.hasRecord {
		if m.current.Total == 0 {
			return theme.Muted.Render("No emails loaded. Use :load <tag> <path>... or :load-dir <tag> <pattern>")
		}
		return theme.Hot.Render("All emails classified.") + "\n\n" +
			theme.Muted.Render("Use :export to write the results or :reset to start over.")
	}
	md := renderMarkdown(m.current.Record)
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(md); err == nil {
			return rendered
		}
	}
	return md
}

func renderMarkdown(r sessiondto.Record) string {
	var sb strings.Builder
	subject := r.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	sb.WriteString("# " + subject + "\n\n")
	sb.WriteString("**From:** " + orDash(r.Sender) + "  \n")
	sb.WriteString("**Date:** " + orDash(r.Date) + "  \n")
	sb.WriteString("**Source:** " + r.OriginalCategory + "\n\n---\n\n")
	if strings.TrimSpace(r.Body) == "" {
		sb.WriteString("_(empty body)_\n")
	} else {
		sb.WriteString(r.Body + "\n")
	}
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
