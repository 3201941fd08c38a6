package labeled

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "mailsort/internal/modules/session/dto"
	"mailsort/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Labeled(ctx context.Context) ([]sessiondto.LabeledRecord, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LabeledLoadedMsg struct {
	Records []sessiondto.LabeledRecord
	Err     error
}

// ─── list item ───────────────────────────────────────────────────────────────

type recordItem struct {
	index  int
	record sessiondto.LabeledRecord
}

func (i recordItem) Title() string {
	if i.record.Subject == "" {
		return fmt.Sprintf("%d. (no subject)", i.index+1)
	}
	return fmt.Sprintf("%d. %s", i.index+1, i.record.Subject)
}

func (i recordItem) Description() string {
	return fmt.Sprintf("%s ← %s  %s", i.record.UserClassification, i.record.OriginalCategory, i.record.Sender)
}

func (i recordItem) FilterValue() string {
	return i.record.Subject + " " + i.record.Sender + " " + i.record.UserClassification
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    Port
	list    list.Model
	preview viewport.Model
	count   int
	width   int
	height  int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Labeled"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	return Model{port: port, list: l, preview: vp}
}

func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LabeledLoadedMsg:
		if msg.Err != nil {
			m.list.Title = "Labeled: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Labeled"
		m.count = len(msg.Records)
		// Newest first; the index keeps the labeling order visible.
		items := make([]list.Item, len(msg.Records))
		for i, r := range msg.Records {
			items[len(msg.Records)-1-i] = recordItem{index: i, record: r}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.list.Select(0)
		m.preview.SetContent(m.renderDetail())
	}

	prevIdx := m.list.Index()
	var lCmd tea.Cmd
	m.list, lCmd = m.list.Update(msg)
	cmds = append(cmds, lCmd)
	if m.list.Index() != prevIdx {
		m.preview.SetContent(m.renderDetail())
		m.preview.GotoTop()
	}

	var vCmd tea.Cmd
	m.preview, vCmd = m.preview.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Refresh reloads the labeled list from the session.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		records, err := m.port.Labeled(context.Background())
		return LabeledLoadedMsg{Records: records, Err: err}
	}
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Count returns how many labeled records were last loaded.
func (m Model) Count() int { return m.count }

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(recordItem)
	if !ok {
		return theme.Muted.Render("Nothing labeled yet")
	}
	r := item.record
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(r.Subject) + "\n\n")
	sb.WriteString(theme.Muted.Render("from:     ") + r.Sender + "\n")
	sb.WriteString(theme.Muted.Render("date:     ") + r.Date + "\n")
	sb.WriteString(theme.Muted.Render("source:   ") + theme.Label(r.OriginalCategory).Render(r.OriginalCategory) + "\n")
	sb.WriteString(theme.Muted.Render("label:    ") + theme.Label(r.UserClassification).Render(r.UserClassification) + "\n")
	if !r.ClassifiedAt.IsZero() {
		sb.WriteString(theme.Muted.Render("labeled:  ") + r.ClassifiedAt.Local().Format("2006-01-02 15:04:05") + "\n")
	}
	sb.WriteString("\n" + r.Body + "\n")
	return sb.String()
}
