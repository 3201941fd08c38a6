package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "mailsort/internal/modules/session/dto"
	apperrors "mailsort/internal/platform/errors"
	"mailsort/internal/ui/components"
	"mailsort/internal/ui/theme"
	classifyview "mailsort/internal/ui/views/classify"
	labeledview "mailsort/internal/ui/views/labeled"
	statsview "mailsort/internal/ui/views/stats"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type sessionPort interface {
	LoadFiles(ctx context.Context, tag string, paths []string) (sessiondto.LoadFilesOutput, error)
	Current(ctx context.Context) (sessiondto.CurrentOutput, error)
	Classify(ctx context.Context, label string) (sessiondto.ClassifyOutput, error)
	Labeled(ctx context.Context) ([]sessiondto.LabeledRecord, error)
	Export(ctx context.Context, format string) (sessiondto.ExportOutput, error)
	Reset(ctx context.Context) error
	Status(ctx context.Context) (sessiondto.StatusOutput, error)
}

type ingestPort interface {
	Discover(ctx context.Context, root, pattern string) ([]string, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabClassify tabID = iota
	tabLabeled
	tabStats
	tabCount
)

var tabLabels = [tabCount]string{
	"Classify", "Labeled", "Stats",
}

// ─── async messages ───────────────────────────────────────────────────────────

// fileLoadedMsg reports one file of a load batch. Files complete in any order.
type fileLoadedMsg struct {
	path string
	out  sessiondto.LoadFilesOutput
	err  error
}

type discoveredMsg struct {
	tag     string
	pattern string
	paths   []string
	err     error
}

type classifiedMsg struct {
	out sessiondto.ClassifyOutput
	err error
}

type exportedMsg struct {
	out sessiondto.ExportOutput
	err error
}

type resetDoneMsg struct{ err error }

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab      key.Binding
	Help     key.Binding
	Palette  key.Binding
	Quit     key.Binding
	Classify []key.Binding
}

func newKeys(shortcuts map[string]string) keyMap {
	k := keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
	for _, sc := range sortedShortcuts(shortcuts) {
		k.Classify = append(k.Classify,
			key.NewBinding(key.WithKeys(sc[0]), key.WithHelp(sc[0], sc[1])))
	}
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.Classify,
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the load batch
// counter, the global help overlay and the command palette. Labeling logic is
// delegated to the session port; rendering is delegated to sub-views.
type Model struct {
	workspace    string
	exportFormat string
	shortcuts    map[string]string
	session      sessionPort
	ingest       ingestPort
	classifyView classifyview.Model
	labeledView  labeledview.Model
	statsView    statsview.Model
	activeTab    tabID
	keys         keyMap
	help         help.Model
	showHelp     bool
	palette      components.Palette
	pending      int
	batchFiles   int
	batchAdded   int
	batchFailed  []string
	confirmReset bool
	classifying  bool
	progress     string
	status       string
	width        int
	height       int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(
	workspace string,
	exportFormat string,
	shortcuts map[string]string,
	session sessionPort,
	ingest ingestPort,
) Model {
	return Model{
		workspace:    workspace,
		exportFormat: exportFormat,
		shortcuts:    shortcuts,
		session:      session,
		ingest:       ingest,
		classifyView: classifyview.New(session, shortcutLegend(shortcuts)),
		labeledView:  labeledview.New(session),
		statsView:    statsview.New(session),
		activeTab:    tabClassify,
		keys:         newKeys(shortcuts),
		help:         help.New(),
		palette:      components.NewPalette(),
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.classifyView.Init(),
		m.labeledView.Init(),
		m.statsView.Init(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case discoveredMsg:
		if msg.err != nil {
			m.status = "load-dir: " + msg.err.Error()
			return m, nil
		}
		if len(msg.paths) == 0 {
			m.status = "load-dir: no files match " + msg.pattern
			return m, nil
		}
		cmd := m.startLoad(msg.tag, msg.paths)
		return m, cmd

	case fileLoadedMsg:
		return m.fileLoaded(msg)

	case classifyview.CurrentLoadedMsg:
		// Progress lives in the status bar, so the root sees this message too.
		if msg.Err == nil || errors.Is(msg.Err, apperrors.ErrExhausted) {
			m.progress = fmt.Sprintf("%d/%d", msg.Current.Position, msg.Current.Total)
		}
		var cmd tea.Cmd
		m.classifyView, cmd = m.classifyView.Update(msg)
		return m, cmd

	case labeledview.LabeledLoadedMsg:
		var cmd tea.Cmd
		m.labeledView, cmd = m.labeledView.Update(msg)
		return m, cmd

	case statsview.StatusLoadedMsg:
		var cmd tea.Cmd
		m.statsView, cmd = m.statsView.Update(msg)
		return m, cmd

	case classifiedMsg:
		m.classifying = false
		switch {
		case errors.Is(msg.err, apperrors.ErrExhausted):
			m.status = "nothing left to classify"
			return m, nil
		case msg.err != nil:
			m.status = "classify: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("labeled %q as %s", msg.out.Labeled.Subject, msg.out.Labeled.UserClassification)
		if msg.out.Exhausted {
			m.status = "all emails classified; :export to save results"
		}
		if msg.out.Warning != "" {
			m.status += " (" + msg.out.Warning + ")"
		}
		return m, m.refreshAll()

	case exportedMsg:
		switch {
		case errors.Is(msg.err, apperrors.ErrNothingToExport):
			m.status = "nothing to export yet"
		case msg.err != nil:
			m.status = "export: " + msg.err.Error()
		default:
			m.status = fmt.Sprintf("exported %d rows to %s", msg.out.Rows, msg.out.Path)
		}
		return m, nil

	case resetDoneMsg:
		if msg.err != nil {
			m.status = "reset: " + msg.err.Error()
			return m, nil
		}
		m.status = "session cleared"
		return m, m.refreshAll()

	case tea.KeyMsg:
		if m.confirmReset {
			m.confirmReset = false
			if msg.String() == "y" || msg.String() == "Y" {
				m.status = "resetting…"
				return m, m.resetCmd()
			}
			m.status = "reset cancelled"
			return m, nil
		}

		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its search filter is active.
		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, m.refreshActive()
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, m.refreshActive()
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			cmd := m.palette.Open()
			return m, cmd
		}

		if m.activeTab == tabClassify {
			if label, ok := m.shortcuts[msg.String()]; ok {
				return m.classify(label)
			}
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabClassify:
		m.classifyView, tabCmd = m.classifyView.Update(msg)
	case tabLabeled:
		m.labeledView, tabCmd = m.labeledView.Update(msg)
	case tabStats:
		m.statsView, tabCmd = m.statsView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabClassify:
		return m.classifyView.View()
	case tabLabeled:
		return m.labeledView.View()
	case tabStats:
		return m.statsView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "mailsort  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.pending > 0 {
		left = theme.Hot.Render(fmt.Sprintf("● loading %d/%d", m.batchFiles-m.pending, m.batchFiles)) + "  " + left
	} else if m.progress != "" {
		left = theme.Hot.Render("● "+m.progress) + "  " + left
	}
	if m.confirmReset {
		left = theme.Hot.Render("reset all progress? y/n")
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "load":
		if len(parts) < 3 {
			m.status = "usage: load <tag> <path>..."
			return m, nil
		}
		paths := make([]string, 0, len(parts)-2)
		for _, p := range parts[2:] {
			paths = append(paths, m.resolve(p))
		}
		cmd := m.startLoad(parts[1], paths)
		return m, cmd

	case "load-dir":
		if len(parts) < 3 {
			m.status = "usage: load-dir <tag> <pattern> [dir]"
			return m, nil
		}
		root := m.workspace
		if len(parts) >= 4 {
			root = m.resolve(parts[3])
		}
		m.status = "searching " + root
		return m, m.discoverCmd(parts[1], root, parts[2])

	case "classify":
		if len(parts) < 2 {
			m.status = "usage: classify <label>"
			return m, nil
		}
		return m.classify(parts[1])

	case "export":
		format := m.exportFormat
		if len(parts) >= 2 {
			format = parts[1]
		}
		m.status = "exporting…"
		return m, m.exportCmd(format)

	case "reset":
		m.confirmReset = true
		return m, nil

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// startLoad issues one command per file; the batch is finished when the
// pending counter returns to zero.
func (m *Model) startLoad(tag string, paths []string) tea.Cmd {
	if m.pending == 0 {
		m.batchFiles = 0
		m.batchAdded = 0
		m.batchFailed = nil
	}
	m.pending += len(paths)
	m.batchFiles += len(paths)
	m.status = fmt.Sprintf("loading %d file(s) as %s", len(paths), tag)
	cmds := make([]tea.Cmd, 0, len(paths))
	for _, p := range paths {
		cmds = append(cmds, m.loadFileCmd(tag, p))
	}
	return tea.Batch(cmds...)
}

func (m Model) fileLoaded(msg fileLoadedMsg) (tea.Model, tea.Cmd) {
	m.pending--
	failed := msg.err
	if failed == nil && len(msg.out.Files) > 0 && msg.out.Files[0].Err != nil {
		failed = msg.out.Files[0].Err
	}
	if failed != nil {
		m.batchFailed = append(m.batchFailed, filepath.Base(msg.path))
		m.status = filepath.Base(msg.path) + ": " + failed.Error()
	} else {
		m.batchAdded += msg.out.Added
		m.status = fmt.Sprintf("%s: %d emails", filepath.Base(msg.path), msg.out.Added)
		if msg.out.Warning != "" {
			m.status += " (" + msg.out.Warning + ")"
		}
	}
	if m.pending > 0 {
		return m, nil
	}
	m.status = fmt.Sprintf("all files loaded: %d emails from %d file(s)",
		m.batchAdded, m.batchFiles-len(m.batchFailed))
	if len(m.batchFailed) > 0 {
		m.status += fmt.Sprintf(", %d failed (%s)", len(m.batchFailed), strings.Join(m.batchFailed, ", "))
	}
	return m, m.refreshAll()
}

func (m Model) classify(label string) (tea.Model, tea.Cmd) {
	if m.classifying {
		return m, nil
	}
	m.classifying = true
	return m, m.classifyCmd(label)
}

func (m Model) resolve(path string) string {
	if filepath.IsAbs(path) || m.workspace == "" {
		return path
	}
	return filepath.Join(m.workspace, path)
}

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	if m.activeTab == tabLabeled {
		return m.labeledView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.classifyView, _ = m.classifyView.Update(sz)
	m.labeledView, _ = m.labeledView.Update(sz)
	m.statsView, _ = m.statsView.Update(sz)
}

func (m Model) refreshAll() tea.Cmd {
	return tea.Batch(m.classifyView.Refresh(), m.labeledView.Refresh(), m.statsView.Refresh())
}

func (m Model) refreshActive() tea.Cmd {
	switch m.activeTab {
	case tabLabeled:
		return m.labeledView.Refresh()
	case tabStats:
		return m.statsView.Refresh()
	}
	return m.classifyView.Refresh()
}

func sortedShortcuts(shortcuts map[string]string) [][2]string {
	out := make([][2]string, 0, len(shortcuts))
	for k, v := range shortcuts {
		out = append(out, [2]string{k, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func shortcutLegend(shortcuts map[string]string) string {
	parts := make([]string, 0, len(shortcuts))
	for _, sc := range sortedShortcuts(shortcuts) {
		parts = append(parts, sc[0]+":"+sc[1])
	}
	return strings.Join(parts, "  ")
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) loadFileCmd(tag, path string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.LoadFiles(context.Background(), tag, []string{path})
		return fileLoadedMsg{path: path, out: out, err: err}
	}
}

func (m Model) discoverCmd(tag, root, pattern string) tea.Cmd {
	return func() tea.Msg {
		if m.ingest == nil {
			return discoveredMsg{err: fmt.Errorf("ingest adapter not configured")}
		}
		paths, err := m.ingest.Discover(context.Background(), root, pattern)
		return discoveredMsg{tag: tag, pattern: pattern, paths: paths, err: err}
	}
}

func (m Model) classifyCmd(label string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Classify(context.Background(), label)
		return classifiedMsg{out: out, err: err}
	}
}

func (m Model) exportCmd(format string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Export(context.Background(), format)
		return exportedMsg{out: out, err: err}
	}
}

func (m Model) resetCmd() tea.Cmd {
	return func() tea.Msg {
		return resetDoneMsg{err: m.session.Reset(context.Background())}
	}
}
