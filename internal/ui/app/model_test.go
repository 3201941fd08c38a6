package app

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	sessiondto "mailsort/internal/modules/session/dto"
	apperrors "mailsort/internal/platform/errors"
	"mailsort/internal/ui/components"
)

type fakeSession struct {
	mu       sync.Mutex
	loaded   []string
	labels   []string
	resets   int
	failPath string
}

func (f *fakeSession) LoadFiles(_ context.Context, tag string, paths []string) (sessiondto.LoadFilesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := sessiondto.LoadFilesOutput{}
	for _, p := range paths {
		if p == f.failPath {
			out.Files = append(out.Files, sessiondto.FileLoad{Path: p, Tag: tag, Err: apperrors.ErrInvalidInput})
			out.Failed++
			continue
		}
		f.loaded = append(f.loaded, p)
		out.Files = append(out.Files, sessiondto.FileLoad{Path: p, Tag: tag, Records: 2})
		out.Loaded++
		out.Added += 2
	}
	return out, nil
}

func (f *fakeSession) Current(context.Context) (sessiondto.CurrentOutput, error) {
	return sessiondto.CurrentOutput{}, apperrors.ErrExhausted
}

func (f *fakeSession) Classify(_ context.Context, label string) (sessiondto.ClassifyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels = append(f.labels, label)
	return sessiondto.ClassifyOutput{Labeled: sessiondto.LabeledRecord{Record: sessiondto.Record{Subject: "s", UserClassification: label}}}, nil
}

func (f *fakeSession) Labeled(context.Context) ([]sessiondto.LabeledRecord, error) { return nil, nil }

func (f *fakeSession) Export(context.Context, string) (sessiondto.ExportOutput, error) {
	return sessiondto.ExportOutput{}, apperrors.ErrNothingToExport
}

func (f *fakeSession) Reset(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return nil
}

func (f *fakeSession) Status(context.Context) (sessiondto.StatusOutput, error) {
	return sessiondto.StatusOutput{}, nil
}

type fakeIngest struct{ paths []string }

func (f fakeIngest) Discover(context.Context, string, string) ([]string, error) {
	return f.paths, nil
}

func newTestModel(session *fakeSession) Model {
	return NewModel("/ws", "csv", map[string]string{"1": "spam", "2": "promotional"}, session, fakeIngest{paths: []string{"/ws/a.csv"}})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// collect runs a command tree and returns the leaf messages, skipping the
// refresh messages produced by sub-views.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func TestLoadReportsAllFilesLoadedWhenPendingReachesZero(t *testing.T) {
	t.Parallel()
	session := &fakeSession{failPath: "/ws/bad.csv"}
	m := newTestModel(session)

	m, cmd := update(t, m, components.PaletteSubmitMsg{Input: "load spam a.csv /abs/b.csv bad.csv"})
	if m.pending != 3 {
		t.Fatalf("expected 3 pending files, got %d", m.pending)
	}
	msgs := collect(cmd)
	// Deliver completions in reverse to mimic out-of-order arrival.
	for i := len(msgs) - 1; i >= 0; i-- {
		done, ok := msgs[i].(fileLoadedMsg)
		if !ok {
			t.Fatalf("unexpected message %T", msgs[i])
		}
		m, _ = update(t, m, done)
		if i > 0 && strings.HasPrefix(m.status, "all files loaded") {
			t.Fatalf("batch reported complete with %d pending", m.pending)
		}
	}
	if m.pending != 0 {
		t.Fatalf("pending should be zero, got %d", m.pending)
	}
	if !strings.HasPrefix(m.status, "all files loaded: 4 emails from 2 file(s), 1 failed (bad.csv)") {
		t.Fatalf("unexpected status %q", m.status)
	}
	if len(session.loaded) != 2 || session.loaded[0] == "a.csv" {
		t.Fatalf("relative paths should resolve against the workspace: %v", session.loaded)
	}
}

func TestLoadDirDiscoversThenLoads(t *testing.T) {
	t.Parallel()
	m := newTestModel(&fakeSession{})
	m, cmd := update(t, m, components.PaletteSubmitMsg{Input: "load-dir legitimate **/*.csv"})
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one discovery message, got %d", len(msgs))
	}
	m, cmd = update(t, m, msgs[0])
	if m.pending != 1 || cmd == nil {
		t.Fatalf("expected one pending load, got %d", m.pending)
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	t.Parallel()
	session := &fakeSession{}
	m := newTestModel(session)

	m, _ = update(t, m, components.PaletteSubmitMsg{Input: "reset"})
	if !m.confirmReset {
		t.Fatalf("reset should ask for confirmation")
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if cmd != nil || m.confirmReset || m.status != "reset cancelled" {
		t.Fatalf("declined reset should be a no-op, status %q", m.status)
	}

	m, _ = update(t, m, components.PaletteSubmitMsg{Input: "reset"})
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	for _, msg := range collect(cmd) {
		m, _ = update(t, m, msg)
	}
	if session.resets != 1 || m.status != "session cleared" {
		t.Fatalf("expected one reset, got %d (status %q)", session.resets, m.status)
	}
}

func TestShortcutClassifiesOnClassifyTab(t *testing.T) {
	t.Parallel()
	session := &fakeSession{}
	m := newTestModel(session)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one classify message, got %d", len(msgs))
	}
	m, _ = update(t, m, msgs[0])
	if len(session.labels) != 1 || session.labels[0] != "promotional" {
		t.Fatalf("unexpected labels %v", session.labels)
	}
	if !strings.Contains(m.status, "promotional") {
		t.Fatalf("unexpected status %q", m.status)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	for _, msg := range collect(cmd) {
		if _, ok := msg.(classifiedMsg); ok {
			t.Fatalf("shortcuts must only fire on the classify tab")
		}
	}
}

func TestPaletteReachesAllLabelsAndReportsEmptyExport(t *testing.T) {
	t.Parallel()
	session := &fakeSession{}
	m := newTestModel(session)

	m, cmd := update(t, m, components.PaletteSubmitMsg{Input: "classify receipt"})
	for _, msg := range collect(cmd) {
		m, _ = update(t, m, msg)
	}
	if len(session.labels) != 1 || session.labels[0] != "receipt" {
		t.Fatalf("unexpected labels %v", session.labels)
	}

	m, cmd = update(t, m, components.PaletteSubmitMsg{Input: "export"})
	for _, msg := range collect(cmd) {
		m, _ = update(t, m, msg)
	}
	if m.status != "nothing to export yet" {
		t.Fatalf("unexpected status %q", m.status)
	}
}
