package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	exportout "mailsort/internal/modules/export/adapter/out"
	exportservice "mailsort/internal/modules/export/service"
	exportusecase "mailsort/internal/modules/export/usecase"
	ingestout "mailsort/internal/modules/ingest/adapter/out"
	ingestservice "mailsort/internal/modules/ingest/service"
	ingestusecase "mailsort/internal/modules/ingest/usecase"
	sessionout "mailsort/internal/modules/session/adapter/out"
	sessiondto "mailsort/internal/modules/session/dto"
	sessionin "mailsort/internal/modules/session/port/in"
	portout "mailsort/internal/modules/session/port/out"
	"mailsort/internal/modules/session/service"
	"mailsort/internal/modules/session/usecase"
	apperrors "mailsort/internal/platform/errors"
)

const sessionKey = "email_classification_session"

type fakeClock struct {
	values []time.Time
	idx    int
}

func (f *fakeClock) Now() time.Time {
	if f.idx >= len(f.values) {
		return f.values[len(f.values)-1]
	}
	v := f.values[f.idx]
	f.idx++
	return v
}

type fakeID struct{}

func (fakeID) New() string { return "batch-1" }

type failingStore struct {
	portout.StateStore
}

func (failingStore) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

type lockedStore struct {
	portout.StateStore
}

func (lockedStore) Delete(context.Context, string) error {
	return errors.New("locked")
}

func newInteractor(t *testing.T, workspace string, store portout.StateStore) sessionin.Usecase {
	t.Helper()
	clk := &fakeClock{values: []time.Time{time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}}
	jsonReader, err := ingestout.NewJSONTableReader("$")
	if err != nil {
		t.Fatalf("json reader: %v", err)
	}
	ingest := ingestusecase.NewInteractor(ingestservice.NewIngestService(
		ingestout.NewLocalTextReader(),
		ingestout.NewXLSXTableReader(),
		jsonReader,
		ingestout.NewGlobDiscoverer(),
		nil,
	), 2)
	export := exportusecase.NewInteractor(exportservice.NewExportService(
		clk, fakeID{}, workspace, nil, exportout.NewCSVFileStore(), exportout.NewXLSXFileStore(),
	))
	persister := service.NewPersister(store, sessionKey, nil)
	svc := service.NewSessionService(clk, fakeID{}, persister, nil)
	svc.OnCommit(persister.Save)
	return usecase.NewInteractor(svc, ingest, export)
}

func TestClassifyScenarioPersistsAndRestores(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	store := sessionout.NewFileStateStore(filepath.Join(ws, "state"))
	uc := newInteractor(t, ws, store)
	ctx := context.Background()

	loaded, err := uc.LoadText(ctx, sessiondto.LoadTextInput{
		Text: "subject,sender,body,date\n\"Hi\",\"a@b.com\",\"Hello\",\"2024-01-01\"",
		Tag:  "spam",
		Name: "spam.csv",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Added != 1 || loaded.Total != 1 || loaded.Warning != "" {
		t.Fatalf("unexpected load output %+v", loaded)
	}
	current, err := uc.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.Record.Sender != "a@b.com" || current.Record.OriginalCategory != "spam" {
		t.Fatalf("unexpected current %+v", current)
	}

	out, err := uc.Classify(ctx, sessiondto.ClassifyInput{Label: "legitimate"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if out.Cursor != 1 || !out.Exhausted || out.Labeled.UserClassification != "legitimate" || out.Labeled.OriginalCategory != "spam" {
		t.Fatalf("unexpected classify output %+v", out)
	}
	if _, err := uc.Current(ctx); err != apperrors.ErrExhausted {
		t.Fatalf("expected exhausted, got %v", err)
	}

	fresh := newInteractor(t, ws, store)
	status, err := fresh.Restore(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if status.Total != 1 || status.Labeled != 1 || status.Cursor != 1 || !status.Exhausted {
		t.Fatalf("unexpected restored status %+v", status)
	}
	labeled, err := fresh.Labeled(ctx)
	if err != nil {
		t.Fatalf("labeled: %v", err)
	}
	if len(labeled) != 1 || labeled[0].UserClassification != "legitimate" {
		t.Fatalf("unexpected labeled %+v", labeled)
	}
}

func TestClassifyErrors(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	uc := newInteractor(t, ws, sessionout.NewFileStateStore(filepath.Join(ws, "state")))
	ctx := context.Background()
	if _, err := uc.Classify(ctx, sessiondto.ClassifyInput{Label: "phishing"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid label, got %v", err)
	}
	if _, err := uc.Classify(ctx, sessiondto.ClassifyInput{Label: "spam"}); err != apperrors.ErrExhausted {
		t.Fatalf("expected exhausted on empty session, got %v", err)
	}
	if _, err := uc.LoadText(ctx, sessiondto.LoadTextInput{Text: "subject\nx", Tag: "receipt"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("receipt is not a source tag, got %v", err)
	}
}

func TestLoadFilesAppendsInInputOrderAndIsolatesFailures(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	spam := filepath.Join(ws, "spam.csv")
	broken := filepath.Join(ws, "broken.csv")
	promo := filepath.Join(ws, "promo.csv")
	for path, content := range map[string]string{
		spam:   "subject,sender\nWin,x@spam.io\n",
		broken: "",
		promo:  "subject,from\nSale,shop@store.com\nMore,shop@store.com\n",
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	uc := newInteractor(t, ws, sessionout.NewFileStateStore(filepath.Join(ws, "state")))
	out, err := uc.LoadFiles(context.Background(), sessiondto.LoadFilesInput{Files: []sessiondto.FileInput{
		{Path: promo, Tag: "promotional"},
		{Path: broken, Tag: "legitimate"},
		{Path: spam, Tag: "spam"},
	}})
	if err != nil {
		t.Fatalf("load files: %v", err)
	}
	if out.BatchID != "batch-1" || out.Loaded != 2 || out.Failed != 1 || out.Added != 3 || out.Total != 3 {
		t.Fatalf("unexpected load report %+v", out)
	}
	if out.Files[1].Err == nil {
		t.Fatalf("broken file must carry its error")
	}
	current, err := uc.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.Record.Subject != "Sale" || current.Record.OriginalCategory != "promotional" {
		t.Fatalf("first record must come from the first file, got %+v", current.Record)
	}
}

func TestResetClearsStateAndPersistedSlot(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	store := sessionout.NewFileStateStore(filepath.Join(ws, "state"))
	uc := newInteractor(t, ws, store)
	ctx := context.Background()
	if _, err := uc.LoadText(ctx, sessiondto.LoadTextInput{Text: "subject\na\nb", Tag: "spam"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := uc.Classify(ctx, sessiondto.ClassifyInput{Label: "spam"}); err != nil {
		t.Fatalf("classify: %v", err)
	}
	if err := uc.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	status, err := uc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Total != 0 || status.Cursor != 0 || status.Labeled != 0 {
		t.Fatalf("reset left state %+v", status)
	}
	if _, err := store.Get(ctx, sessionKey); err != apperrors.ErrNotFound {
		t.Fatalf("persisted state must be removed, got %v", err)
	}
	if _, err := uc.Restore(ctx); err != apperrors.ErrNothingToRestore {
		t.Fatalf("expected nothing to restore, got %v", err)
	}
}

func TestResetKeepsSessionWhenStateCannotBeCleared(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	store := lockedStore{StateStore: sessionout.NewFileStateStore(filepath.Join(ws, "state"))}
	uc := newInteractor(t, ws, store)
	ctx := context.Background()
	if _, err := uc.LoadText(ctx, sessiondto.LoadTextInput{Text: "subject\na", Tag: "spam"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := uc.Reset(ctx); err == nil || !strings.Contains(err.Error(), "locked") {
		t.Fatalf("expected reset to fail, got %v", err)
	}
	status, err := uc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Total != 1 {
		t.Fatalf("failed reset must leave the live session intact, got %+v", status)
	}
	restored, err := newInteractor(t, ws, store).Restore(ctx)
	if err != nil || restored.Total != status.Total {
		t.Fatalf("persisted state should match the live session, got %+v (%v)", restored, err)
	}
}

func TestRestoreSwallowsUnreadableState(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	dir := filepath.Join(ws, "state")
	if err := os.MkdirAll(filepath.Join(dir, sessionKey+".json"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	uc := newInteractor(t, ws, sessionout.NewFileStateStore(dir))
	if _, err := uc.Restore(context.Background()); !errors.Is(err, apperrors.ErrNothingToRestore) {
		t.Fatalf("expected nothing to restore, got %v", err)
	}
}

func TestRestoreSwallowsCorruptState(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	store := sessionout.NewFileStateStore(filepath.Join(ws, "state"))
	ctx := context.Background()
	for _, payload := range []string{`{not json`, `{"records":[],"cursor":0}`, `{"records":[{"subject":"a"}],"cursor":5}`} {
		if err := store.Put(ctx, sessionKey, []byte(payload)); err != nil {
			t.Fatalf("put: %v", err)
		}
		if _, err := newInteractor(t, ws, store).Restore(ctx); err != apperrors.ErrNothingToRestore {
			t.Fatalf("payload %s: expected nothing to restore, got %v", payload, err)
		}
	}
}

func TestPersistFailureIsReportedAsWarning(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	uc := newInteractor(t, ws, failingStore{StateStore: sessionout.NewFileStateStore(filepath.Join(ws, "state"))})
	ctx := context.Background()
	loaded, err := uc.LoadText(ctx, sessiondto.LoadTextInput{Text: "subject\na", Tag: "legitimate"})
	if err != nil {
		t.Fatalf("load must succeed in memory: %v", err)
	}
	if !strings.Contains(loaded.Warning, "disk full") {
		t.Fatalf("expected persistence warning, got %q", loaded.Warning)
	}
	out, err := uc.Classify(ctx, sessiondto.ClassifyInput{Label: "notification"})
	if err != nil {
		t.Fatalf("classify must succeed in memory: %v", err)
	}
	if out.Cursor != 1 || out.Warning == "" {
		t.Fatalf("unexpected classify output %+v", out)
	}
}

func TestExportWritesLabeledRowsInClassificationOrder(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	uc := newInteractor(t, ws, sessionout.NewFileStateStore(filepath.Join(ws, "state")))
	ctx := context.Background()
	if _, err := uc.Export(ctx, sessiondto.ExportInput{}); err != apperrors.ErrNothingToExport {
		t.Fatalf("expected nothing to export, got %v", err)
	}
	if _, err := uc.LoadText(ctx, sessiondto.LoadTextInput{Text: "subject,sender\nfirst,a@b.com\nsecond,c@d.com\nthird,e@f.com", Tag: "spam"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, label := range []string{"spam", "receipt"} {
		if _, err := uc.Classify(ctx, sessiondto.ClassifyInput{Label: label}); err != nil {
			t.Fatalf("classify: %v", err)
		}
	}
	text, err := uc.ExportText(ctx)
	if err != nil {
		t.Fatalf("export text: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[2], `"second","c@d.com"`) || !strings.HasSuffix(lines[2], `"spam","receipt"`) {
		t.Fatalf("unexpected export text %q", text)
	}
	out, err := uc.Export(ctx, sessiondto.ExportInput{Format: "csv"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out.Rows != 2 || out.Path != filepath.Join(ws, "email_classifications_2024-01-01.csv") {
		t.Fatalf("unexpected export output %+v", out)
	}
}

func TestConcurrentClassifyKeepsCursorConsistent(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	uc := newInteractor(t, ws, sessionout.NewFileStateStore(filepath.Join(ws, "state")))
	ctx := context.Background()
	var b strings.Builder
	b.WriteString("subject\n")
	for i := 0; i < 20; i++ {
		b.WriteString("mail\n")
	}
	if _, err := uc.LoadText(ctx, sessiondto.LoadTextInput{Text: b.String(), Tag: "legitimate"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.Classify(ctx, sessiondto.ClassifyInput{Label: "spam"})
		}()
	}
	wg.Wait()
	status, err := uc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Cursor != 20 || status.Labeled != 20 || !status.Exhausted {
		t.Fatalf("unexpected status %+v", status)
	}
}
