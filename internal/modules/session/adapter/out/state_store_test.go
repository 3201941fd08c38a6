package out_test

import (
	"context"
	"path/filepath"
	"testing"

	sessionout "mailsort/internal/modules/session/adapter/out"
	portout "mailsort/internal/modules/session/port/out"
	apperrors "mailsort/internal/platform/errors"
)

func exerciseStore(t *testing.T, store portout.StateStore) {
	t.Helper()
	ctx := context.Background()
	if _, err := store.Get(ctx, "email_classification_session"); err != apperrors.ErrNotFound {
		t.Fatalf("expected not found on empty store, got %v", err)
	}
	if err := store.Put(ctx, "email_classification_session", []byte(`{"cursor":0}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "email_classification_session", []byte(`{"cursor":1}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := store.Get(ctx, "email_classification_session")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"cursor":1}` {
		t.Fatalf("unexpected value %s", got)
	}
	if err := store.Delete(ctx, "email_classification_session"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "email_classification_session"); err != nil {
		t.Fatalf("delete must be idempotent: %v", err)
	}
	if _, err := store.Get(ctx, "email_classification_session"); err != apperrors.ErrNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestFileStateStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, sessionout.NewFileStateStore(filepath.Join(t.TempDir(), "state")))
}

func TestSQLiteStateStore(t *testing.T) {
	t.Parallel()
	store, err := sessionout.NewSQLiteStateStore(filepath.Join(t.TempDir(), ".mailsort", "mailsort.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()
	exerciseStore(t, store)
}
