package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	sessionout "mailsort/internal/modules/session/port/out"
	apperrors "mailsort/internal/platform/errors"
)

// FileStateStore keeps each key in <dir>/<key>.json.
type FileStateStore struct {
	dir string
}

func NewFileStateStore(dir string) sessionout.StateStore {
	return &FileStateStore{dir: dir}
}

func (s *FileStateStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStateStore) Put(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("replace session state: %w", err)
	}
	return nil
}

func (s *FileStateStore) Get(_ context.Context, key string) ([]byte, error) {
	payload, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("read session state: %w", err)
	}
	return payload, nil
}

func (s *FileStateStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear session state: %w", err)
	}
	return nil
}
