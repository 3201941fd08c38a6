package out

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	cleanerout "mailsort/internal/modules/cleaner/port/out"
)

type LocalFileSystem struct{}

func NewLocalFileSystem() cleanerout.FileSystem {
	return LocalFileSystem{}
}

func (LocalFileSystem) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func (LocalFileSystem) Create(_ context.Context, path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}
