package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mailsort/internal/modules/export/domain"
	exportout "mailsort/internal/modules/export/port/out"
)

type CSVFileStore struct{}

func NewCSVFileStore() exportout.FileStore {
	return CSVFileStore{}
}

func (CSVFileStore) Format() domain.Format { return domain.FormatCSV }

func (CSVFileStore) Write(_ context.Context, path string, rows []domain.Row) error {
	text, err := domain.Serialize(rows)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

func (CSVFileStore) Read(_ context.Context, path string) ([]domain.Row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return domain.ParseExport(string(raw))
}
