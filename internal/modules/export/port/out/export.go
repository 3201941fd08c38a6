package out

import (
	"context"

	"mailsort/internal/modules/export/domain"
)

// FileStore writes and reads one export file format.
type FileStore interface {
	Format() domain.Format
	Write(ctx context.Context, path string, rows []domain.Row) error
	Read(ctx context.Context, path string) ([]domain.Row, error)
}
