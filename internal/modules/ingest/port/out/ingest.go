package out

import (
	"context"

	"mailsort/internal/modules/ingest/domain"
)

// TextReader returns file content with any compression removed.
type TextReader interface {
	ReadText(ctx context.Context, path string) (domain.RawFile, error)
}

type TableReader interface {
	ReadTable(ctx context.Context, path string) (domain.Table, error)
}

type Discoverer interface {
	Discover(ctx context.Context, root, pattern string) ([]string, error)
}
