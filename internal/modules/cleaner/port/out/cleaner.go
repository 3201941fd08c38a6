package out

import (
	"context"
	"io"
)

type FileSystem interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Create(ctx context.Context, path string) (io.WriteCloser, error)
}
