package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	ingestout "mailsort/internal/modules/ingest/port/out"
)

type GlobDiscoverer struct{}

func NewGlobDiscoverer() ingestout.Discoverer {
	return GlobDiscoverer{}
}

// Discover returns regular files under root matching pattern, which may use **.
func (GlobDiscoverer) Discover(ctx context.Context, root, pattern string) ([]string, error) {
	if pattern == "" {
		return nil, fmt.Errorf("file pattern is required (e.g. **/*.csv)")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	matches, err := doublestar.FilepathGlob(filepath.Join(absRoot, pattern))
	if err != nil {
		return nil, fmt.Errorf("pattern matching failed: %w", err)
	}
	files := make([]string, 0, len(matches))
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, match)
	}
	sort.Strings(files)
	return files, nil
}
