package in

import (
	"context"

	"mailsort/internal/modules/ingest/dto"
	ingestin "mailsort/internal/modules/ingest/port/in"
)

type CLIHandler struct {
	usecase ingestin.Usecase
}

func NewCLIHandler(usecase ingestin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Preview parses a file without touching the session.
func (h CLIHandler) Preview(ctx context.Context, path, tag string) (dto.FileResult, error) {
	return h.usecase.ParseFile(ctx, dto.FileInput{Path: path, Tag: tag})
}

func (h CLIHandler) Discover(ctx context.Context, root, pattern string) ([]string, error) {
	return h.usecase.Discover(ctx, dto.DiscoverInput{Root: root, Pattern: pattern})
}
