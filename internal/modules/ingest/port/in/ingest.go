package in

import (
	"context"

	"mailsort/internal/modules/ingest/dto"
)

type Usecase interface {
	ParseText(ctx context.Context, input dto.ParseTextInput) ([]dto.RecordOutput, error)
	ParseFile(ctx context.Context, input dto.FileInput) (dto.FileResult, error)
	ParseFiles(ctx context.Context, inputs []dto.FileInput) ([]dto.FileResult, error)
	Discover(ctx context.Context, input dto.DiscoverInput) ([]string, error)
}
