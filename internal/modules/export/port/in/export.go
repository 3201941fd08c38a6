package in

import (
	"context"

	"mailsort/internal/modules/export/dto"
)

type Usecase interface {
	Render(ctx context.Context, rows []dto.Row) (string, error)
	Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
	Inspect(ctx context.Context, path string) (dto.InspectOutput, error)
}
