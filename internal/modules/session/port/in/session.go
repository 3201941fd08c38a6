package in

import (
	"context"

	"mailsort/internal/modules/session/dto"
)

type Usecase interface {
	LoadText(ctx context.Context, input dto.LoadTextInput) (dto.LoadOutput, error)
	LoadFiles(ctx context.Context, input dto.LoadFilesInput) (dto.LoadFilesOutput, error)
	Current(ctx context.Context) (dto.CurrentOutput, error)
	Classify(ctx context.Context, input dto.ClassifyInput) (dto.ClassifyOutput, error)
	Labeled(ctx context.Context) ([]dto.LabeledRecord, error)
	ExportText(ctx context.Context) (string, error)
	Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
	Reset(ctx context.Context) error
	Persist(ctx context.Context) error
	Restore(ctx context.Context) (dto.StatusOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
}
