package usecase

import (
	"context"

	"mailsort/internal/modules/export/domain"
	"mailsort/internal/modules/export/dto"
	exportin "mailsort/internal/modules/export/port/in"
	"mailsort/internal/modules/export/service"
)

type Interactor struct {
	svc *service.ExportService
}

func NewInteractor(svc *service.ExportService) exportin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Render(_ context.Context, rows []dto.Row) (string, error) {
	return domain.Serialize(toDomain(rows))
}

func (i *Interactor) Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error) {
	result, err := i.svc.Export(ctx, toDomain(input.Rows), domain.Format(input.Format))
	if err != nil {
		return dto.ExportOutput{}, err
	}
	return dto.ExportOutput{ID: result.ID, Path: result.Path, Format: string(result.Format), Rows: result.Rows}, nil
}

func (i *Interactor) Inspect(ctx context.Context, path string) (dto.InspectOutput, error) {
	summary, err := i.svc.Inspect(ctx, path)
	if err != nil {
		return dto.InspectOutput{}, err
	}
	return dto.InspectOutput{
		Path:       path,
		Total:      summary.Total,
		ByLabel:    summary.ByLabel,
		BySource:   summary.BySource,
		Agreements: summary.Agreements,
	}, nil
}

func toDomain(rows []dto.Row) []domain.Row {
	out := make([]domain.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Row{
			Subject:            r.Subject,
			Sender:             r.Sender,
			Body:               r.Body,
			Date:               r.Date,
			OriginalCategory:   r.OriginalCategory,
			UserClassification: r.UserClassification,
		})
	}
	return out
}
