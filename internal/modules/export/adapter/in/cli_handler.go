package in

import (
	"context"

	"mailsort/internal/modules/export/dto"
	exportin "mailsort/internal/modules/export/port/in"
)

type CLIHandler struct {
	usecase exportin.Usecase
}

func NewCLIHandler(usecase exportin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Inspect(ctx context.Context, path string) (dto.InspectOutput, error) {
	return h.usecase.Inspect(ctx, path)
}
