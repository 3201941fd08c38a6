package in

import (
	"context"

	"mailsort/internal/modules/cleaner/dto"
	cleanerin "mailsort/internal/modules/cleaner/port/in"
)

type CLIHandler struct {
	usecase cleanerin.Usecase
}

func NewCLIHandler(usecase cleanerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Clean(ctx context.Context, in, out string) (dto.CleanOutput, error) {
	return h.usecase.CleanFile(ctx, dto.CleanInput{In: in, Out: out})
}
