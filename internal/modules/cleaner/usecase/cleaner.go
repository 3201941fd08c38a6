package usecase

import (
	"context"
	"fmt"
	"strings"

	"mailsort/internal/modules/cleaner/dto"
	cleanerin "mailsort/internal/modules/cleaner/port/in"
	"mailsort/internal/modules/cleaner/service"
	apperrors "mailsort/internal/platform/errors"
)

type Interactor struct {
	svc *service.CleanerService
}

func NewInteractor(svc *service.CleanerService) cleanerin.Usecase {
	return &Interactor{svc: svc}
}

// CleanFile writes to input.Out, or next to the input as <name>_cleaned.csv.
func (i *Interactor) CleanFile(ctx context.Context, input dto.CleanInput) (dto.CleanOutput, error) {
	if strings.TrimSpace(input.In) == "" {
		return dto.CleanOutput{}, fmt.Errorf("%w: input file is required", apperrors.ErrInvalidInput)
	}
	if !strings.HasSuffix(strings.ToLower(input.In), ".csv") {
		return dto.CleanOutput{}, fmt.Errorf("%w: input file must be a CSV file", apperrors.ErrInvalidInput)
	}
	out := input.Out
	if out == "" {
		out = input.In[:len(input.In)-len(".csv")] + "_cleaned.csv"
	}
	if out == input.In {
		return dto.CleanOutput{}, fmt.Errorf("%w: output must differ from input", apperrors.ErrInvalidInput)
	}
	report, err := i.svc.CleanFile(ctx, input.In, out)
	if err != nil {
		return dto.CleanOutput{}, err
	}
	return dto.CleanOutput{In: input.In, Out: out, Processed: report.Processed, Skipped: report.Skipped}, nil
}
