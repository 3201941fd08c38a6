package in

import (
	"context"

	"mailsort/internal/modules/cleaner/dto"
)

type Usecase interface {
	CleanFile(ctx context.Context, input dto.CleanInput) (dto.CleanOutput, error)
}
