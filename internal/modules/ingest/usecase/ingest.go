package usecase

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"mailsort/internal/modules/ingest/domain"
	"mailsort/internal/modules/ingest/dto"
	ingestin "mailsort/internal/modules/ingest/port/in"
	"mailsort/internal/modules/ingest/service"
	apperrors "mailsort/internal/platform/errors"
)

type Interactor struct {
	svc         *service.IngestService
	concurrency int
}

func NewInteractor(svc *service.IngestService, concurrency int) ingestin.Usecase {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Interactor{svc: svc, concurrency: concurrency}
}

func (i *Interactor) ParseText(_ context.Context, input dto.ParseTextInput) ([]dto.RecordOutput, error) {
	if strings.TrimSpace(input.Tag) == "" {
		return nil, fmt.Errorf("%w: source tag is required", apperrors.ErrInvalidInput)
	}
	emails, err := i.svc.ParseText(input.Text, input.Tag, input.Name)
	if err != nil {
		return nil, err
	}
	return toOutputs(emails), nil
}

func (i *Interactor) ParseFile(ctx context.Context, input dto.FileInput) (dto.FileResult, error) {
	if strings.TrimSpace(input.Path) == "" {
		return dto.FileResult{}, fmt.Errorf("%w: file path is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(input.Tag) == "" {
		return dto.FileResult{}, fmt.Errorf("%w: source tag is required", apperrors.ErrInvalidInput)
	}
	parsed, err := i.svc.ParseFile(ctx, input.Path, input.Tag)
	if err != nil {
		return dto.FileResult{}, err
	}
	return dto.FileResult{
		Path:        input.Path,
		Tag:         input.Tag,
		Format:      string(parsed.Format),
		Compression: parsed.Compression,
		Records:     toOutputs(parsed.Emails),
	}, nil
}

// ParseFiles parses every input concurrently. Each result carries its own
// error so one bad file never hides the others; results keep input order.
func (i *Interactor) ParseFiles(ctx context.Context, inputs []dto.FileInput) ([]dto.FileResult, error) {
	results := make([]dto.FileResult, len(inputs))
	var g errgroup.Group
	g.SetLimit(i.concurrency)
	for idx, input := range inputs {
		idx, input := idx, input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[idx] = dto.FileResult{Path: input.Path, Tag: input.Tag, Err: err}
				return nil
			}
			res, err := i.ParseFile(ctx, input)
			if err != nil {
				res = dto.FileResult{Path: input.Path, Tag: input.Tag, Err: err}
			}
			results[idx] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (i *Interactor) Discover(ctx context.Context, input dto.DiscoverInput) ([]string, error) {
	root := input.Root
	if root == "" {
		root = "."
	}
	return i.svc.Discover(ctx, root, input.Pattern)
}

func toOutputs(emails []domain.Email) []dto.RecordOutput {
	out := make([]dto.RecordOutput, 0, len(emails))
	for _, e := range emails {
		out = append(out, dto.RecordOutput{
			Subject:          e.Subject,
			Sender:           e.Sender,
			Body:             e.Body,
			Date:             e.Date,
			OriginalCategory: e.Tag,
		})
	}
	return out
}
