package in

import (
	"context"

	sessiondto "mailsort/internal/modules/session/dto"
	sessionin "mailsort/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) LoadFiles(ctx context.Context, tag string, paths []string) (sessiondto.LoadFilesOutput, error) {
	files := make([]sessiondto.FileInput, 0, len(paths))
	for _, p := range paths {
		files = append(files, sessiondto.FileInput{Path: p, Tag: tag})
	}
	return h.usecase.LoadFiles(ctx, sessiondto.LoadFilesInput{Files: files})
}

func (h CLIHandler) LoadText(ctx context.Context, text, tag, name string) (sessiondto.LoadOutput, error) {
	return h.usecase.LoadText(ctx, sessiondto.LoadTextInput{Text: text, Tag: tag, Name: name})
}

func (h CLIHandler) Current(ctx context.Context) (sessiondto.CurrentOutput, error) {
	return h.usecase.Current(ctx)
}

func (h CLIHandler) Classify(ctx context.Context, label string) (sessiondto.ClassifyOutput, error) {
	return h.usecase.Classify(ctx, sessiondto.ClassifyInput{Label: label})
}

func (h CLIHandler) Labeled(ctx context.Context) ([]sessiondto.LabeledRecord, error) {
	return h.usecase.Labeled(ctx)
}

func (h CLIHandler) Export(ctx context.Context, format string) (sessiondto.ExportOutput, error) {
	return h.usecase.Export(ctx, sessiondto.ExportInput{Format: format})
}

func (h CLIHandler) ExportText(ctx context.Context) (string, error) {
	return h.usecase.ExportText(ctx)
}

func (h CLIHandler) Reset(ctx context.Context) error {
	return h.usecase.Reset(ctx)
}

func (h CLIHandler) Restore(ctx context.Context) (sessiondto.StatusOutput, error) {
	return h.usecase.Restore(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (sessiondto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}
