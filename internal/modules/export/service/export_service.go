package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"mailsort/internal/modules/export/domain"
	exportout "mailsort/internal/modules/export/port/out"
	"mailsort/internal/platform/clock"
	apperrors "mailsort/internal/platform/errors"
	"mailsort/internal/platform/id"
	"mailsort/internal/platform/logging"
)

type Result struct {
	ID     string
	Path   string
	Format domain.Format
	Rows   int
}

type ExportService struct {
	clock  clock.Clock
	idGen  id.Generator
	dir    string
	stores map[domain.Format]exportout.FileStore
	logger *zap.Logger
}

func NewExportService(clock clock.Clock, idGen id.Generator, dir string, logger *zap.Logger, stores ...exportout.FileStore) *ExportService {
	byFormat := make(map[domain.Format]exportout.FileStore, len(stores))
	for _, s := range stores {
		byFormat[s.Format()] = s
	}
	return &ExportService{clock: clock, idGen: idGen, dir: dir, stores: byFormat, logger: logging.OrNop(logger)}
}

func (s *ExportService) Export(ctx context.Context, rows []domain.Row, format domain.Format) (Result, error) {
	if len(rows) == 0 {
		return Result{}, apperrors.ErrNothingToExport
	}
	if format == "" {
		format = domain.FormatCSV
	}
	store, ok := s.stores[format]
	if !ok {
		return Result{}, fmt.Errorf("%w: unsupported export format %q", apperrors.ErrInvalidInput, format)
	}
	path := filepath.Join(s.dir, domain.FileName(s.clock.Now(), format))
	if err := store.Write(ctx, path, rows); err != nil {
		return Result{}, err
	}
	result := Result{ID: s.idGen.New(), Path: path, Format: format, Rows: len(rows)}
	s.logger.Info("exported classifications",
		zap.String("export_id", result.ID),
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("rows", len(rows)),
	)
	return result, nil
}

func (s *ExportService) Inspect(ctx context.Context, path string) (domain.Summary, error) {
	format := domain.FormatCSV
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		format = domain.FormatXLSX
	}
	store, ok := s.stores[format]
	if !ok {
		return domain.Summary{}, fmt.Errorf("%w: unsupported export format %q", apperrors.ErrInvalidInput, format)
	}
	rows, err := store.Read(ctx, path)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(rows), nil
}
