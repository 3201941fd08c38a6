package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mailsort/internal/modules/ingest/domain"
	ingestout "mailsort/internal/modules/ingest/port/out"
	"mailsort/internal/platform/logging"
)

// Parsed is the outcome of reading one source file.
type Parsed struct {
	Emails      []domain.Email
	Format      domain.Format
	Compression string
}

type IngestService struct {
	text   ingestout.TextReader
	xlsx   ingestout.TableReader
	json   ingestout.TableReader
	finder ingestout.Discoverer
	logger *zap.Logger
}

func NewIngestService(text ingestout.TextReader, xlsx, json ingestout.TableReader, finder ingestout.Discoverer, logger *zap.Logger) *IngestService {
	return &IngestService{text: text, xlsx: xlsx, json: json, finder: finder, logger: logging.OrNop(logger)}
}

func (s *IngestService) ParseText(text, tag, name string) ([]domain.Email, error) {
	emails, err := domain.Parse(text, tag)
	if err != nil {
		return nil, withSource(err, name)
	}
	return emails, nil
}

func (s *IngestService) ParseFile(ctx context.Context, path, tag string) (Parsed, error) {
	format, err := domain.FormatFromPath(path)
	if err != nil {
		return Parsed{}, &domain.ParseError{Source: path, Reason: err.Error()}
	}
	parsed := Parsed{Format: format, Compression: "none"}
	switch format {
	case domain.FormatCSV:
		if s.text == nil {
			return Parsed{}, fmt.Errorf("text reader is not configured")
		}
		raw, err := s.text.ReadText(ctx, path)
		if err != nil {
			return Parsed{}, err
		}
		parsed.Compression = raw.Compression
		parsed.Emails, err = domain.Parse(raw.Text, tag)
		if err != nil {
			return Parsed{}, withSource(err, path)
		}
	case domain.FormatXLSX, domain.FormatJSON:
		reader := s.xlsx
		if format == domain.FormatJSON {
			reader = s.json
		}
		if reader == nil {
			return Parsed{}, fmt.Errorf("%s reader is not configured", format)
		}
		table, err := reader.ReadTable(ctx, path)
		if err != nil {
			return Parsed{}, withSource(err, path)
		}
		parsed.Emails, err = domain.FromTable(table, tag)
		if err != nil {
			return Parsed{}, withSource(err, path)
		}
	}
	s.logger.Debug("parsed file",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.String("compression", parsed.Compression),
		zap.Int("records", len(parsed.Emails)),
	)
	return parsed, nil
}

func (s *IngestService) Discover(ctx context.Context, root, pattern string) ([]string, error) {
	if s.finder == nil {
		return nil, fmt.Errorf("discoverer is not configured")
	}
	return s.finder.Discover(ctx, root, pattern)
}

func withSource(err error, source string) error {
	var perr *domain.ParseError
	if errors.As(err, &perr) && perr.Source == "" {
		return &domain.ParseError{Source: source, Reason: perr.Reason}
	}
	return err
}
