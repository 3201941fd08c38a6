package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"mailsort/internal/modules/cleaner/domain"
	cleanerout "mailsort/internal/modules/cleaner/port/out"
	exportdomain "mailsort/internal/modules/export/domain"
	"mailsort/internal/platform/logging"
)

var outputColumns = []string{"subject", "sender", "body", "date"}

type Report struct {
	Processed int
	Skipped   int
}

type CleanerService struct {
	fs     cleanerout.FileSystem
	logger *zap.Logger
}

func NewCleanerService(fs cleanerout.FileSystem, logger *zap.Logger) *CleanerService {
	return &CleanerService{fs: fs, logger: logging.OrNop(logger)}
}

// CleanFile rewrites a raw email CSV into subject,sender,body,date with every
// field quoted and line breaks collapsed, so the result loads one row per line.
// Rows the CSV reader rejects are skipped and counted.
func (s *CleanerService) CleanFile(ctx context.Context, in, out string) (Report, error) {
	src, err := s.fs.Open(ctx, in)
	if err != nil {
		return Report{}, err
	}
	defer src.Close()

	reader := csv.NewReader(bufio.NewReader(src))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Report{}, fmt.Errorf("%s has no header row", in)
		}
		return Report{}, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}

	dst, err := s.fs.Create(ctx, out)
	if err != nil {
		return Report{}, err
	}
	w := bufio.NewWriter(dst)
	writeRow(w, outputColumns, false)

	report := Report{}
	for {
		if err := ctx.Err(); err != nil {
			_ = dst.Close()
			return report, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.Skipped++
			s.logger.Warn("skipping malformed row", zap.String("file", in), zap.Error(err))
			continue
		}
		get := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}
		writeRow(w, []string{
			domain.CleanSubject(get("subject")),
			domain.CleanSender(get("sender")),
			domain.CleanText(get("body")),
			get("date"),
		}, true)
		report.Processed++
	}

	if err := w.Flush(); err != nil {
		_ = dst.Close()
		return report, fmt.Errorf("write %s: %w", out, err)
	}
	if err := dst.Close(); err != nil {
		return report, fmt.Errorf("close %s: %w", out, err)
	}
	s.logger.Info("cleaned email file",
		zap.String("in", in),
		zap.String("out", out),
		zap.Int("processed", report.Processed),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

func writeRow(w *bufio.Writer, values []string, quote bool) {
	for i, v := range values {
		if i > 0 {
			_ = w.WriteByte(',')
		}
		if quote {
			v = exportdomain.Quote(v)
		}
		_, _ = w.WriteString(v)
	}
	_ = w.WriteByte('\n')
}
