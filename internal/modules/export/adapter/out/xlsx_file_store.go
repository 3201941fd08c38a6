package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"mailsort/internal/modules/export/domain"
	exportout "mailsort/internal/modules/export/port/out"
	apperrors "mailsort/internal/platform/errors"
)

const sheetName = "Classifications"

type XLSXFileStore struct{}

func NewXLSXFileStore() exportout.FileStore {
	return XLSXFileStore{}
}

func (XLSXFileStore) Format() domain.Format { return domain.FormatXLSX }

func (XLSXFileStore) Write(_ context.Context, path string, rows []domain.Row) error {
	if len(rows) == 0 {
		return apperrors.ErrNothingToExport
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	header := make([]any, len(domain.Columns))
	for i, c := range domain.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row.Values()
		record := make([]any, len(values))
		for j, v := range values {
			record[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (XLSXFileStore) Read(_ context.Context, path string) ([]domain.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", apperrors.ErrInvalidInput)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header row", apperrors.ErrInvalidInput)
	}
	index := map[string]int{}
	for i, name := range records[0] {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}
	rows := make([]domain.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, domain.FromValues(index, record))
	}
	return rows, nil
}
