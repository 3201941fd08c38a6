package out

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"mailsort/internal/modules/ingest/domain"
	ingestout "mailsort/internal/modules/ingest/port/out"
)

// XLSXTableReader reads the first sheet of a workbook. The first row is the header.
type XLSXTableReader struct{}

func NewXLSXTableReader() ingestout.TableReader {
	return XLSXTableReader{}
}

func (XLSXTableReader) ReadTable(ctx context.Context, path string) (domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return domain.Table{}, err
	}
	data, _, err := readDecompressed(path)
	if err != nil {
		return domain.Table{}, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return domain.Table{}, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.Table{}, &domain.ParseError{Source: path, Reason: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return domain.Table{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return domain.Table{}, &domain.ParseError{Source: path, Reason: "missing header row"}
	}
	header := rows[0]
	body := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// GetRows drops trailing empty cells.
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		body = append(body, row)
	}
	return domain.Table{Header: header, Rows: body}, nil
}
