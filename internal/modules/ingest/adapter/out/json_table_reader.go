package out

import (
	"context"
	"fmt"
	"sort"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"mailsort/internal/modules/ingest/domain"
	ingestout "mailsort/internal/modules/ingest/port/out"
)

// JSONTableReader applies a JSONPath expression to a document. The first
// result must be an array of objects or an array of arrays with a header row.
type JSONTableReader struct {
	expr jp.Expr
}

func NewJSONTableReader(expression string) (ingestout.TableReader, error) {
	if expression == "" {
		expression = "$"
	}
	x, err := jp.ParseString(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath expression %q: %w", expression, err)
	}
	return JSONTableReader{expr: x}, nil
}

func (r JSONTableReader) ReadTable(ctx context.Context, path string) (domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return domain.Table{}, err
	}
	data, _, err := readDecompressed(path)
	if err != nil {
		return domain.Table{}, err
	}
	doc, err := oj.Parse(data)
	if err != nil {
		return domain.Table{}, &domain.ParseError{Source: path, Reason: fmt.Sprintf("invalid json: %v", err)}
	}
	results := r.expr.Get(doc)
	if len(results) == 0 {
		return domain.Table{}, &domain.ParseError{Source: path, Reason: "JSONPath expression returned no results"}
	}
	arr, ok := results[0].([]any)
	if !ok {
		return domain.Table{}, &domain.ParseError{Source: path, Reason: fmt.Sprintf("JSONPath result must be an array, got %T", results[0])}
	}
	if len(arr) == 0 {
		return domain.Table{}, &domain.ParseError{Source: path, Reason: "JSONPath expression returned empty array"}
	}
	switch arr[0].(type) {
	case map[string]any:
		return objectsToTable(arr), nil
	case []any:
		return arraysToTable(arr), nil
	default:
		return domain.Table{}, &domain.ParseError{Source: path, Reason: fmt.Sprintf("unsupported array element %T", arr[0])}
	}
}

func objectsToTable(arr []any) domain.Table {
	seen := map[string]bool{}
	var header []string
	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for key := range obj {
			if !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
		}
	}
	sort.Strings(header)

	rows := make([][]string, 0, len(arr))
	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		row := make([]string, len(header))
		for i, key := range header {
			row[i] = valueToString(obj[key])
		}
		rows = append(rows, row)
	}
	return domain.Table{Header: header, Rows: rows}
}

func arraysToTable(arr []any) domain.Table {
	table := domain.Table{}
	for i, item := range arr {
		values, ok := item.([]any)
		if !ok {
			continue
		}
		row := make([]string, len(values))
		for j, v := range values {
			row[j] = valueToString(v)
		}
		if i == 0 {
			table.Header = row
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func valueToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any, []any:
		return oj.JSON(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
