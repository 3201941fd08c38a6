package domain

import (
	"strings"
	"time"

	ingestdomain "mailsort/internal/modules/ingest/domain"
	apperrors "mailsort/internal/platform/errors"
)

// Columns is the fixed export header.
var Columns = []string{"subject", "sender", "body", "date", "original_category", "user_classification"}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Row is one labeled email in classification order.
type Row struct {
	Subject            string
	Sender             string
	Body               string
	Date               string
	OriginalCategory   string
	UserClassification string
}

func (r Row) Values() []string {
	return []string{r.Subject, r.Sender, r.Body, r.Date, r.OriginalCategory, r.UserClassification}
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Serialize renders rows as CSV with every field quoted and line breaks
// collapsed, so each row occupies one line.
func Serialize(rows []Row) (string, error) {
	if len(rows) == 0 {
		return "", apperrors.ErrNothingToExport
	}
	var b strings.Builder
	b.WriteString(strings.Join(Columns, ","))
	b.WriteByte('\n')
	for _, row := range rows {
		for i, v := range row.Values() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Quote(v))
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func Quote(v string) string {
	v = lineBreaks.Replace(v)
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// ParseExport reads text produced by Serialize back into rows. Columns are
// matched by name, so reordered or partial exports still load.
func ParseExport(text string) ([]Row, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ingestdomain.ParseError{Reason: "input is empty"}
	}
	lines := strings.Split(text, "\n")
	if strings.TrimSpace(lines[0]) == "" {
		return nil, &ingestdomain.ParseError{Reason: "missing header row"}
	}
	header := ingestdomain.SplitFields(lines[0])
	index := make(map[string]int, len(Columns))
	for i, name := range header {
		key := strings.ToLower(name)
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := ingestdomain.SplitFields(line)
		if len(fields) < len(header) {
			continue
		}
		rows = append(rows, FromValues(index, fields))
	}
	return rows, nil
}

// FromValues maps a record onto a Row using a column-name index.
func FromValues(index map[string]int, fields []string) Row {
	at := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(fields) {
			return ""
		}
		return fields[i]
	}
	return Row{
		Subject:            at("subject"),
		Sender:             at("sender"),
		Body:               at("body"),
		Date:               at("date"),
		OriginalCategory:   at("original_category"),
		UserClassification: at("user_classification"),
	}
}

// FileName is the download name for an export created at t.
func FileName(t time.Time, format Format) string {
	ext := "csv"
	if format == FormatXLSX {
		ext = "xlsx"
	}
	return "email_classifications_" + t.Format("2006-01-02") + "." + ext
}

// Summary describes an export: counts per label, per source tag, and how
// often the annotator agreed with the source tag.
type Summary struct {
	Total      int
	ByLabel    map[string]int
	BySource   map[string]int
	Agreements int
}

func Summarize(rows []Row) Summary {
	s := Summary{ByLabel: map[string]int{}, BySource: map[string]int{}}
	for _, r := range rows {
		s.Total++
		s.ByLabel[r.UserClassification]++
		s.BySource[r.OriginalCategory]++
		if r.UserClassification == r.OriginalCategory {
			s.Agreements++
		}
	}
	return s
}
