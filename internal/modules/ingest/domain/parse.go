package domain

import (
	"regexp"
	"strings"
)

var addressPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

type columns struct {
	subject int
	sender  int
	body    int
	date    int
}

// Parse turns CSV text into emails tagged with tag. The first line is the
// header; blank lines and rows shorter than the header are skipped.
func Parse(text, tag string) ([]Email, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Reason: "input is empty"}
	}
	lines := strings.Split(text, "\n")
	if strings.TrimSpace(lines[0]) == "" {
		return nil, &ParseError{Reason: "missing header row"}
	}
	header := SplitFields(lines[0])
	cols := mapHeader(header)

	emails := make([]Email, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := SplitFields(line)
		if len(fields) < len(header) {
			continue
		}
		emails = append(emails, build(fields, cols, tag))
	}
	return emails, nil
}

// FromTable applies the CSV column mapping to an already tabulated source.
func FromTable(table Table, tag string) ([]Email, error) {
	if len(table.Header) == 0 || blank(table.Header) {
		return nil, &ParseError{Reason: "missing header row"}
	}
	header := make([]string, len(table.Header))
	for i, h := range table.Header {
		header[i] = strings.TrimSpace(h)
	}
	cols := mapHeader(header)

	emails := make([]Email, 0, len(table.Rows))
	for _, row := range table.Rows {
		if len(row) < len(header) || blank(row) {
			continue
		}
		fields := make([]string, len(row))
		for i, v := range row {
			fields[i] = strings.TrimSpace(v)
		}
		emails = append(emails, build(fields, cols, tag))
	}
	return emails, nil
}

// SplitFields splits one line on commas outside double quotes. A doubled
// quote inside a quoted field is a literal quote. Fields are trimmed.
func SplitFields(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			current.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}

func mapHeader(header []string) columns {
	cols := columns{subject: -1, sender: -1, body: -1, date: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "subject":
			if cols.subject < 0 {
				cols.subject = i
			}
		case "sender", "from":
			if cols.sender < 0 {
				cols.sender = i
			}
		case "body", "content":
			if cols.body < 0 {
				cols.body = i
			}
		case "date":
			if cols.date < 0 {
				cols.date = i
			}
		}
	}
	return cols
}

func build(fields []string, cols columns, tag string) Email {
	at := func(idx int) string {
		if idx < 0 || idx >= len(fields) {
			return ""
		}
		return fields[idx]
	}
	rawSender := at(cols.sender)
	return Email{
		Subject: Printable(at(cols.subject)),
		Sender:  NormalizeSender(Printable(rawSender), rawSender),
		Body:    at(cols.body),
		Date:    at(cols.date),
		Tag:     tag,
	}
}

// Printable keeps only the bytes 0x20 through 0x7E and trims the result.
func Printable(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x20 && s[i] <= 0x7E {
			b.WriteByte(s[i])
		}
	}
	return strings.TrimSpace(b.String())
}

// NormalizeSender replaces a display-name style sender ("Jane Doe at example")
// with the first address found in the original text. Values containing @ or
// no space are returned unchanged.
func NormalizeSender(cleaned, original string) string {
	if strings.Contains(cleaned, "@") || !strings.Contains(cleaned, " ") {
		return cleaned
	}
	if addr := addressPattern.FindString(original); addr != "" {
		return addr
	}
	return cleaned
}

func blank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
