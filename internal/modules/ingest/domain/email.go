package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Email is one parsed row. Tag names the source file bucket it was loaded from.
type Email struct {
	Subject string
	Sender  string
	Body    string
	Date    string
	Tag     string
}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

var compressionSuffixes = []string{".gz", ".bz2", ".xz"}

// FormatFromPath picks the table format from the file extension, looking
// through a trailing compression suffix (spam.csv.xz is csv).
func FormatFromPath(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range compressionSuffixes {
		name = strings.TrimSuffix(name, suffix)
	}
	switch filepath.Ext(name) {
	case ".csv", ".txt", "":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported input format %q", filepath.Ext(name))
	}
}

// Table is a header plus data rows read from a spreadsheet or JSON document.
type Table struct {
	Header []string
	Rows   [][]string
}

// RawFile is file content after decompression.
type RawFile struct {
	Path        string
	Text        string
	Compression string
}
