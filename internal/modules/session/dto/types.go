package dto

import "time"

type Record struct {
	Subject            string
	Sender             string
	Body               string
	Date               string
	OriginalCategory   string
	UserClassification string
}

type LabeledRecord struct {
	Record
	ClassifiedAt time.Time
}

type LoadTextInput struct {
	Text string
	Tag  string
	Name string
}

type LoadOutput struct {
	Added   int
	Total   int
	Warning string
}

type FileInput struct {
	Path string
	Tag  string
}

type LoadFilesInput struct {
	Files []FileInput
}

type FileLoad struct {
	Path        string
	Tag         string
	Format      string
	Compression string
	Records     int
	Err         error
}

type LoadFilesOutput struct {
	BatchID string
	Files   []FileLoad
	Loaded  int
	Failed  int
	Added   int
	Total   int
	Warning string
}

type CurrentOutput struct {
	Record   Record
	Position int
	Total    int
}

type ClassifyInput struct {
	Label string
}

type ClassifyOutput struct {
	Labeled   LabeledRecord
	Cursor    int
	Total     int
	Exhausted bool
	Warning   string
}

type ExportInput struct {
	Format string
}

type ExportOutput struct {
	ID     string
	Path   string
	Format string
	Rows   int
}

type StatusOutput struct {
	Total      int
	Labeled    int
	Remaining  int
	Cursor     int
	Percent    float64
	Exhausted  bool
	ByLabel    map[string]int
	BySource   map[string]int
	Agreements int
}
