package dto

type Row struct {
	Subject            string
	Sender             string
	Body               string
	Date               string
	OriginalCategory   string
	UserClassification string
}

type ExportInput struct {
	Rows   []Row
	Format string
}

type ExportOutput struct {
	ID     string
	Path   string
	Format string
	Rows   int
}

type InspectOutput struct {
	Path       string
	Total      int
	ByLabel    map[string]int
	BySource   map[string]int
	Agreements int
}
