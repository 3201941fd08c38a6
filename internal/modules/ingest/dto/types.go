package dto

type RecordOutput struct {
	Subject          string
	Sender           string
	Body             string
	Date             string
	OriginalCategory string
}

type ParseTextInput struct {
	Text string
	Tag  string
	Name string
}

type FileInput struct {
	Path string
	Tag  string
}

type FileResult struct {
	Path        string
	Tag         string
	Format      string
	Compression string
	Records     []RecordOutput
	Err         error
}

type DiscoverInput struct {
	Root    string
	Pattern string
}
