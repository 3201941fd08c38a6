package dto

type CleanInput struct {
	In  string
	Out string
}

type CleanOutput struct {
	In        string
	Out       string
	Processed int
	Skipped   int
}
