package apperrors

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrExhausted        = errors.New("no more emails: nothing to classify")
	ErrNothingToExport  = errors.New("nothing to export")
	ErrNothingToRestore = errors.New("nothing to restore")
	ErrNotPersisted     = errors.New("change not persisted")
)
