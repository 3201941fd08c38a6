package domain

import (
	apperrors "mailsort/internal/platform/errors"
)

// ParseError reports input that has no usable header. It is scoped to a
// single source and never affects other files loaded alongside it.
type ParseError struct {
	Source string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return "parse csv: " + e.Reason
	}
	return "parse " + e.Source + ": " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return apperrors.ErrInvalidInput
}
