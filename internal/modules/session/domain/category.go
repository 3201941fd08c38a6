package domain

import (
	"fmt"
	"strings"

	apperrors "mailsort/internal/platform/errors"
)

type Category string

const (
	Spam         Category = "spam"
	Promotional  Category = "promotional"
	Legitimate   Category = "legitimate"
	Notification Category = "notification"
	Receipt      Category = "receipt"
)

// SourceTags are the buckets an input file can be loaded into.
func SourceTags() []Category {
	return []Category{Spam, Promotional, Legitimate}
}

// Labels are every category an annotator can assign.
func Labels() []Category {
	return []Category{Spam, Promotional, Legitimate, Notification, Receipt}
}

func ParseSourceTag(raw string) (Category, error) {
	return parse(raw, SourceTags(), "source tag")
}

func ParseLabel(raw string) (Category, error) {
	return parse(raw, Labels(), "label")
}

func parse(raw string, allowed []Category, kind string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, a := range allowed {
		if c == a {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown %s %q", apperrors.ErrInvalidInput, kind, raw)
}
