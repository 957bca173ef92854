package objectvalue

import (
	"fmt"
	"unicode/utf8"

	"github.com/thek4n/clipstash/internal/domain/domainerrors"
)

// Title optional clip title. Zero Title means no title.
type Title struct {
	value string
}

// NewTitle validates title length in runes.
func NewTitle(text string, maxLength int) (Title, error) {
	if !utf8.ValidString(text) {
		return Title{}, domainerrors.WithReason(domainerrors.ErrInvalidTitle, "not valid utf-8")
	}

	if l := utf8.RuneCountInString(text); l > maxLength {
		return Title{}, domainerrors.WithReason(
			domainerrors.ErrInvalidTitle,
			fmt.Sprintf("length %d exceeds %d", l, maxLength),
		)
	}

	return Title{value: text}, nil
}

// Value getter.
func (t Title) Value() string {
	return t.value
}

// Present returns true if title is set.
func (t Title) Present() bool {
	return t.value != ""
}
