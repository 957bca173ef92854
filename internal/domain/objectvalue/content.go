package objectvalue

import (
	"strings"

	"github.com/thek4n/clipstash/internal/domain/domainerrors"
)

// Content clip content.
type Content struct {
	value string
}

// NewContent validates text and returns Content.
// Text made only of whitespace is empty.
func NewContent(text string) (Content, error) {
	if strings.TrimSpace(text) == "" {
		return Content{}, domainerrors.ErrEmptyContent
	}

	return Content{value: text}, nil
}

// Value getter.
func (c Content) Value() string {
	return c.value
}

// Empty returns true for zero Content.
func (c Content) Empty() bool {
	return c.value == ""
}
