// Package objectvalue contains domain object values.
package objectvalue

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/thek4n/clipstash/internal/domain/domainerrors"
)

// ClipID internal clip identifier.
type ClipID uuid.UUID

// NewClipID generates random ClipID.
func NewClipID() (ClipID, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return ClipID{}, fmt.Errorf("fail to generate clip id: %w", err)
	}
	return ClipID(u), nil
}

// ParseClipID parses canonical text form.
func ParseClipID(s string) (ClipID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ClipID{}, fmt.Errorf("%w: %w", domainerrors.ErrInvalidID, err)
	}
	return ClipID(u), nil
}

func (id ClipID) String() string {
	return uuid.UUID(id).String()
}

// NilClipID nil clip id.
var NilClipID = ClipID(uuid.Nil)

// ShortCode external clip lookup key.
type ShortCode string

// NewShortCode validates shortcode is not empty.
func NewShortCode(s string) (ShortCode, error) {
	if strings.TrimSpace(s) == "" {
		return "", domainerrors.WithReason(domainerrors.ErrInvalidShortCode, "empty")
	}
	return ShortCode(s), nil
}

// NewRequestedShortCode validates custom shortcode against charset and length bounds.
func NewRequestedShortCode(s string, minLength, maxLength int, charset string) (ShortCode, error) {
	code, err := NewShortCode(s)
	if err != nil {
		return "", err
	}

	if len(s) < minLength || len(s) > maxLength {
		return "", domainerrors.WithReason(
			domainerrors.ErrInvalidShortCode,
			fmt.Sprintf("length must be between %d and %d", minLength, maxLength),
		)
	}

	for _, char := range s {
		if !strings.ContainsRune(charset, char) {
			return "", domainerrors.WithReason(domainerrors.ErrInvalidShortCode, "contains illegal char")
		}
	}

	return code, nil
}

func (s ShortCode) String() string {
	return string(s)
}
