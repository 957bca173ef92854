package objectvalue

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/thek4n/clipstash/internal/domain/domainerrors"
)

// APIKeyLength length of apikey in bytes.
const APIKeyLength = 16

// APIKey opaque credential for privileged operations.
type APIKey struct {
	value [APIKeyLength]byte
}

// GenerateAPIKey returns new random apikey.
func GenerateAPIKey() (APIKey, error) {
	var k APIKey
	if _, err := rand.Read(k.value[:]); err != nil {
		return APIKey{}, fmt.Errorf("fail to gen random: %w", err)
	}
	return k, nil
}

// APIKeyFromBytes validates length and copies b.
func APIKeyFromBytes(b []byte) (APIKey, error) {
	if len(b) != APIKeyLength {
		return APIKey{}, domainerrors.WithReason(
			domainerrors.ErrInvalidAPIKey,
			fmt.Sprintf("expected %d bytes, got %d", APIKeyLength, len(b)),
		)
	}

	var k APIKey
	copy(k.value[:], b)
	return k, nil
}

// ParseAPIKey parses text form produced by String.
func ParseAPIKey(s string) (APIKey, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return APIKey{}, fmt.Errorf("%w: %w", domainerrors.ErrInvalidAPIKey, err)
	}
	return APIKeyFromBytes(b)
}

// Bytes returns copy of raw key bytes.
func (k APIKey) Bytes() []byte {
	b := make([]byte, APIKeyLength)
	copy(b, k.value[:])
	return b
}

// Equal compares keys byte by byte.
func (k APIKey) Equal(other APIKey) bool {
	return bytes.Equal(k.value[:], other.value[:])
}

// IsZero returns true for zero key.
func (k APIKey) IsZero() bool {
	return k.value == [APIKeyLength]byte{}
}

func (k APIKey) String() string {
	return base64.RawURLEncoding.EncodeToString(k.value[:])
}
