// Package shortcode contains random shortcode generator.
package shortcode

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/thek4n/clipstash/internal/domain/objectvalue"
)

// RandomGenerator generates shortcodes of fixed length from charset.
type RandomGenerator struct {
	charset string
	length  uint8
}

// NewRandomGenerator constructor.
func NewRandomGenerator(length uint8, charset string) (*RandomGenerator, error) {
	if length == 0 {
		return nil, fmt.Errorf("shortcode length must be positive")
	}
	if len(charset) < 2 {
		return nil, fmt.Errorf("charset must contain at least 2 chars")
	}

	return &RandomGenerator{
		charset: charset,
		length:  length,
	}, nil
}

// Generate returns new random shortcode.
func (g *RandomGenerator) Generate() (objectvalue.ShortCode, error) {
	key, err := generateKey(g.length, g.charset)
	if err != nil {
		return "", fmt.Errorf("fail generate shortcode: %w", err)
	}

	return objectvalue.NewShortCode(key)
}

// generateKey generate new random key with specified length using charset.
func generateKey(length uint8, charset string) (string, error) {
	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))

	for i := range length {
		nBig, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", fmt.Errorf("failure generate random number: %w", err)
		}
		result[i] = charset[nBig.Int64()]
	}

	return string(result), nil
}
