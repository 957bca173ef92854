// Package hasher contains password hasher implementations.
package hasher

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength = 16
	keyLength  = 32
)

// ErrMalformedHash error type to point that encoded hash can not be parsed.
var ErrMalformedHash = errors.New("malformed argon2id hash")

// Argon2Hasher hashes passwords with argon2id in PHC string format.
type Argon2Hasher struct {
	iterations  uint32
	memory      uint32
	parallelism uint8
}

// NewArgon2Hasher constructor. memory in KiB.
func NewArgon2Hasher(iterations, memory uint32, parallelism uint8) (*Argon2Hasher, error) {
	if iterations == 0 || iterations > 100 {
		return nil, errors.New("iterations must be between 1 and 100")
	}
	if memory < 8 || memory > 2*1024*1024 {
		return nil, errors.New("memory must be between 8 and 2097152 KiB")
	}
	if parallelism == 0 {
		return nil, errors.New("parallelism must be positive")
	}

	return &Argon2Hasher{
		iterations:  iterations,
		memory:      memory,
		parallelism: parallelism,
	}, nil
}

// NewDefaultArgon2Hasher returns hasher with recommended parameters.
func NewDefaultArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{
		iterations:  1,
		memory:      64 * 1024,
		parallelism: 4,
	}
}

// Hash returns encoded argon2id hash with random salt.
func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("fail to gen salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, h.iterations, h.memory, h.parallelism, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memory, h.iterations, h.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify compares password with encoded hash in constant time.
// Parameters are taken from encoded hash.
func (h *Argon2Hasher) Verify(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, fmt.Errorf("%w: unsupported version", ErrMalformedHash)
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedHash, err)
	}
	if memory > 2*1024*1024 || iterations > 1000 || parallelism == 0 {
		return false, fmt.Errorf("%w: parameters out of range", ErrMalformedHash)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false, fmt.Errorf("%w: bad salt", ErrMalformedHash)
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 || len(hash) > 256 {
		return false, fmt.Errorf("%w: bad hash", ErrMalformedHash)
	}

	other := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(hash)))

	return subtle.ConstantTimeCompare(hash, other) == 1, nil
}
