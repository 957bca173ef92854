package objectvalue

import (
	"fmt"
	"unicode"

	"github.com/thek4n/clipstash/internal/domain/domainerrors"
)

// PasswordHasher hashes and verifies clip passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// Password keeps only hashed form of clip password.
// Zero Password means clip is not protected.
type Password struct {
	hash string
}

// NewPassword validates and hashes plain password.
// Empty string is no password.
func NewPassword(plain string, maxLength int, hasher PasswordHasher) (Password, error) {
	if plain == "" {
		return Password{}, nil
	}

	if len(plain) > maxLength {
		return Password{}, domainerrors.WithReason(
			domainerrors.ErrInvalidPassword,
			fmt.Sprintf("longer than %d bytes", maxLength),
		)
	}

	for _, r := range plain {
		if unicode.IsControl(r) {
			return Password{}, domainerrors.WithReason(domainerrors.ErrInvalidPassword, "contains control characters")
		}
	}

	hash, err := hasher.Hash(plain)
	if err != nil {
		return Password{}, fmt.Errorf("fail to hash password: %w", err)
	}

	return Password{hash: hash}, nil
}

// PasswordFromHash restores Password from stored hash.
func PasswordFromHash(hash string) Password {
	return Password{hash: hash}
}

// Hash getter.
func (p Password) Hash() string {
	return p.hash
}

// Present returns true if password is set.
func (p Password) Present() bool {
	return p.hash != ""
}

// Verify checks plain against stored hash. Any password matches absent Password,
// empty plain never matches present one.
func (p Password) Verify(plain string, hasher PasswordHasher) (bool, error) {
	if !p.Present() {
		return true, nil
	}

	if plain == "" {
		return false, nil
	}

	ok, err := hasher.Verify(plain, p.hash)
	if err != nil {
		return false, fmt.Errorf("fail to verify password: %w", err)
	}

	return ok, nil
}
