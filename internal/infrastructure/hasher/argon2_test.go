//go:build unit

package hasher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHasher(t *testing.T) *Argon2Hasher {
	t.Helper()

	h, err := NewArgon2Hasher(1, 64, 1)
	require.NoError(t, err)
	return h
}

func TestArgon2Hasher(t *testing.T) {
	t.Run("hash verifies only original password", func(t *testing.T) {
		t.Parallel()

		h := newTestHasher(t)

		encoded, err := h.Hash("secret")
		require.NoError(t, err)
		assert.Contains(t, encoded, "$argon2id$v=19$m=64,t=1,p=1$")

		ok, err := h.Verify("secret", encoded)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = h.Verify("Secret", encoded)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		t.Parallel()

		h := newTestHasher(t)

		first, err := h.Hash("secret")
		require.NoError(t, err)
		second, err := h.Hash("secret")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("hash made with other parameters still verifies", func(t *testing.T) {
		t.Parallel()

		other, err := NewArgon2Hasher(2, 128, 2)
		require.NoError(t, err)
		encoded, err := other.Hash("secret")
		require.NoError(t, err)

		ok, err := newTestHasher(t).Verify("secret", encoded)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("malformed hash is error", func(t *testing.T) {
		t.Parallel()

		for _, encoded := range []string{
			"",
			"plain",
			"$bcrypt$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=64,t=1,p=1$!!!$aGFzaA",
		} {
			_, err := newTestHasher(t).Verify("secret", encoded)
			assert.ErrorIs(t, err, ErrMalformedHash, encoded)
		}
	})

	t.Run("invalid parameters are rejected", func(t *testing.T) {
		t.Parallel()

		_, err := NewArgon2Hasher(0, 64, 1)
		assert.Error(t, err)

		_, err = NewArgon2Hasher(1, 1, 1)
		assert.Error(t, err)

		_, err = NewArgon2Hasher(1, 64, 0)
		assert.Error(t, err)
	})
}
