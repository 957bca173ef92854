//go:build unit

package objectvalue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thek4n/clipstash/internal/domain/domainerrors"
)

func TestParseExpires(t *testing.T) {
	t.Run("rfc3339 date is parsed", func(t *testing.T) {
		t.Parallel()

		e, err := ParseExpires("2030-01-02T03:04:05Z")

		require.NoError(t, err)
		at, ok := e.Time()
		assert.True(t, ok)
		assert.Equal(t, time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC), at)
	})

	t.Run("empty text never expires", func(t *testing.T) {
		t.Parallel()

		e, err := ParseExpires("  ")

		require.NoError(t, err)
		assert.Nil(t, e.Ptr())
		assert.False(t, e.Expired(time.Now().Add(100*365*24*time.Hour)))
	})

	t.Run("garbage returns ErrDateParse", func(t *testing.T) {
		t.Parallel()

		_, err := ParseExpires("tomorrow")

		assert.ErrorIs(t, err, domainerrors.ErrDateParse)
		assert.NotErrorIs(t, err, domainerrors.ErrInvalidDate)
	})
}

func TestExpiresAt(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	t.Run("future date is accepted", func(t *testing.T) {
		t.Parallel()

		e, err := ExpiresAt(now.Add(time.Hour), now, false)

		require.NoError(t, err)
		assert.False(t, e.Expired(now))
		assert.True(t, e.Expired(now.Add(time.Hour+time.Second)))
		assert.Equal(t, time.Hour, e.Until(now))
	})

	t.Run("clip is alive at the moment of expiration", func(t *testing.T) {
		t.Parallel()

		e, err := ExpiresAt(now.Add(time.Hour), now, false)
		require.NoError(t, err)

		assert.False(t, e.Expired(now.Add(time.Hour)))
		assert.True(t, e.Expired(now.Add(time.Hour+time.Nanosecond)))
	})

	t.Run("past date returns ErrInvalidDate", func(t *testing.T) {
		t.Parallel()

		_, err := ExpiresAt(now.Add(-time.Second), now, false)

		assert.ErrorIs(t, err, domainerrors.ErrInvalidDate)
	})

	t.Run("past date is accepted when allowed", func(t *testing.T) {
		t.Parallel()

		e, err := ExpiresAt(now.Add(-time.Second), now, true)

		require.NoError(t, err)
		assert.True(t, e.Expired(now))
	})
}
