//go:build unit

package objectvalue

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thek4n/clipstash/internal/domain/domainerrors"
)

func TestHits(t *testing.T) {
	t.Run("increment never decreases counter", func(t *testing.T) {
		t.Parallel()

		hits := NewHits(0)
		for _, delta := range []uint64{1, 0, 5, 0, 100, 1} {
			next, err := hits.Increment(delta)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, next.Value(), hits.Value())
			hits = next
		}

		assert.Equal(t, uint64(107), hits.Value())
	})

	t.Run("increment by zero returns same value", func(t *testing.T) {
		t.Parallel()

		hits := NewHits(42)

		same, err := hits.Increment(0)

		require.NoError(t, err)
		assert.Equal(t, hits, same)
	})

	t.Run("overflow returns ErrInvalidHits", func(t *testing.T) {
		t.Parallel()

		hits := NewHits(math.MaxUint64 - 1)

		_, err := hits.Increment(2)

		assert.ErrorIs(t, err, domainerrors.ErrInvalidHits)
	})

	t.Run("negative store value returns ErrInvalidHits", func(t *testing.T) {
		t.Parallel()

		_, err := HitsFromInt64(-1)

		assert.ErrorIs(t, err, domainerrors.ErrInvalidHits)
	})

	t.Run("value above int64 can not be converted back", func(t *testing.T) {
		t.Parallel()

		_, err := NewHits(math.MaxInt64 + 1).Int64()
		require.ErrorIs(t, err, domainerrors.ErrInvalidHits)

		v, err := NewHits(7).Int64()
		require.NoError(t, err)
		assert.Equal(t, int64(7), v)
	})
}
