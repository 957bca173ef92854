//go:build unit

package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompression(t *testing.T) {
	t.Parallel()

	content := []byte(strings.Repeat("compress me ", 100))

	compressed, err := compress(content)
	require.NoError(t, err)
	require.True(t, isCompressed(compressed))

	t.Run("content within limit is restored", func(t *testing.T) {
		t.Parallel()

		got, err := decompress(compressed, int64(len(content)))

		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("content over limit is error, not truncated", func(t *testing.T) {
		t.Parallel()

		got, err := decompress(compressed, int64(len(content)-1))

		assert.Error(t, err)
		assert.Nil(t, got)
	})

	t.Run("plain data is not compressed", func(t *testing.T) {
		t.Parallel()

		assert.False(t, isCompressed(content))
	})
}
