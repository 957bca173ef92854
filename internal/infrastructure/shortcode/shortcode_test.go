//go:build unit

package shortcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomGenerator(t *testing.T) {
	t.Run("shortcode has configured length and charset", func(t *testing.T) {
		t.Parallel()

		g, err := NewRandomGenerator(12, "abc")
		require.NoError(t, err)

		for range 50 {
			sc, err := g.Generate()
			require.NoError(t, err)
			require.Len(t, sc.String(), 12)
			assert.Empty(t, strings.Trim(sc.String(), "abc"))
		}
	})

	t.Run("invalid settings are rejected", func(t *testing.T) {
		t.Parallel()

		_, err := NewRandomGenerator(0, "abc")
		assert.Error(t, err)

		_, err = NewRandomGenerator(5, "a")
		assert.Error(t, err)
	})
}
