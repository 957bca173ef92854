package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thek4n/clipstash/internal/domain/aggregate"
	"github.com/thek4n/clipstash/internal/domain/domainerrors"
	"github.com/thek4n/clipstash/internal/domain/objectvalue"
	"github.com/thek4n/clipstash/internal/domain/repository"
)

type repoFactory func(t *testing.T) (repository.ClipRepository, repository.APIKeyRepository)

var basePosted = time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

func mustClip(t *testing.T, shortcode, content string, expires *time.Time) aggregate.Clip {
	t.Helper()

	id, err := objectvalue.NewClipID()
	require.NoError(t, err)

	sc, err := objectvalue.NewShortCode(shortcode)
	require.NoError(t, err)

	c, err := objectvalue.NewContent(content)
	require.NoError(t, err)

	title, err := objectvalue.NewTitle("title of "+shortcode, 128)
	require.NoError(t, err)

	clip, err := aggregate.NewClip(
		id, sc, c, title,
		objectvalue.NewPosted(basePosted),
		objectvalue.ExpiresFromStore(expires),
		objectvalue.PasswordFromHash("stored-hash"),
		objectvalue.NewHits(0),
	)
	require.NoError(t, err)

	return clip
}

func hoursAfterPosted(h int) *time.Time {
	t := basePosted.Add(time.Duration(h) * time.Hour)
	return &t
}

// runRepositorySuite checks behaviour shared by all store implementations.
// Subtests run sequentially because integration stores share state.
func runRepositorySuite(t *testing.T, newRepos repoFactory) {
	ctx := context.Background()

	t.Run("created clip is read back unchanged", func(t *testing.T) {
		clips, _ := newRepos(t)
		clip := mustClip(t, "abc", "hello world", hoursAfterPosted(1))

		created, err := clips.CreateClip(ctx, clip)
		require.NoError(t, err)

		got, err := clips.GetClip(ctx, "abc")
		require.NoError(t, err)

		for _, c := range []aggregate.Clip{created, got} {
			assert.Equal(t, clip.ID(), c.ID())
			assert.Equal(t, "hello world", c.Content().Value())
			assert.Equal(t, "title of abc", c.Title().Value())
			assert.Equal(t, "stored-hash", c.Password().Hash())
			assert.True(t, clip.Posted().Time().Equal(c.Posted().Time()))
			assert.Equal(t, clip.Expires().Ptr().Unix(), c.Expires().Ptr().Unix())
			assert.Equal(t, uint64(0), c.Hits().Value())
		}
	})

	t.Run("shortcode collision is unique violation and keeps first clip", func(t *testing.T) {
		clips, _ := newRepos(t)

		_, err := clips.CreateClip(ctx, mustClip(t, "dup", "first", nil))
		require.NoError(t, err)

		_, err = clips.CreateClip(ctx, mustClip(t, "dup", "second", nil))
		require.ErrorIs(t, err, domainerrors.ErrUniqueViolation)

		got, err := clips.GetClip(ctx, "dup")
		require.NoError(t, err)
		assert.Equal(t, "first", got.Content().Value())
	})

	t.Run("missing shortcode is no rows", func(t *testing.T) {
		clips, _ := newRepos(t)

		_, err := clips.GetClip(ctx, "missing")
		assert.ErrorIs(t, err, domainerrors.ErrNoRows)

		_, err = clips.UpdateClip(ctx, "missing", aggregate.ClipPatch{Title: &objectvalue.Title{}})
		assert.ErrorIs(t, err, domainerrors.ErrNoRows)

		assert.ErrorIs(t, clips.IncrementHits(ctx, "missing", 1), domainerrors.ErrNoRows)
		assert.ErrorIs(t, clips.DeleteClip(ctx, "missing"), domainerrors.ErrNoRows)
	})

	t.Run("update replaces only patched fields", func(t *testing.T) {
		clips, _ := newRepos(t)
		clip := mustClip(t, "upd", "old content", hoursAfterPosted(1))
		_, err := clips.CreateClip(ctx, clip)
		require.NoError(t, err)
		require.NoError(t, clips.IncrementHits(ctx, "upd", 3))

		content, err := objectvalue.NewContent("new content")
		require.NoError(t, err)
		never := objectvalue.Never()
		noPassword := objectvalue.Password{}

		updated, err := clips.UpdateClip(ctx, "upd", aggregate.ClipPatch{
			Content:  &content,
			Expires:  &never,
			Password: &noPassword,
		})
		require.NoError(t, err)

		assert.Equal(t, "new content", updated.Content().Value())
		assert.Equal(t, "title of upd", updated.Title().Value())
		assert.Nil(t, updated.Expires().Ptr())
		assert.False(t, updated.Protected())
		assert.Equal(t, uint64(3), updated.Hits().Value())
		assert.Equal(t, clip.ID(), updated.ID())
	})

	t.Run("hits grow by delta and zero delta changes nothing", func(t *testing.T) {
		clips, _ := newRepos(t)
		_, err := clips.CreateClip(ctx, mustClip(t, "hits", "content", nil))
		require.NoError(t, err)

		require.NoError(t, clips.IncrementHits(ctx, "hits", 1))
		require.NoError(t, clips.IncrementHits(ctx, "hits", 1))
		require.NoError(t, clips.IncrementHits(ctx, "hits", 0))

		got, err := clips.GetClip(ctx, "hits")
		require.NoError(t, err)
		assert.Equal(t, uint64(2), got.Hits().Value())
	})

	t.Run("deleted clip is gone", func(t *testing.T) {
		clips, _ := newRepos(t)
		_, err := clips.CreateClip(ctx, mustClip(t, "del", "content", hoursAfterPosted(1)))
		require.NoError(t, err)

		require.NoError(t, clips.DeleteClip(ctx, "del"))

		_, err = clips.GetClip(ctx, "del")
		assert.ErrorIs(t, err, domainerrors.ErrNoRows)
	})

	t.Run("sweep removes only clips expired before now", func(t *testing.T) {
		clips, _ := newRepos(t)
		for sc, exp := range map[string]*time.Time{
			"one":   hoursAfterPosted(1),
			"two":   hoursAfterPosted(2),
			"ten":   hoursAfterPosted(10),
			"never": nil,
		} {
			_, err := clips.CreateClip(ctx, mustClip(t, sc, "content", exp))
			require.NoError(t, err)
		}

		removed, err := clips.DeleteExpired(ctx, basePosted.Add(3*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, uint64(2), removed)

		for _, sc := range []objectvalue.ShortCode{"ten", "never"} {
			_, err := clips.GetClip(ctx, sc)
			assert.NoError(t, err)
		}
		for _, sc := range []objectvalue.ShortCode{"one", "two"} {
			_, err := clips.GetClip(ctx, sc)
			assert.ErrorIs(t, err, domainerrors.ErrNoRows)
		}
	})

	t.Run("apikey lifecycle", func(t *testing.T) {
		_, apikeys := newRepos(t)
		key, err := objectvalue.GenerateAPIKey()
		require.NoError(t, err)

		status, err := apikeys.RevokeAPIKey(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, repository.RevocationNotFound, status)

		saved, err := apikeys.SaveAPIKey(ctx, key)
		require.NoError(t, err)
		assert.True(t, key.Equal(saved))

		_, err = apikeys.SaveAPIKey(ctx, key)
		assert.ErrorIs(t, err, domainerrors.ErrUniqueViolation)

		exists, err := apikeys.APIKeyExists(ctx, key)
		require.NoError(t, err)
		assert.True(t, exists)

		status, err = apikeys.RevokeAPIKey(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, repository.Revoked, status)

		exists, err = apikeys.APIKeyExists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
