//go:build e2e

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thek4n/clipstash/internal/application/service"
	"github.com/thek4n/clipstash/internal/presentation/webhandlers"
)

const e2eRedisDB = "4"

type e2eServer struct {
	*httptest.Server
	clips   *service.ClipService
	apikeys *service.APIKeysService
}

func (ts *e2eServer) do(t *testing.T, method, path, body string, headers map[string]string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func mustReadBody(t *testing.T, r io.ReadCloser) string {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	return string(b)
}

func getRedisHost() string {
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		return "localhost"
	}
	return redisHost
}

func setupE2EServer(t *testing.T) *e2eServer {
	t.Helper()

	opts, err := parseRunOptions([]string{
		"--storage", "redis",
		"--dbhost", getRedisHost(),
		"--dbindex", e2eRedisDB,
		"--health",
	})
	require.NoError(t, err)

	client := newRedisClient(opts.Store)
	require.NoError(t, client.FlushDB(context.Background()).Err())
	require.NoError(t, client.Close())

	container, err := buildContainer(opts)
	require.NoError(t, err)

	ts := &e2eServer{}
	err = container.Invoke(func(s *http.Server, clips *service.ClipService, apikeys *service.APIKeysService, st *store) {
		ts.Server = httptest.NewServer(s.Handler)
		ts.clips = clips
		ts.apikeys = apikeys
		t.Cleanup(func() { _ = st.Close() })
	})
	require.NoError(t, err)
	t.Cleanup(ts.Close)

	return ts
}

func TestE2E(t *testing.T) {
	ts := setupE2EServer(t)

	t.Run("healthcheck reports available store", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/health/", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, mustReadBody(t, resp.Body), `"availability":true`)
	})

	t.Run("created clip is served and counted", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/?title=notes", "hello e2e", nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		location := resp.Header.Get("Location")
		mustReadBody(t, resp.Body)

		resp, err := http.Get(location)
		require.NoError(t, err)
		assert.Equal(t, "hello e2e", mustReadBody(t, resp.Body))

		req, err := http.NewRequest(http.MethodGet, location, nil)
		require.NoError(t, err)
		req.Header.Set("Accept", "application/json")
		resp, err = http.DefaultClient.Do(req)
		require.NoError(t, err)

		var view map[string]any
		require.NoError(t, json.Unmarshal([]byte(mustReadBody(t, resp.Body)), &view))
		assert.Equal(t, "notes", view["title"])
		assert.EqualValues(t, 2, view["hits"])
	})

	t.Run("custom shortcode with apikey", func(t *testing.T) {
		key, err := ts.apikeys.GenerateAPIKey()
		require.NoError(t, err)
		headers := map[string]string{webhandlers.HeaderAPIKey: key.String()}

		resp := ts.do(t, http.MethodPost, "/?shortcode=e2ecode", "custom", headers)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		mustReadBody(t, resp.Body)

		resp = ts.do(t, http.MethodPost, "/?shortcode=e2ecode", "custom", headers)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		mustReadBody(t, resp.Body)

		revoked, err := ts.apikeys.RevokeAPIKey(key.String())
		require.NoError(t, err)
		require.True(t, revoked)

		resp = ts.do(t, http.MethodDelete, "/e2ecode/", "", headers)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		mustReadBody(t, resp.Body)
	})

	t.Run("big clip survives compression", func(t *testing.T) {
		content := strings.Repeat("compress me ", 1024)

		resp := ts.do(t, http.MethodPost, "/", content, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		location := resp.Header.Get("Location")
		mustReadBody(t, resp.Body)

		resp, err := http.Get(location)
		require.NoError(t, err)
		assert.Equal(t, content, mustReadBody(t, resp.Body))
	})

	t.Run("expired clip is swept", func(t *testing.T) {
		if testing.Short() {
			t.Skip("skipping test in short mode.")
		}

		expires := time.Now().Add(2 * time.Second).UTC().Format(time.RFC3339)
		resp := ts.do(t, http.MethodPost, fmt.Sprintf("/?expires=%s", expires), "short lived", nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		location := resp.Header.Get("Location")
		mustReadBody(t, resp.Body)

		time.Sleep(3500 * time.Millisecond)

		resp, err := http.Get(location)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mustReadBody(t, resp.Body)

		removed, err := ts.clips.SweepExpired(time.Now())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, removed, uint64(1))
	})
}
