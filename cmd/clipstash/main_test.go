//go:build unit

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thek4n/clipstash/internal/application/service"
	"github.com/thek4n/clipstash/internal/domain/config"
	"github.com/thek4n/clipstash/internal/domain/event"
	"github.com/thek4n/clipstash/internal/domain/logger"
	"github.com/thek4n/clipstash/internal/infrastructure/repository"
)

func TestColumnT(t *testing.T) {
	t.Parallel()

	t.Run("aligns columns", func(t *testing.T) {
		t.Parallel()

		got := columnT("Key\tStatus\nabcdef\tvalid")
		assert.Equal(t, "Key     Status\nabcdef  valid ", got)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, columnT(""))
	})
}

func TestParseRunOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts, err := parseRunOptions([]string{})
		require.NoError(t, err)

		assert.Equal(t, 80, opts.Port)
		assert.Equal(t, "sqlite", opts.Store.Storage)
		assert.Equal(t, "none", opts.Events)
		assert.Equal(t, time.Minute, opts.SweepPeriod)
		assert.Equal(t, 30*time.Second, opts.APIKeyCacheTTL)

		cfg := clipConfig{opts: opts.Clip}
		defaults := config.DefaultClipValidationConfig{}
		assert.Equal(t, defaults.MaxTitleLength(), cfg.MaxTitleLength())
		assert.Equal(t, defaults.ShortCodeLength(), cfg.ShortCodeLength())
		assert.Equal(t, defaults.OperationTimeout(), cfg.OperationTimeout())
		assert.False(t, cfg.HideProtectedClips())
	})

	t.Run("overrides clip config", func(t *testing.T) {
		opts, err := parseRunOptions([]string{
			"--max-title", "10",
			"--shortcode-length", "16",
			"--hide-protected",
			"--timeout", "1s",
		})
		require.NoError(t, err)

		cfg := clipConfig{opts: opts.Clip}
		assert.Equal(t, 10, cfg.MaxTitleLength())
		assert.Equal(t, uint8(16), cfg.ShortCodeLength())
		assert.True(t, cfg.HideProtectedClips())
		assert.Equal(t, time.Second, cfg.OperationTimeout())
	})

	t.Run("unknown storage", func(t *testing.T) {
		_, err := parseRunOptions([]string{"--storage", "mongo"})
		assert.Error(t, err)
	})
}

func newContainerServer(t *testing.T, args ...string) *httptest.Server {
	t.Helper()

	opts, err := parseRunOptions(append([]string{"--storage", "memory", "--health", "--metrics"}, args...))
	require.NoError(t, err)

	container, err := buildContainer(opts)
	require.NoError(t, err)

	var server *httptest.Server
	err = container.Invoke(func(s *http.Server) {
		server = httptest.NewServer(s.Handler)
	})
	require.NoError(t, err)
	t.Cleanup(server.Close)

	return server
}

func TestContainer(t *testing.T) {
	t.Parallel()

	t.Run("serves clips", func(t *testing.T) {
		t.Parallel()
		server := newContainerServer(t)

		resp, err := http.Post(server.URL+"/", "text/plain", strings.NewReader("hello"))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		location := resp.Header.Get("Location")
		require.NotEmpty(t, location)

		resp, err = http.Get(location)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(body))
	})

	t.Run("counts operations in metrics", func(t *testing.T) {
		t.Parallel()
		server := newContainerServer(t)

		resp, err := http.Post(server.URL+"/", "text/plain", strings.NewReader("hello"))
		require.NoError(t, err)
		resp.Body.Close()

		assert.Eventually(t, func() bool {
			resp, err := http.Get(server.URL + "/metrics/")
			if err != nil {
				return false
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			return err == nil && strings.Contains(string(body), `clipstash_clip_operations_total{operation="create"`)
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("rejects invalid logger level", func(t *testing.T) {
		t.Parallel()

		opts, err := parseRunOptions([]string{"--storage", "memory"})
		require.NoError(t, err)
		opts.Log.LogLevel = "verbose"

		container, err := buildContainer(opts)
		require.NoError(t, err)

		err = container.Invoke(func(*http.Server) {})
		assert.Error(t, err)
	})

	t.Run("uses zerolog for services", func(t *testing.T) {
		t.Parallel()

		opts, err := parseRunOptions([]string{"--storage", "memory", "--logger", "zerolog"})
		require.NoError(t, err)

		container, err := buildContainer(opts)
		require.NoError(t, err)

		err = container.Invoke(func(l logger.Logger) {
			assert.IsType(t, newZerologProbe(), l)
		})
		require.NoError(t, err)
	})
}

func TestPing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(healthcheckResponse{Version: "test", Availability: true, Msg: "ok"})
	}))
	t.Cleanup(server.Close)

	t.Run("all methods pass on healthy server", func(t *testing.T) {
		for _, method := range []string{"simple", "200", "json"} {
			assert.NoError(t, ping(server.URL, method), method)
		}
	})

	t.Run("unreachable server", func(t *testing.T) {
		assert.Error(t, ping("http://127.0.0.1:1/", "simple"))
	})

	t.Run("missing url", func(t *testing.T) {
		assert.Error(t, pingCommand([]string{}))
	})
}

func TestPingUnhealthy(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(healthcheckResponse{Msg: "Error connection to database"})
	}))
	t.Cleanup(server.Close)

	assert.NoError(t, ping(server.URL, "simple"))
	assert.Error(t, ping(server.URL, "200"))
	assert.Error(t, ping(server.URL, "json"))
}

func TestAPIKeysCommand(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepository()
	apikeys := service.NewAPIKeysService(repo, event.NewPublisher(), config.DefaultClipValidationConfig{}, muteLogger{})

	var out bytes.Buffer
	require.NoError(t, runAPIKeysCommand(apikeys, []string{"gen"}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	key := strings.Fields(lines[1])[0]

	out.Reset()
	require.NoError(t, runAPIKeysCommand(apikeys, []string{"check", key}, &out))
	assert.Contains(t, out.String(), "✅valid")

	out.Reset()
	require.NoError(t, runAPIKeysCommand(apikeys, []string{"revoke", key}, &out))
	assert.Contains(t, out.String(), "revoked")

	out.Reset()
	require.NoError(t, runAPIKeysCommand(apikeys, []string{"check", key}, &out))
	assert.Contains(t, out.String(), "❌invalid")

	assert.Error(t, runAPIKeysCommand(apikeys, []string{"revoke", key}, &out))
	assert.Error(t, runAPIKeysCommand(apikeys, []string{"revoke"}, &out))
	assert.ErrorIs(t, runAPIKeysCommand(apikeys, []string{"list"}, &out), errUsage)
}

func TestOneShotCommandsRejectMemoryStorage(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	assert.ErrorIs(t, apikeysCommand([]string{"--storage", "memory", "gen"}, &out), errMemoryStorage)
	assert.ErrorIs(t, sweepCommand([]string{"--storage", "memory"}, &out), errMemoryStorage)
	assert.Empty(t, out.String())
}

func TestOneShotCommandsUseSharedStorage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clips.db")
	var out bytes.Buffer

	require.NoError(t, apikeysCommand([]string{"--storage", "sqlite", "--sqlite-path", path, "gen"}, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	key := strings.Fields(lines[1])[0]

	out.Reset()
	require.NoError(t, apikeysCommand([]string{"--storage", "sqlite", "--sqlite-path", path, "check", key}, &out))
	assert.Contains(t, out.String(), "✅valid")

	out.Reset()
	require.NoError(t, sweepCommand([]string{"--storage", "sqlite", "--sqlite-path", path}, &out))
	assert.Equal(t, "removed 0\n", out.String())
}

func TestDrain(t *testing.T) {
	t.Parallel()

	publisher := event.NewPublisher()
	var delivered atomic.Bool
	publisher.Subscribe(event.HandlerFunc(func(event.Event) {
		time.Sleep(50 * time.Millisecond)
		delivered.Store(true)
	}), event.NewClipsSweptEvent(0))

	publisher.NotifyAll(event.NewClipsSweptEvent(1))
	drain(publisher, &brokerConnection{}, discardLogger())

	assert.True(t, delivered.Load())
}

func TestSweepLoop(t *testing.T) {
	t.Parallel()

	opts, err := parseRunOptions([]string{"--storage", "memory"})
	require.NoError(t, err)

	container, err := buildContainer(opts)
	require.NoError(t, err)

	err = container.Invoke(func(clips *service.ClipService) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		go func() {
			sweepLoop(ctx, clips, sweepConfig{period: time.Millisecond}, discardLogger())
			close(done)
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("sweep loop did not stop")
		}
	})
	require.NoError(t, err)
}
