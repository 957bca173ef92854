//go:build unit

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/thek4n/clipstash/internal/domain/aggregate"
	"github.com/thek4n/clipstash/internal/domain/config"
	"github.com/thek4n/clipstash/internal/domain/event"
	"github.com/thek4n/clipstash/internal/domain/objectvalue"
	"github.com/thek4n/clipstash/internal/infrastructure/repository"
)

var testNow = time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC)

type MuteLogger struct{}

func (l MuteLogger) Debug(string, ...any) {}
func (l MuteLogger) Error(string, ...any) {}
func (l MuteLogger) Info(string, ...any)  {}
func (l MuteLogger) Warn(string, ...any)  {}

type recordingLogger struct {
	MuteLogger
	errors []string
	mu     sync.Mutex
}

func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

// prefixHasher is reversible test hasher.
type prefixHasher struct{}

func (prefixHasher) Hash(p string) (string, error) {
	return "hashed:" + p, nil
}

func (prefixHasher) Verify(p, encoded string) (bool, error) {
	return encoded == "hashed:"+p, nil
}

type sequenceGenerator struct {
	n  int
	mu sync.Mutex
}

func (g *sequenceGenerator) Generate() (objectvalue.ShortCode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return objectvalue.ShortCode(fmt.Sprintf("gen%d", g.n)), nil
}

type constGenerator string

func (g constGenerator) Generate() (objectvalue.ShortCode, error) {
	return objectvalue.ShortCode(g), nil
}

type testConfig struct {
	config.DefaultClipValidationConfig
	hide bool
}

func (c testConfig) HideProtectedClips() bool {
	return c.hide
}

type smallContentConfig struct {
	config.DefaultClipValidationConfig
}

func (c smallContentConfig) MaxContentBytes() int64 {
	return 4
}

// brokenHitsRepository fails hit increments.
type brokenHitsRepository struct {
	*repository.MemoryRepository
}

func (r brokenHitsRepository) IncrementHits(context.Context, objectvalue.ShortCode, uint64) error {
	return errors.New("connection reset")
}

var errConnRefused = errors.New("connection refused")

// brokenRepository fails clip reads and writes.
type brokenRepository struct {
	*repository.MemoryRepository
}

func (r brokenRepository) CreateClip(context.Context, aggregate.Clip) (aggregate.Clip, error) {
	return aggregate.Clip{}, errConnRefused
}

func (r brokenRepository) GetClip(context.Context, objectvalue.ShortCode) (aggregate.Clip, error) {
	return aggregate.Clip{}, errConnRefused
}

type fixture struct {
	clips   *ClipService
	apikeys *APIKeysService
	repo    *repository.MemoryRepository
	apikey  string
}

func newFixture(t *testing.T, cfg config.ClipValidationConfig) fixture {
	t.Helper()

	repo := repository.NewMemoryRepository()
	publisher := event.NewPublisher()
	apikeys := NewAPIKeysService(repo, publisher, cfg, MuteLogger{})

	key, err := apikeys.GenerateAPIKey()
	if err != nil {
		t.Fatalf("fail to generate apikey: %s", err)
	}

	clips := NewClipService(repo, apikeys, prefixHasher{}, &sequenceGenerator{}, publisher, cfg, MuteLogger{})
	clips.now = func() time.Time { return testNow }

	return fixture{
		clips:   clips,
		apikeys: apikeys,
		repo:    repo,
		apikey:  key.String(),
	}
}

func ptr(s string) *string {
	return &s
}

func rfc3339(t time.Time) string {
	return t.Format(time.RFC3339)
}

var longTitle = strings.Repeat("я", 129)
