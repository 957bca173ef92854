package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/thek4n/clipstash/internal/application/service"
	"github.com/thek4n/clipstash/internal/domain/config"
	"github.com/thek4n/clipstash/internal/domain/event"
	"github.com/thek4n/clipstash/internal/infrastructure/hasher"
	infralogger "github.com/thek4n/clipstash/internal/infrastructure/logger"
	"github.com/thek4n/clipstash/internal/infrastructure/shortcode"
)

type sweepOptions struct {
	Store storeOptions `group:"Storage Options"`
}

// sweepCommand removes expired clips once. Useful as cron job when server sweeper is not enough.
func sweepCommand(args []string, out io.Writer) error {
	var opts sweepOptions

	if _, err := flags.NewParser(&opts, flags.Default).ParseArgs(args); err != nil {
		return fmt.Errorf("parse params error: %w", err)
	}

	if err := requirePersistentStore(opts.Store); err != nil {
		return err
	}

	s, err := openStore(opts.Store, config.DefaultStorageConfig{})
	if err != nil {
		return err
	}
	defer s.Close()

	cfg := config.DefaultClipValidationConfig{}
	lgr := infralogger.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	publisher := event.NewPublisher()

	generator, err := shortcode.NewRandomGenerator(cfg.ShortCodeLength(), cfg.ShortCodeCharset())
	if err != nil {
		return err
	}

	apikeys := service.NewAPIKeysService(s.apikeys, publisher, cfg, lgr)
	clips := service.NewClipService(s.clips, apikeys, hasher.NewDefaultArgon2Hasher(), generator, publisher, cfg, lgr)

	removed, err := clips.SweepExpired(time.Now())
	if err != nil {
		return fmt.Errorf("fail to sweep: %w", err)
	}

	fmt.Fprintf(out, "removed %d\n", removed)
	return nil
}
