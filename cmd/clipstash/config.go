package main

import (
	"time"

	"github.com/thek4n/clipstash/internal/domain/config"
)

type clipOptions struct {
	TitleLength         int           `long:"max-title" env:"CLIPSTASH_MAX_TITLE" default:"128" description:"Max clip title length in characters"`
	ShortCodeLength     uint8         `long:"shortcode-length" env:"CLIPSTASH_SHORTCODE_LENGTH" default:"10" description:"Generated shortcode length"`
	HideProtected       bool          `long:"hide-protected" env:"CLIPSTASH_HIDE_PROTECTED" description:"Answer not found instead of forbidden for protected clips"`
	AllowPastExpiration bool          `long:"allow-past-expiration" env:"CLIPSTASH_ALLOW_PAST_EXPIRATION" description:"Accept expiration dates in the past"`
	Timeout             time.Duration `long:"timeout" env:"CLIPSTASH_TIMEOUT" default:"3s" description:"Storage operation timeout"`
}

// clipConfig overrides default clip validation config by command line options.
type clipConfig struct {
	config.DefaultClipValidationConfig
	opts clipOptions
}

func (c clipConfig) MaxTitleLength() int {
	return c.opts.TitleLength
}

func (c clipConfig) ShortCodeLength() uint8 {
	return c.opts.ShortCodeLength
}

func (c clipConfig) HideProtectedClips() bool {
	return c.opts.HideProtected
}

func (c clipConfig) AllowPastExpiration() bool {
	return c.opts.AllowPastExpiration
}

func (c clipConfig) OperationTimeout() time.Duration {
	return c.opts.Timeout
}

type sweepConfig struct {
	period time.Duration
}

func (c sweepConfig) SweepPeriod() time.Duration {
	return c.period
}

// runStorageConfig overrides default storage config by command line options.
type runStorageConfig struct {
	config.DefaultStorageConfig
	apikeyCacheTTL time.Duration
}

func (c runStorageConfig) APIKeyCacheTTL() time.Duration {
	return c.apikeyCacheTTL
}
