// Package config is configuration for clip service.
package config

import (
	"time"
)

// OperationConfig contains getters for service operations.
type OperationConfig interface {
	// OperationTimeout bounds store calls of one service command.
	OperationTimeout() time.Duration
}

// ClipValidationConfig contains getters for clip validation values.
type ClipValidationConfig interface {
	OperationConfig

	MaxTitleLength() int
	MaxPasswordLength() int
	// MaxContentBytes limits clip content size in bytes.
	MaxContentBytes() int64

	// AllowPastExpiration allows expiration dates before now on create and update.
	AllowPastExpiration() bool
	// HideProtectedClips makes protected clips without valid password look missing.
	HideProtectedClips() bool

	ShortCodeLength() uint8
	MinRequestedShortCodeLength() uint8
	MaxShortCodeLength() uint8
	ShortCodeCharset() string
}

// SweepConfig contains getters for expired clips sweep.
type SweepConfig interface {
	SweepPeriod() time.Duration
}

// DefaultClipValidationConfig contains default values for clip validation.
type DefaultClipValidationConfig struct{}

// MaxTitleLength max title length in runes.
func (c DefaultClipValidationConfig) MaxTitleLength() int {
	return 128
}

// MaxContentBytes max content size in bytes.
func (c DefaultClipValidationConfig) MaxContentBytes() int64 {
	return 10 * 1024 * 1024
}

// MaxPasswordLength max password length in bytes.
func (c DefaultClipValidationConfig) MaxPasswordLength() int {
	return 1024
}

// AllowPastExpiration .
func (c DefaultClipValidationConfig) AllowPastExpiration() bool {
	return false
}

// HideProtectedClips .
func (c DefaultClipValidationConfig) HideProtectedClips() bool {
	return false
}

// ShortCodeLength generated shortcode length.
func (c DefaultClipValidationConfig) ShortCodeLength() uint8 {
	return 10
}

// MinRequestedShortCodeLength min length of custom shortcode.
func (c DefaultClipValidationConfig) MinRequestedShortCodeLength() uint8 {
	return 3
}

// MaxShortCodeLength max shortcode length.
func (c DefaultClipValidationConfig) MaxShortCodeLength() uint8 {
	return 20
}

// ShortCodeCharset allowed charset for shortcodes.
func (c DefaultClipValidationConfig) ShortCodeCharset() string {
	return "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
}

// OperationTimeout timeout for store calls of one command.
func (c DefaultClipValidationConfig) OperationTimeout() time.Duration {
	return 3 * time.Second
}

// DefaultSweepConfig contains default sweep values.
type DefaultSweepConfig struct{}

// SweepPeriod period between sweeps.
func (c DefaultSweepConfig) SweepPeriod() time.Duration {
	return time.Minute
}

// StorageConfig contains getters for storage tuning values.
type StorageConfig interface {
	CompressThresholdBytes() int
	MaxContentSize() int64
	APIKeyCacheSize() int
	// APIKeyCacheTTL bounds how long revocation by another process stays unnoticed.
	APIKeyCacheTTL() time.Duration
}

// DefaultStorageConfig contains default storage values.
type DefaultStorageConfig struct{}

// CompressThresholdBytes content bigger than this is stored compressed.
func (c DefaultStorageConfig) CompressThresholdBytes() int {
	return 1024
}

// MaxContentSize limit of decompressed content size in bytes.
func (c DefaultStorageConfig) MaxContentSize() int64 {
	return 10 * 1024 * 1024
}

// APIKeyCacheSize number of apikey lookups kept in memory.
func (c DefaultStorageConfig) APIKeyCacheSize() int {
	return 1024
}

// APIKeyCacheTTL lifetime of cached apikey lookup.
func (c DefaultStorageConfig) APIKeyCacheTTL() time.Duration {
	return 30 * time.Second
}
