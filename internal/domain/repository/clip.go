// Package repository contains domain persistence interfaces.
package repository

import (
	"context"
	"time"

	"github.com/thek4n/clipstash/internal/domain/aggregate"
	"github.com/thek4n/clipstash/internal/domain/objectvalue"
)

// ClipRepository domain interface.
// Implementations return domainerrors.ErrNoRows if shortcode is missing and
// domainerrors.ErrUniqueViolation on shortcode collision.
type ClipRepository interface {
	GetClip(context.Context, objectvalue.ShortCode) (aggregate.Clip, error)
	// CreateClip writes clip and reads it back by shortcode.
	CreateClip(context.Context, aggregate.Clip) (aggregate.Clip, error)
	UpdateClip(context.Context, objectvalue.ShortCode, aggregate.ClipPatch) (aggregate.Clip, error)
	IncrementHits(ctx context.Context, shortcode objectvalue.ShortCode, delta uint64) error
	DeleteClip(context.Context, objectvalue.ShortCode) error
	// DeleteExpired removes clips with expiration date before now.
	DeleteExpired(ctx context.Context, now time.Time) (uint64, error)
}
