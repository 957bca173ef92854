// Package repository contains implementations of domain repositories.
package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/thek4n/clipstash/internal/domain/aggregate"
	"github.com/thek4n/clipstash/internal/domain/domainerrors"
	"github.com/thek4n/clipstash/internal/domain/objectvalue"
	"github.com/thek4n/clipstash/internal/domain/repository"
)

// MemoryRepository in-process implementation of clip and apikey repositories.
// Data lives until process exits.
type MemoryRepository struct {
	clips   map[objectvalue.ShortCode]aggregate.Clip
	apikeys map[objectvalue.APIKey]struct{}
	mu      sync.RWMutex
}

// NewMemoryRepository constructor.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		clips:   make(map[objectvalue.ShortCode]aggregate.Clip),
		apikeys: make(map[objectvalue.APIKey]struct{}),
	}
}

// GetClip fetch clip by shortcode.
func (r *MemoryRepository) GetClip(ctx context.Context, shortcode objectvalue.ShortCode) (aggregate.Clip, error) {
	if err := ctx.Err(); err != nil {
		return aggregate.Clip{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	clip, ok := r.clips[shortcode]
	if !ok {
		return aggregate.Clip{}, fmt.Errorf("fail to get clip '%s': %w", shortcode, domainerrors.ErrNoRows)
	}

	return clip, nil
}

// CreateClip stores clip if shortcode is free.
func (r *MemoryRepository) CreateClip(ctx context.Context, clip aggregate.Clip) (aggregate.Clip, error) {
	if err := ctx.Err(); err != nil {
		return aggregate.Clip{}, err
	}

	r.mu.Lock()
	if _, ok := r.clips[clip.ShortCode()]; ok {
		r.mu.Unlock()
		return aggregate.Clip{}, fmt.Errorf("fail to create clip '%s': %w", clip.ShortCode(), domainerrors.ErrUniqueViolation)
	}
	r.clips[clip.ShortCode()] = clip
	r.mu.Unlock()

	return r.GetClip(ctx, clip.ShortCode())
}

// UpdateClip applies patch to stored clip.
func (r *MemoryRepository) UpdateClip(
	ctx context.Context,
	shortcode objectvalue.ShortCode,
	patch aggregate.ClipPatch,
) (aggregate.Clip, error) {
	if err := ctx.Err(); err != nil {
		return aggregate.Clip{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clip, ok := r.clips[shortcode]
	if !ok {
		return aggregate.Clip{}, fmt.Errorf("fail to update clip '%s': %w", shortcode, domainerrors.ErrNoRows)
	}

	clip = clip.Update(patch)
	r.clips[shortcode] = clip

	return clip, nil
}

// IncrementHits increases clip hits by delta.
func (r *MemoryRepository) IncrementHits(ctx context.Context, shortcode objectvalue.ShortCode, delta uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clip, ok := r.clips[shortcode]
	if !ok {
		return fmt.Errorf("fail to increment hits of clip '%s': %w", shortcode, domainerrors.ErrNoRows)
	}

	hits, err := clip.Hits().Increment(delta)
	if err != nil {
		return fmt.Errorf("fail to increment hits of clip '%s': %w", shortcode, err)
	}

	r.clips[shortcode] = clip.WithHits(hits)

	return nil
}

// DeleteClip removes clip.
func (r *MemoryRepository) DeleteClip(ctx context.Context, shortcode objectvalue.ShortCode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clips[shortcode]; !ok {
		return fmt.Errorf("fail to delete clip '%s': %w", shortcode, domainerrors.ErrNoRows)
	}
	delete(r.clips, shortcode)

	return nil
}

// DeleteExpired removes clips expired before now.
func (r *MemoryRepository) DeleteExpired(ctx context.Context, now time.Time) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed uint64
	for shortcode, clip := range r.clips {
		expires, ok := clip.Expires().Time()
		if ok && expires.Before(now) {
			delete(r.clips, shortcode)
			removed++
		}
	}

	return removed, nil
}

// SaveAPIKey stores new apikey.
func (r *MemoryRepository) SaveAPIKey(ctx context.Context, key objectvalue.APIKey) (objectvalue.APIKey, error) {
	if err := ctx.Err(); err != nil {
		return objectvalue.APIKey{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.apikeys[key]; ok {
		return objectvalue.APIKey{}, fmt.Errorf("fail to save apikey: %w", domainerrors.ErrUniqueViolation)
	}
	r.apikeys[key] = struct{}{}

	return key, nil
}

// RevokeAPIKey removes apikey.
func (r *MemoryRepository) RevokeAPIKey(ctx context.Context, key objectvalue.APIKey) (repository.RevocationStatus, error) {
	if err := ctx.Err(); err != nil {
		return repository.RevocationNotFound, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.apikeys[key]; !ok {
		return repository.RevocationNotFound, nil
	}
	delete(r.apikeys, key)

	return repository.Revoked, nil
}

// APIKeyExists checks is apikey saved.
func (r *MemoryRepository) APIKeyExists(ctx context.Context, key objectvalue.APIKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.apikeys[key]
	return ok, nil
}
