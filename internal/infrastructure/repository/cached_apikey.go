package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/thek4n/clipstash/internal/domain/objectvalue"
	"github.com/thek4n/clipstash/internal/domain/repository"
)

// CachedAPIKeyRepository caches positive apikey lookups of wrapped repository for ttl.
// Revocation through this repository invalidates cache entry at once,
// revocation by other processes is noticed after ttl.
type CachedAPIKeyRepository struct {
	next  repository.APIKeyRepository
	cache *expirable.LRU[objectvalue.APIKey, struct{}]
}

// NewCachedAPIKeyRepository constructor.
func NewCachedAPIKeyRepository(
	next repository.APIKeyRepository,
	size int,
	ttl time.Duration,
) (*CachedAPIKeyRepository, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive")
	}

	return &CachedAPIKeyRepository{
		next:  next,
		cache: expirable.NewLRU[objectvalue.APIKey, struct{}](size, nil, ttl),
	}, nil
}

// SaveAPIKey saves apikey in wrapped repository.
func (r *CachedAPIKeyRepository) SaveAPIKey(ctx context.Context, key objectvalue.APIKey) (objectvalue.APIKey, error) {
	return r.next.SaveAPIKey(ctx, key)
}

// RevokeAPIKey drops cached entry before and after revoking.
// Second removal drops entry cached by lookup running during revocation.
func (r *CachedAPIKeyRepository) RevokeAPIKey(ctx context.Context, key objectvalue.APIKey) (repository.RevocationStatus, error) {
	r.cache.Remove(key)
	defer r.cache.Remove(key)

	return r.next.RevokeAPIKey(ctx, key)
}

// APIKeyExists answers from cache or wrapped repository.
func (r *CachedAPIKeyRepository) APIKeyExists(ctx context.Context, key objectvalue.APIKey) (bool, error) {
	if _, ok := r.cache.Get(key); ok {
		return true, nil
	}

	exists, err := r.next.APIKeyExists(ctx, key)
	if err != nil {
		return false, err
	}

	if exists {
		r.cache.Add(key, struct{}{})
	}

	return exists, nil
}
