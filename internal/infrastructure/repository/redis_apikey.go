package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/thek4n/clipstash/internal/domain/domainerrors"
	"github.com/thek4n/clipstash/internal/domain/objectvalue"
	"github.com/thek4n/clipstash/internal/domain/repository"
)

const redisAPIKeysSet = "apikeys"

// RedisAPIKeyRepository redis implementation of domain interface.
type RedisAPIKeyRepository struct {
	client *redis.Client
}

// NewRedisAPIKeyRepository constructor.
func NewRedisAPIKeyRepository(c *redis.Client) *RedisAPIKeyRepository {
	return &RedisAPIKeyRepository{
		client: c,
	}
}

// SaveAPIKey adds apikey to set.
func (r *RedisAPIKeyRepository) SaveAPIKey(ctx context.Context, key objectvalue.APIKey) (objectvalue.APIKey, error) {
	added, err := r.client.SAdd(ctx, redisAPIKeysSet, key.String()).Result()
	if err != nil {
		return objectvalue.APIKey{}, fmt.Errorf("failure set apikey: %w", err)
	}
	if added == 0 {
		return objectvalue.APIKey{}, fmt.Errorf("failure set apikey: %w", domainerrors.ErrUniqueViolation)
	}

	return key, nil
}

// RevokeAPIKey removes apikey from set.
func (r *RedisAPIKeyRepository) RevokeAPIKey(ctx context.Context, key objectvalue.APIKey) (repository.RevocationStatus, error) {
	removed, err := r.client.SRem(ctx, redisAPIKeysSet, key.String()).Result()
	if err != nil {
		return repository.RevocationNotFound, fmt.Errorf("failure remove apikey: %w", err)
	}
	if removed == 0 {
		return repository.RevocationNotFound, nil
	}

	return repository.Revoked, nil
}

// APIKeyExists checks is key exists.
func (r *RedisAPIKeyRepository) APIKeyExists(ctx context.Context, key objectvalue.APIKey) (bool, error) {
	exists, err := r.client.SIsMember(ctx, redisAPIKeysSet, key.String()).Result()
	if err != nil {
		return false, fmt.Errorf("failure checking is key exists: %w", err)
	}

	return exists, nil
}
