package repository

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thek4n/clipstash/internal/domain/aggregate"
	"github.com/thek4n/clipstash/internal/domain/config"
	"github.com/thek4n/clipstash/internal/domain/domainerrors"
	"github.com/thek4n/clipstash/internal/domain/objectvalue"
)

const (
	redisClipPrefix   = "clip:"
	redisExpiresIndex = "clips:expires"
)

var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// KEYS[1] clip key, ARGV field value pairs.
var createClipScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

var updateClipScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

// KEYS[1] clip key, ARGV[1] delta.
var incrementHitsScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
return redis.call('HINCRBY', KEYS[1], 'hits', ARGV[1])
`)

type redisClipRecord struct {
	ClipID   string `redis:"clip_id"`
	Title    string `redis:"title"`
	Password string `redis:"password"`
	Content  []byte `redis:"content"`
	Posted   int64  `redis:"posted"`
	Expires  int64  `redis:"expires"`
	Hits     int64  `redis:"hits"`
}

// RedisClipRepository redis implementation of domain interface.
// Clip is a hash, expiration dates are kept in sorted set for sweep.
type RedisClipRepository struct {
	client *redis.Client
	config config.StorageConfig
}

// NewRedisClipRepository constructor.
func NewRedisClipRepository(c *redis.Client, cfg config.StorageConfig) *RedisClipRepository {
	return &RedisClipRepository{
		client: c,
		config: cfg,
	}
}

func clipKey(shortcode objectvalue.ShortCode) string {
	return redisClipPrefix + shortcode.String()
}

// GetClip fetch clip from redis db.
func (r *RedisClipRepository) GetClip(ctx context.Context, shortcode objectvalue.ShortCode) (aggregate.Clip, error) {
	cmd := r.client.HGetAll(ctx, clipKey(shortcode))
	if err := cmd.Err(); err != nil {
		return aggregate.Clip{}, fmt.Errorf("fail to get clip by key '%s': %w", shortcode, err)
	}
	if len(cmd.Val()) == 0 {
		return aggregate.Clip{}, fmt.Errorf("fail to get clip by key '%s': %w", shortcode, domainerrors.ErrNoRows)
	}

	var record redisClipRecord
	if err := cmd.Scan(&record); err != nil {
		return aggregate.Clip{}, fmt.Errorf("fail to scan clip by key '%s': %w", shortcode, err)
	}

	if isCompressed(record.Content) {
		decompressed, err := decompress(record.Content, r.config.MaxContentSize())
		if err != nil {
			return aggregate.Clip{}, fmt.Errorf("fail to decompress compressed content: %w", err)
		}
		record.Content = decompressed
	}

	id, err := objectvalue.ParseClipID(record.ClipID)
	if err != nil {
		return aggregate.Clip{}, fmt.Errorf("fail to parse stored clip id: %w", err)
	}

	hits, err := objectvalue.HitsFromInt64(record.Hits)
	if err != nil {
		return aggregate.Clip{}, fmt.Errorf("fail to restore hits: %w", err)
	}

	var expires *time.Time
	if record.Expires != 0 {
		t := time.Unix(record.Expires, 0)
		expires = &t
	}

	return restoreClip(
		id, shortcode.String(), string(record.Content), record.Title,
		time.Unix(record.Posted, 0), expires, record.Password, hits,
	)
}

// CreateClip writes clip if key is free and reads it back.
func (r *RedisClipRepository) CreateClip(ctx context.Context, clip aggregate.Clip) (aggregate.Clip, error) {
	hits, err := clip.Hits().Int64()
	if err != nil {
		return aggregate.Clip{}, fmt.Errorf("fail to convert hits: %w", err)
	}

	content, err := r.encodeContent(clip.Content())
	if err != nil {
		return aggregate.Clip{}, err
	}

	var expires int64
	if t, ok := clip.Expires().Time(); ok {
		expires = t.Unix()
	}

	args := []any{
		"clip_id", clip.ID().String(),
		"content", content,
		"title", clip.Title().Value(),
		"posted", clip.Posted().Time().Unix(),
		"expires", expires,
		"password", clip.Password().Hash(),
		"hits", hits,
	}

	created, err := createClipScript.Run(ctx, r.client, []string{clipKey(clip.ShortCode())}, args...).Int()
	if err != nil {
		return aggregate.Clip{}, fmt.Errorf("failed to set key '%s': %w", clip.ShortCode(), err)
	}
	if created == 0 {
		return aggregate.Clip{}, fmt.Errorf("failed to set key '%s': %w", clip.ShortCode(), domainerrors.ErrUniqueViolation)
	}

	if err := r.indexExpiration(ctx, clip.ShortCode(), clip.Expires()); err != nil {
		return aggregate.Clip{}, err
	}

	return r.GetClip(ctx, clip.ShortCode())
}

// UpdateClip writes patched fields of existing clip.
func (r *RedisClipRepository) UpdateClip(
	ctx context.Context,
	shortcode objectvalue.ShortCode,
	patch aggregate.ClipPatch,
) (aggregate.Clip, error) {
	var args []any

	if patch.Content != nil && !patch.Content.Empty() {
		content, err := r.encodeContent(*patch.Content)
		if err != nil {
			return aggregate.Clip{}, err
		}
		args = append(args, "content", content)
	}
	if patch.Title != nil {
		args = append(args, "title", patch.Title.Value())
	}
	if patch.Expires != nil {
		var expires int64
		if t, ok := patch.Expires.Time(); ok {
			expires = t.Unix()
		}
		args = append(args, "expires", expires)
	}
	if patch.Password != nil {
		args = append(args, "password", patch.Password.Hash())
	}

	if len(args) == 0 {
		return r.GetClip(ctx, shortcode)
	}

	updated, err := updateClipScript.Run(ctx, r.client, []string{clipKey(shortcode)}, args...).Int()
	if err != nil {
		return aggregate.Clip{}, fmt.Errorf("failed to update key '%s': %w", shortcode, err)
	}
	if updated == 0 {
		return aggregate.Clip{}, fmt.Errorf("failed to update key '%s': %w", shortcode, domainerrors.ErrNoRows)
	}

	if patch.Expires != nil {
		if err := r.indexExpiration(ctx, shortcode, *patch.Expires); err != nil {
			return aggregate.Clip{}, err
		}
	}

	return r.GetClip(ctx, shortcode)
}

// IncrementHits atomically adds delta to clip hits.
func (r *RedisClipRepository) IncrementHits(ctx context.Context, shortcode objectvalue.ShortCode, delta uint64) error {
	d, err := objectvalue.NewHits(delta).Int64()
	if err != nil {
		return fmt.Errorf("fail to increment hits: %w", err)
	}

	err = incrementHitsScript.Run(ctx, r.client, []string{clipKey(shortcode)}, d).Err()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("fail to increment hits of '%s': %w", shortcode, domainerrors.ErrNoRows)
	}
	if err != nil {
		return fmt.Errorf("fail to increment hits of '%s': %w", shortcode, err)
	}

	return nil
}

// DeleteClip removes clip and its expiration index entry.
func (r *RedisClipRepository) DeleteClip(ctx context.Context, shortcode objectvalue.ShortCode) error {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, clipKey(shortcode))
		pipe.ZRem(ctx, redisExpiresIndex, shortcode.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failure remove clip by key '%s': %w", shortcode, err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("failure remove clip by key '%s': %w", shortcode, domainerrors.ErrNoRows)
	}

	return nil
}

// DeleteExpired removes clips with expiration date before now.
func (r *RedisClipRepository) DeleteExpired(ctx context.Context, now time.Time) (uint64, error) {
	shortcodes, err := r.client.ZRangeByScore(ctx, redisExpiresIndex, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("fail to fetch expired clips: %w", err)
	}
	if len(shortcodes) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(shortcodes))
	members := make([]any, 0, len(shortcodes))
	for _, sc := range shortcodes {
		keys = append(keys, redisClipPrefix+sc)
		members = append(members, sc)
	}

	var del *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, redisExpiresIndex, members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("fail to delete expired clips: %w", err)
	}

	return uint64(del.Val()), nil
}

// Ping checks redis connection.
func (r *RedisClipRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClipRepository) indexExpiration(
	ctx context.Context,
	shortcode objectvalue.ShortCode,
	expires objectvalue.Expires,
) error {
	var err error
	if t, ok := expires.Time(); ok {
		err = r.client.ZAdd(ctx, redisExpiresIndex, redis.Z{
			Score:  float64(t.Unix()),
			Member: shortcode.String(),
		}).Err()
	} else {
		err = r.client.ZRem(ctx, redisExpiresIndex, shortcode.String()).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to index expiration for key '%s': %w", shortcode, err)
	}

	return nil
}

func (r *RedisClipRepository) encodeContent(content objectvalue.Content) ([]byte, error) {
	data := []byte(content.Value())
	if len(data) <= r.config.CompressThresholdBytes() {
		return data, nil
	}

	compressed, err := compress(data)
	if err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}

	return compressed, nil
}

func compress(data []byte) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer bufferPool.Put(buf)
	buf.Reset()

	buf.Grow(len(data) / 2)

	gz, err := gzip.NewWriterLevel(buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}

	if _, err := gz.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write data: %w", err)
	}

	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return bytes.Clone(buf.Bytes()), nil
}

func decompress(data []byte, limit int64) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	defer bufferPool.Put(buf)
	buf.Reset()
	buf.Grow(len(data) * 2)

	n, err := io.CopyN(buf, gz, limit+1)
	if !errors.Is(err, io.EOF) && err != nil {
		return nil, fmt.Errorf("failed to decompress data: %w", err)
	}
	if n > limit {
		return nil, fmt.Errorf("decompressed content exceeds %d bytes", limit)
	}

	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip reader: %w", err)
	}

	return bytes.Clone(buf.Bytes()), nil
}

func isCompressed(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}
