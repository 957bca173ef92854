package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thek4n/clipstash/internal/domain/aggregate"
	"github.com/thek4n/clipstash/internal/domain/domainerrors"
	"github.com/thek4n/clipstash/internal/domain/objectvalue"
	"github.com/thek4n/clipstash/internal/domain/repository"
)

const pgUniqueViolation = "23505"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS clips (
	clip_id TEXT PRIMARY KEY,
	shortcode TEXT NOT NULL UNIQUE,
	content TEXT NOT NULL,
	title TEXT,
	posted BIGINT NOT NULL,
	expires BIGINT,
	password TEXT,
	hits BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_clips_expires ON clips(expires);
CREATE TABLE IF NOT EXISTS api_keys (
	api_key BYTEA NOT NULL UNIQUE
);
`

// PostgresRepository postgres implementation of clip and apikey repositories.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to database by dsn and applies schema.
func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolConfig.HealthCheckPeriod = 1 * time.Minute
	poolConfig.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Close closes pool.
func (r *PostgresRepository) Close() {
	r.pool.Close()
}

// Ping checks database connection.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// GetClip fetch clip by shortcode.
func (r *PostgresRepository) GetClip(ctx context.Context, shortcode objectvalue.ShortCode) (aggregate.Clip, error) {
	q := `
	SELECT clip_id, shortcode, content, title, posted, expires, password, hits
	FROM clips WHERE shortcode = $1
	`

	var row sqlClipRow
	err := r.pool.QueryRow(ctx, q, shortcode.String()).Scan(
		&row.ClipID, &row.ShortCode, &row.Content, &row.Title, &row.Posted, &row.Expires, &row.Password, &row.Hits,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return aggregate.Clip{}, fmt.Errorf("fail to get clip '%s': %w", shortcode, domainerrors.ErrNoRows)
	}
	if err != nil {
		return aggregate.Clip{}, fmt.Errorf("fail to get clip '%s': %w", shortcode, err)
	}

	return row.toClip()
}

// CreateClip inserts clip and reads it back.
func (r *PostgresRepository) CreateClip(ctx context.Context, clip aggregate.Clip) (aggregate.Clip, error) {
	row, err := newSQLClipRow(clip)
	if err != nil {
		return aggregate.Clip{}, err
	}

	q := `
	INSERT INTO clips (clip_id, shortcode, content, title, posted, expires, password, hits)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, q,
		row.ClipID, row.ShortCode, row.Content, row.Title, row.Posted, row.Expires, row.Password, row.Hits,
	)
	if err != nil {
		return aggregate.Clip{}, fmt.Errorf("fail to create clip '%s': %w", clip.ShortCode(), translatePgError(err))
	}

	return r.GetClip(ctx, clip.ShortCode())
}

// UpdateClip updates patched columns and reads clip back.
func (r *PostgresRepository) UpdateClip(
	ctx context.Context,
	shortcode objectvalue.ShortCode,
	patch aggregate.ClipPatch,
) (aggregate.Clip, error) {
	sets, args := patchColumns(patch, func(n int) string { return fmt.Sprintf("$%d", n) })
	if len(sets) == 0 {
		return r.GetClip(ctx, shortcode)
	}

	args = append(args, shortcode.String())
	q := fmt.Sprintf("UPDATE clips SET %s WHERE shortcode = $%d", strings.Join(sets, ", "), len(args))

	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return aggregate.Clip{}, fmt.Errorf("fail to update clip '%s': %w", shortcode, err)
	}
	if tag.RowsAffected() == 0 {
		return aggregate.Clip{}, fmt.Errorf("fail to update clip '%s': %w", shortcode, domainerrors.ErrNoRows)
	}

	return r.GetClip(ctx, shortcode)
}

// IncrementHits adds delta to clip hits.
func (r *PostgresRepository) IncrementHits(ctx context.Context, shortcode objectvalue.ShortCode, delta uint64) error {
	d, err := objectvalue.NewHits(delta).Int64()
	if err != nil {
		return fmt.Errorf("fail to increment hits: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `UPDATE clips SET hits = hits + $1 WHERE shortcode = $2`, d, shortcode.String())
	if err != nil {
		return fmt.Errorf("fail to increment hits of clip '%s': %w", shortcode, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("fail to increment hits of clip '%s': %w", shortcode, domainerrors.ErrNoRows)
	}

	return nil
}

// DeleteClip removes clip.
func (r *PostgresRepository) DeleteClip(ctx context.Context, shortcode objectvalue.ShortCode) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clips WHERE shortcode = $1`, shortcode.String())
	if err != nil {
		return fmt.Errorf("fail to delete clip '%s': %w", shortcode, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("fail to delete clip '%s': %w", shortcode, domainerrors.ErrNoRows)
	}

	return nil
}

// DeleteExpired removes clips expired before now.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (uint64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clips WHERE expires IS NOT NULL AND expires < $1`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("fail to delete expired clips: %w", err)
	}

	return uint64(tag.RowsAffected()), nil
}

// SaveAPIKey inserts apikey.
func (r *PostgresRepository) SaveAPIKey(ctx context.Context, key objectvalue.APIKey) (objectvalue.APIKey, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO api_keys (api_key) VALUES ($1)`, key.Bytes())
	if err != nil {
		return objectvalue.APIKey{}, fmt.Errorf("fail to save apikey: %w", translatePgError(err))
	}

	return key, nil
}

// RevokeAPIKey deletes apikey.
func (r *PostgresRepository) RevokeAPIKey(ctx context.Context, key objectvalue.APIKey) (repository.RevocationStatus, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM api_keys WHERE api_key = $1`, key.Bytes())
	if err != nil {
		return repository.RevocationNotFound, fmt.Errorf("fail to revoke apikey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.RevocationNotFound, nil
	}

	return repository.Revoked, nil
}

// APIKeyExists checks is apikey saved.
func (r *PostgresRepository) APIKeyExists(ctx context.Context, key objectvalue.APIKey) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM api_keys WHERE api_key = $1)`, key.Bytes()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("fail to check apikey exists: %w", err)
	}

	return exists, nil
}

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", domainerrors.ErrUniqueViolation, pgErr.ConstraintName)
	}
	return err
}
