package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/thek4n/clipstash/internal/domain/aggregate"
	"github.com/thek4n/clipstash/internal/domain/domainerrors"
	"github.com/thek4n/clipstash/internal/domain/objectvalue"
	"github.com/thek4n/clipstash/internal/domain/repository"
)

const sqliteSweepBatch = 100

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS clips (
	clip_id TEXT PRIMARY KEY,
	shortcode TEXT NOT NULL UNIQUE,
	content TEXT NOT NULL,
	title TEXT,
	posted INTEGER NOT NULL,
	expires INTEGER,
	password TEXT,
	hits INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_clips_expires ON clips(expires);
CREATE TABLE IF NOT EXISTS api_keys (
	api_key BLOB NOT NULL UNIQUE
);
`

// SQLiteRepository sqlite implementation of clip and apikey repositories.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens database at path and applies schema.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open db")
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping db")
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "migration failed")
	}

	return r, nil
}

func (r *SQLiteRepository) migrate() error {
	if _, err := r.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return errors.Wrap(err, "enable WAL mode")
	}
	if _, err := r.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return errors.Wrap(err, "set busy timeout")
	}
	_, err := r.db.Exec(sqliteSchema)
	return errors.Wrap(err, "create tables")
}

// Close closes database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Ping checks database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return errors.Wrap(r.db.PingContext(ctx), "ping sqlite")
}

const sqliteSelectClip = `
SELECT clip_id, shortcode, content, title, posted, expires, password, hits
FROM clips WHERE shortcode = ?
`

// GetClip fetch clip by shortcode.
func (r *SQLiteRepository) GetClip(ctx context.Context, shortcode objectvalue.ShortCode) (aggregate.Clip, error) {
	var row sqlClipRow
	err := r.db.QueryRowContext(ctx, sqliteSelectClip, shortcode.String()).Scan(
		&row.ClipID, &row.ShortCode, &row.Content, &row.Title, &row.Posted, &row.Expires, &row.Password, &row.Hits,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return aggregate.Clip{}, errors.Wrapf(domainerrors.ErrNoRows, "get clip '%s'", shortcode)
	}
	if err != nil {
		return aggregate.Clip{}, errors.Wrapf(err, "get clip '%s'", shortcode)
	}

	return row.toClip()
}

// CreateClip inserts clip and reads it back.
func (r *SQLiteRepository) CreateClip(ctx context.Context, clip aggregate.Clip) (aggregate.Clip, error) {
	row, err := newSQLClipRow(clip)
	if err != nil {
		return aggregate.Clip{}, err
	}

	q := `
	INSERT INTO clips (clip_id, shortcode, content, title, posted, expires, password, hits)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, q,
		row.ClipID, row.ShortCode, row.Content, row.Title, row.Posted, row.Expires, row.Password, row.Hits,
	)
	if err != nil {
		return aggregate.Clip{}, errors.Wrapf(translateSQLiteError(err), "create clip '%s'", clip.ShortCode())
	}

	return r.GetClip(ctx, clip.ShortCode())
}

// UpdateClip updates patched columns and reads clip back.
func (r *SQLiteRepository) UpdateClip(
	ctx context.Context,
	shortcode objectvalue.ShortCode,
	patch aggregate.ClipPatch,
) (aggregate.Clip, error) {
	sets, args := patchColumns(patch, func(int) string { return "?" })
	if len(sets) == 0 {
		return r.GetClip(ctx, shortcode)
	}

	args = append(args, shortcode.String())
	q := "UPDATE clips SET " + strings.Join(sets, ", ") + " WHERE shortcode = ?"

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return aggregate.Clip{}, errors.Wrapf(err, "update clip '%s'", shortcode)
	}
	if err := expectAffected(res, "update clip '%s'", shortcode); err != nil {
		return aggregate.Clip{}, err
	}

	return r.GetClip(ctx, shortcode)
}

// IncrementHits adds delta to clip hits.
func (r *SQLiteRepository) IncrementHits(ctx context.Context, shortcode objectvalue.ShortCode, delta uint64) error {
	d, err := objectvalue.NewHits(delta).Int64()
	if err != nil {
		return errors.Wrap(err, "incr hits")
	}

	res, err := r.db.ExecContext(ctx, `UPDATE clips SET hits = hits + ? WHERE shortcode = ?`, d, shortcode.String())
	if err != nil {
		return errors.Wrapf(err, "incr hits of clip '%s'", shortcode)
	}

	return expectAffected(res, "incr hits of clip '%s'", shortcode)
}

// DeleteClip removes clip.
func (r *SQLiteRepository) DeleteClip(ctx context.Context, shortcode objectvalue.ShortCode) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clips WHERE shortcode = ?`, shortcode.String())
	if err != nil {
		return errors.Wrapf(err, "delete clip '%s'", shortcode)
	}

	return expectAffected(res, "delete clip '%s'", shortcode)
}

// DeleteExpired removes clips expired before now in batches.
func (r *SQLiteRepository) DeleteExpired(ctx context.Context, now time.Time) (uint64, error) {
	var total uint64
	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		res, err := r.db.ExecContext(ctx, `
			DELETE FROM clips
			WHERE clip_id IN (
				SELECT clip_id FROM clips
				WHERE expires IS NOT NULL AND expires < ?
				LIMIT ?
			)
		`, now.Unix(), sqliteSweepBatch)
		if err != nil {
			return total, errors.Wrap(err, "sweep batch failed")
		}

		deleted, err := res.RowsAffected()
		if err != nil {
			return total, errors.Wrap(err, "sweep rows affected")
		}
		total += uint64(deleted)

		if deleted < sqliteSweepBatch {
			return total, nil
		}
	}
}

// SaveAPIKey inserts apikey.
func (r *SQLiteRepository) SaveAPIKey(ctx context.Context, key objectvalue.APIKey) (objectvalue.APIKey, error) {
	_, err := r.db.ExecContext(ctx, `INSERT INTO api_keys (api_key) VALUES (?)`, key.Bytes())
	if err != nil {
		return objectvalue.APIKey{}, errors.Wrap(translateSQLiteError(err), "save apikey")
	}

	return key, nil
}

// RevokeAPIKey deletes apikey.
func (r *SQLiteRepository) RevokeAPIKey(ctx context.Context, key objectvalue.APIKey) (repository.RevocationStatus, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE api_key = ?`, key.Bytes())
	if err != nil {
		return repository.RevocationNotFound, errors.Wrap(err, "revoke apikey")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return repository.RevocationNotFound, errors.Wrap(err, "revoke apikey rows affected")
	}
	if n == 0 {
		return repository.RevocationNotFound, nil
	}

	return repository.Revoked, nil
}

// APIKeyExists checks is apikey saved.
func (r *SQLiteRepository) APIKeyExists(ctx context.Context, key objectvalue.APIKey) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM api_keys WHERE api_key = ? LIMIT 1`, key.Bytes()).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "apikey exists check failed")
	}

	return exists == 1, nil
}

func translateSQLiteError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return domainerrors.ErrUniqueViolation
	}
	return err
}

func expectAffected(res sql.Result, format string, shortcode objectvalue.ShortCode) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, format, shortcode)
	}
	if n == 0 {
		return errors.Wrapf(domainerrors.ErrNoRows, format, shortcode)
	}
	return nil
}
