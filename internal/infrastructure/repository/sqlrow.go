package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/thek4n/clipstash/internal/domain/aggregate"
	"github.com/thek4n/clipstash/internal/domain/objectvalue"
)

// sqlClipRow is clips table row. Dates are unix seconds.
type sqlClipRow struct {
	ClipID    string
	ShortCode string
	Content   string
	Title     sql.NullString
	Posted    int64
	Expires   sql.NullInt64
	Password  sql.NullString
	Hits      int64
}

func newSQLClipRow(clip aggregate.Clip) (sqlClipRow, error) {
	hits, err := clip.Hits().Int64()
	if err != nil {
		return sqlClipRow{}, fmt.Errorf("fail to convert hits: %w", err)
	}

	row := sqlClipRow{
		ClipID:    clip.ID().String(),
		ShortCode: clip.ShortCode().String(),
		Content:   clip.Content().Value(),
		Title:     nullString(clip.Title().Value()),
		Posted:    clip.Posted().Time().Unix(),
		Password:  nullString(clip.Password().Hash()),
		Hits:      hits,
	}

	if t, ok := clip.Expires().Time(); ok {
		row.Expires = sql.NullInt64{Int64: t.Unix(), Valid: true}
	}

	return row, nil
}

func (r sqlClipRow) toClip() (aggregate.Clip, error) {
	id, err := objectvalue.ParseClipID(r.ClipID)
	if err != nil {
		return aggregate.Clip{}, fmt.Errorf("fail to parse stored clip id: %w", err)
	}

	hits, err := objectvalue.HitsFromInt64(r.Hits)
	if err != nil {
		return aggregate.Clip{}, fmt.Errorf("fail to restore hits: %w", err)
	}

	var expires *time.Time
	if r.Expires.Valid {
		t := time.Unix(r.Expires.Int64, 0)
		expires = &t
	}

	return restoreClip(
		id, r.ShortCode, r.Content, r.Title.String,
		time.Unix(r.Posted, 0), expires, r.Password.String, hits,
	)
}

// restoreClip assembles clip from stored primitives without policy checks.
func restoreClip(
	id objectvalue.ClipID,
	shortcode, content, title string,
	posted time.Time,
	expires *time.Time,
	passwordHash string,
	hits objectvalue.Hits,
) (aggregate.Clip, error) {
	sc, err := objectvalue.NewShortCode(shortcode)
	if err != nil {
		return aggregate.Clip{}, fmt.Errorf("fail to restore shortcode: %w", err)
	}

	c, err := objectvalue.NewContent(content)
	if err != nil {
		return aggregate.Clip{}, fmt.Errorf("fail to restore content: %w", err)
	}

	t, err := objectvalue.NewTitle(title, len(title))
	if err != nil {
		return aggregate.Clip{}, fmt.Errorf("fail to restore title: %w", err)
	}

	clip, err := aggregate.NewClip(
		id, sc, c, t,
		objectvalue.NewPosted(posted),
		objectvalue.ExpiresFromStore(expires),
		objectvalue.PasswordFromHash(passwordHash),
		hits,
	)
	if err != nil {
		return aggregate.Clip{}, fmt.Errorf("fail to restore clip: %w", err)
	}

	return clip, nil
}

// patchColumns returns SET clauses and args for patch.
// placeholder returns parameter marker for 1-based argument position.
func patchColumns(patch aggregate.ClipPatch, placeholder func(n int) string) ([]string, []any) {
	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = "+placeholder(len(args)))
	}

	if patch.Content != nil && !patch.Content.Empty() {
		add("content", patch.Content.Value())
	}
	if patch.Title != nil {
		add("title", nullString(patch.Title.Value()))
	}
	if patch.Expires != nil {
		if t, ok := patch.Expires.Time(); ok {
			add("expires", sql.NullInt64{Int64: t.Unix(), Valid: true})
		} else {
			add("expires", sql.NullInt64{})
		}
	}
	if patch.Password != nil {
		add("password", nullString(patch.Password.Hash()))
	}

	return sets, args
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
