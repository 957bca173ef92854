// Package aggregate contains domain aggregates
package aggregate

import (
	"time"

	"github.com/thek4n/clipstash/internal/domain/domainerrors"
	"github.com/thek4n/clipstash/internal/domain/objectvalue"
)

// Clip represents stored text clip.
type Clip struct {
	id        objectvalue.ClipID
	shortcode objectvalue.ShortCode
	content   objectvalue.Content
	title     objectvalue.Title
	posted    objectvalue.Posted
	expires   objectvalue.Expires
	password  objectvalue.Password
	hits      objectvalue.Hits
}

// NewClip assembles Clip from validated values.
func NewClip(
	id objectvalue.ClipID,
	shortcode objectvalue.ShortCode,
	content objectvalue.Content,
	title objectvalue.Title,
	posted objectvalue.Posted,
	expires objectvalue.Expires,
	password objectvalue.Password,
	hits objectvalue.Hits,
) (Clip, error) {
	if shortcode == "" {
		return Clip{}, domainerrors.WithReason(domainerrors.ErrInvalidShortCode, "empty")
	}

	if content.Empty() {
		return Clip{}, domainerrors.ErrEmptyContent
	}

	if id == objectvalue.NilClipID {
		return Clip{}, domainerrors.WithReason(domainerrors.ErrInvalidID, "nil clip id")
	}

	return Clip{
		id:        id,
		shortcode: shortcode,
		content:   content,
		title:     title,
		posted:    posted,
		expires:   expires,
		password:  password,
		hits:      hits,
	}, nil
}

// ID getter.
func (c Clip) ID() objectvalue.ClipID {
	return c.id
}

// ShortCode getter.
func (c Clip) ShortCode() objectvalue.ShortCode {
	return c.shortcode
}

// Content getter.
func (c Clip) Content() objectvalue.Content {
	return c.content
}

// Title getter.
func (c Clip) Title() objectvalue.Title {
	return c.title
}

// Posted getter.
func (c Clip) Posted() objectvalue.Posted {
	return c.posted
}

// Expires getter.
func (c Clip) Expires() objectvalue.Expires {
	return c.expires
}

// Password getter.
func (c Clip) Password() objectvalue.Password {
	return c.password
}

// Hits getter.
func (c Clip) Hits() objectvalue.Hits {
	return c.hits
}

// Protected returns true if clip has password.
func (c Clip) Protected() bool {
	return c.password.Present()
}

// Expired returns true if clip expiration date is not after now.
func (c Clip) Expired(now time.Time) bool {
	return c.expires.Expired(now)
}

// WithHits returns copy of clip with hits replaced.
func (c Clip) WithHits(h objectvalue.Hits) Clip {
	c.hits = h
	return c
}

// ClipPatch contains fields to change. Nil field stays untouched.
type ClipPatch struct {
	Content  *objectvalue.Content
	Title    *objectvalue.Title
	Expires  *objectvalue.Expires
	Password *objectvalue.Password
}

// Empty returns true if patch changes nothing.
func (p ClipPatch) Empty() bool {
	return p.Content == nil && p.Title == nil && p.Expires == nil && p.Password == nil
}

// Update returns copy of clip with patched fields.
// Identity, shortcode, posted date and hits are never changed.
func (c Clip) Update(p ClipPatch) Clip {
	if p.Content != nil && !p.Content.Empty() {
		c.content = *p.Content
	}
	if p.Title != nil {
		c.title = *p.Title
	}
	if p.Expires != nil {
		c.expires = *p.Expires
	}
	if p.Password != nil {
		c.password = *p.Password
	}
	return c
}

// ClipView is clip projection safe to show to clients.
type ClipView struct {
	Posted    time.Time  `json:"posted"`
	Expires   *time.Time `json:"expires,omitempty"`
	ClipID    string     `json:"clip_id"`
	ShortCode string     `json:"shortcode"`
	Content   string     `json:"content"`
	Title     string     `json:"title,omitempty"`
	Hits      uint64     `json:"hits"`
	Protected bool       `json:"protected"`
}

// View returns projection without password hash.
func (c Clip) View() ClipView {
	return ClipView{
		ClipID:    c.id.String(),
		ShortCode: c.shortcode.String(),
		Content:   c.content.Value(),
		Title:     c.title.Value(),
		Posted:    c.posted.Time(),
		Expires:   c.expires.Ptr(),
		Hits:      c.hits.Value(),
		Protected: c.Protected(),
	}
}
