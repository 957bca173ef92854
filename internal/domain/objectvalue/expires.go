package objectvalue

import (
	"fmt"
	"strings"
	"time"

	"github.com/thek4n/clipstash/internal/domain/domainerrors"
)

// Posted clip creation time.
type Posted time.Time

// NewPosted truncates t to seconds in UTC.
func NewPosted(t time.Time) Posted {
	return Posted(t.UTC().Truncate(time.Second))
}

// Time getter.
func (p Posted) Time() time.Time {
	return time.Time(p)
}

// Expires optional clip expiration date. Zero Expires never expires.
type Expires struct {
	at  time.Time
	set bool
}

// Never returns Expires without date.
func Never() Expires {
	return Expires{}
}

// ParseExpires parses RFC 3339 date. Empty text is Never.
func ParseExpires(text string) (Expires, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Never(), nil
	}

	t, err := time.Parse(time.RFC3339, text)
	if err != nil {
		return Expires{}, fmt.Errorf("%w: %w", domainerrors.ErrDateParse, err)
	}

	return Expires{at: t.UTC().Truncate(time.Second), set: true}, nil
}

// ExpiresAt returns Expires for t. If allowPast is false t must be after now.
func ExpiresAt(t, now time.Time, allowPast bool) (Expires, error) {
	if !allowPast && !t.After(now) {
		return Expires{}, domainerrors.WithReason(domainerrors.ErrInvalidDate, "expiration date is in the past")
	}

	return Expires{at: t.UTC().Truncate(time.Second), set: true}, nil
}

// ExpiresFromStore restores Expires without policy checks.
func ExpiresFromStore(t *time.Time) Expires {
	if t == nil {
		return Never()
	}
	return Expires{at: t.UTC(), set: true}
}

// Time returns date and true, or zero time and false if never expires.
func (e Expires) Time() (time.Time, bool) {
	return e.at, e.set
}

// Ptr returns date pointer or nil if never expires.
func (e Expires) Ptr() *time.Time {
	if !e.set {
		return nil
	}
	t := e.at
	return &t
}

// Expired returns true if date is set and before now.
// Clip is still alive at the very moment of expiration, as for the sweep.
func (e Expires) Expired(now time.Time) bool {
	return e.set && e.at.Before(now)
}

// Until returns duration until expiration, zero if never expires.
func (e Expires) Until(now time.Time) time.Duration {
	if !e.set {
		return 0
	}
	return e.at.Sub(now)
}
