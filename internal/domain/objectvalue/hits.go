package objectvalue

import (
	"fmt"
	"math"

	"github.com/thek4n/clipstash/internal/domain/domainerrors"
)

// Hits clip retrieval counter.
type Hits struct {
	value uint64
}

// NewHits constructor.
func NewHits(v uint64) Hits {
	return Hits{value: v}
}

// HitsFromInt64 converts signed store value. Negative values are rejected.
func HitsFromInt64(v int64) (Hits, error) {
	if v < 0 {
		return Hits{}, domainerrors.WithReason(domainerrors.ErrInvalidHits, fmt.Sprintf("negative value %d", v))
	}
	return Hits{value: uint64(v)}, nil
}

// Increment returns Hits increased by delta.
func (h Hits) Increment(delta uint64) (Hits, error) {
	if delta > math.MaxUint64-h.value {
		return h, domainerrors.WithReason(domainerrors.ErrInvalidHits, "counter overflow")
	}
	return Hits{value: h.value + delta}, nil
}

// Int64 converts to signed store value.
func (h Hits) Int64() (int64, error) {
	if h.value > math.MaxInt64 {
		return 0, domainerrors.WithReason(domainerrors.ErrInvalidHits, "value does not fit int64")
	}
	return int64(h.value), nil
}

// Value getter.
func (h Hits) Value() uint64 {
	return h.value
}
