package domainerrors

import (
	"errors"
)

// Store signals. Repository implementations translate driver errors into these
// and wrap everything else.

// ErrNoRows error type to point that store has no matching row.
var ErrNoRows = errors.New("no matching row")

// ErrUniqueViolation error type to point that store unique constraint is violated.
var ErrUniqueViolation = errors.New("unique constraint violated")

// FromStore translates repository error into ServiceError.
// ErrNoRows is always NotFound, ErrUniqueViolation is Conflict,
// any other error is wrapped as Store.
func FromStore(err error) error {
	if err == nil {
		return nil
	}

	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}

	switch {
	case errors.Is(err, ErrNoRows):
		return &ServiceError{Kind: KindNotFound, Err: err}
	case errors.Is(err, ErrUniqueViolation):
		return &ServiceError{Kind: KindConflict, Err: err}
	default:
		return &ServiceError{Kind: KindStore, Err: err}
	}
}
