// Package domainerrors contains errors for domain logic.
package domainerrors

import (
	"errors"
	"fmt"
)

// ClipError is an error produced by a clip field constructor.
type ClipError struct {
	msg string
}

func (e *ClipError) Error() string {
	return e.msg
}

func newClipError(msg string) *ClipError {
	return &ClipError{msg: msg}
}

// ErrEmptyContent .
var ErrEmptyContent = newClipError("invalid empty content")

// ErrContentTooLarge error type to point that content exceeds size limit.
var ErrContentTooLarge = newClipError("content too large")

// ErrInvalidTitle .
var ErrInvalidTitle = newClipError("invalid title")

// ErrInvalidPassword .
var ErrInvalidPassword = newClipError("invalid password")

// ErrDateParse error type to point that expiration date can not be parsed.
var ErrDateParse = newClipError("invalid date parse")

// ErrInvalidDate error type to point that expiration date violates policy.
var ErrInvalidDate = newClipError("invalid date")

// ErrInvalidID .
var ErrInvalidID = newClipError("invalid id")

// ErrInvalidHits error type to point that hits value can not be represented.
var ErrInvalidHits = newClipError("invalid hits")

// ErrInvalidShortCode .
var ErrInvalidShortCode = newClipError("invalid shortcode")

// ErrInvalidAPIKey error type to point that apikey has invalid text form.
var ErrInvalidAPIKey = newClipError("invalid apikey")

// WithReason attaches reason to field error.
func WithReason(err *ClipError, reason string) error {
	return fmt.Errorf("%w: %s", err, reason)
}

// Kind of ServiceError.
type Kind uint8

// Service error kinds.
const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindPermissionDenied
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindPermissionDenied:
		return "permission denied"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// ServiceError is the only error type returned by application services.
type ServiceError struct {
	Err    error
	Reason string
	Kind   Kind
}

func (e *ServiceError) Error() string {
	switch {
	case e.Reason != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches bare kind sentinels like ErrNotFound.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}
	return t.Err == nil && t.Reason == "" && t.Kind == e.Kind
}

// ErrValidation matches any validation failure.
var ErrValidation = &ServiceError{Kind: KindValidation}

// ErrNotFound matches missing clips and apikeys.
var ErrNotFound = &ServiceError{Kind: KindNotFound}

// ErrConflict matches uniqueness violations.
var ErrConflict = &ServiceError{Kind: KindConflict}

// ErrPermissionDenied matches password mismatch and missing apikey.
var ErrPermissionDenied = &ServiceError{Kind: KindPermissionDenied}

// ErrStore matches opaque store failures.
var ErrStore = &ServiceError{Kind: KindStore}

// Validation wraps field construction error.
func Validation(err error) error {
	return &ServiceError{Kind: KindValidation, Err: err}
}

// PermissionDenied returns permission error with reason.
func PermissionDenied(reason string) error {
	return &ServiceError{Kind: KindPermissionDenied, Reason: reason}
}

// NotFound returns not found error with reason.
func NotFound(reason string) error {
	return &ServiceError{Kind: KindNotFound, Reason: reason}
}

// KindOf returns kind of err or 0 if err is not a ServiceError.
func KindOf(err error) Kind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
