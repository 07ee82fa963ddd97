package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by the engine wraps exactly one of these,
// so callers branch with errors.Is.
var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrAuthorization = errors.New("not authorized")
	ErrState         = errors.New("invalid state")
	ErrConflict      = errors.New("conflict")
)

// Error carries a user-displayable message and its kind.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

func NotFoundError(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func AuthorizationError(format string, args ...any) error {
	return newError(ErrAuthorization, format, args...)
}

func StateError(format string, args ...any) error {
	return newError(ErrState, format, args...)
}

func ConflictError(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

// KindName returns a short label for the kind of err, or "internal" when err
// does not wrap any known kind.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAuthorization):
		return "authorization"
	case errors.Is(err, ErrState):
		return "state"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
