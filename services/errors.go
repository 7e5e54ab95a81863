package services

import "errors"

var (
	ErrInvalid       = errors.New("invalid request")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrUpstream      = errors.New("upstream failure")
	ErrMisconfigured = errors.New("service misconfigured")
)

// Error carries a client-facing message. Kind is one of the sentinel errors
// above, so callers test it with errors.Is.
type Error struct {
	Kind    error
	Message string
	Detail  any
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}
