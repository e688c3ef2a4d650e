// Package common defines shared constants and sentinel errors used across
// client and server layers of tasksync. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Realtime publish failures. Never returned to API callers.
	ErrBroadcast = errors.New("broadcast failed")
)

// NewValidationError returns an error that matches ErrorValidation and
// carries msg as its user-facing text.
func NewValidationError(msg string) error {
	return &kindError{kind: ErrorValidation, msg: msg}
}

// NewNotFoundError returns an error that matches ErrorNotFound.
func NewNotFoundError(msg string) error {
	return &kindError{kind: ErrorNotFound, msg: msg}
}

// NewForbiddenError returns an error that matches ErrorForbidden.
func NewForbiddenError(msg string) error {
	return &kindError{kind: ErrorForbidden, msg: msg}
}

// NewUnauthorizedError returns an error that matches ErrorUnauthorized.
func NewUnauthorizedError(msg string) error {
	return &kindError{kind: ErrorUnauthorized, msg: msg}
}

// kindError pairs a sentinel with a message meant for the end user, so the
// HTTP layer can render msg verbatim while still branching on the sentinel.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Message returns the user-facing part of err: the message of the outermost
// error created by one of the New*Error helpers, or err.Error() otherwise.
func Message(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	return err.Error()
}
