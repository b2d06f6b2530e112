package service

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")

	// ErrCodeInvalid covers every verification-code rejection: unknown,
	// already consumed, or expired. Callers must not be able to tell
	// which one it was.
	ErrCodeInvalid = errors.New("invalid or expired code")

	ErrMisconfigured = errors.New("auth config invalid")
)
