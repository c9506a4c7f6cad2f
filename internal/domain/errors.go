package domain

import "errors"

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a duplicate unique key.
	ErrConflict = errors.New("conflict")
	// ErrNotFound is returned for records that are absent or owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated marks a missing, malformed, or expired session.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials is shared by unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
