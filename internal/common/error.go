// Package common defines shared constants and sentinel errors used across
// the client and server layers of aimauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Account lifecycle errors.
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrEmailNotFound      = errors.New("email does not exist")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrNoOpPasswordChange = errors.New("new password is the same as old password")
	ErrPasswordTooLong    = errors.New("password too long")

	// Infrastructure errors. The underlying cause is kept in the chain.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrSigningFailure     = errors.New("token signing failed")

	// Stored bcrypt hash could not be parsed.
	ErrCorruptHash = errors.New("corrupt password hash")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrSubjectNotFound  = errors.New("token subject not found")
	ErrMissingAuthToken = errors.New("missing bearer token")
)
