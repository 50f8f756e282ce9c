package services

import "errors"

// Sentinel errors for the service layer. Handlers map these onto HTTP
// status codes; anything else is treated as an internal failure.
var (
	// ErrBadCredentials covers both an unknown login and a password
	// mismatch, so callers cannot enumerate logins.
	ErrBadCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned when no user row matches the id.
	ErrUserNotFound = errors.New("user not found")

	// ErrPostNotFound is returned when no post row matches the id, or
	// when the row exists but belongs to a different owner.
	ErrPostNotFound = errors.New("post not found")

	// ErrDuplicateLogin is returned when a create or update would violate
	// the unique login constraint.
	ErrDuplicateLogin = errors.New("login already taken")
)
