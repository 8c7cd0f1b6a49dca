// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrPermissionDenied indicates the caller may not touch the requested record.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrValidation wraps form and request validation failures.
	ErrValidation = errors.New("validation")

	// ErrEmailNotVerified indicates the account has not confirmed its email yet.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrInvalidToken indicates an unknown or already consumed verification token.
	ErrInvalidToken = errors.New("invalid token")
)
