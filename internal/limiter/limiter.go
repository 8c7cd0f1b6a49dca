// Package limiter throttles sign-in attempts per (email, client address) pair.
package limiter

import (
	"context"
	"time"
)

// Limiter controls sign-in attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether a sign-in may be attempted now and, if not, how long to wait.
	Allow(ctx context.Context, email string, ipHash []byte) (bool, time.Duration, error)
	// Success clears the failure history after a successful sign-in.
	Success(ctx context.Context, email string, ipHash []byte) error
	// Failure records a rejected password and reports whether a lockout started.
	Failure(ctx context.Context, email string, ipHash []byte) (bool, time.Duration, error)
}

// Nop never blocks. Used when throttling is disabled in configuration.
type Nop struct{}

// Allow always permits.
func (Nop) Allow(context.Context, string, []byte) (bool, time.Duration, error) { return true, 0, nil }

// Success does nothing.
func (Nop) Success(context.Context, string, []byte) error { return nil }

// Failure never locks out.
func (Nop) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	return false, 0, nil
}
