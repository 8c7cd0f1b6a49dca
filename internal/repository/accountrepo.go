// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/barkcard/internal/model"
	"github.com/gofrs/uuid/v5"
)

// AccountRepository provides access to sign-in credentials.
type AccountRepository interface {
	// Create inserts a new account; a taken email yields errs.ErrAlreadyExists.
	Create(ctx context.Context, a *model.Account) error
	// GetByID loads an account by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	// GetByEmail loads an account by its lower-cased email.
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	// MarkVerified consumes a verification token and returns the verified account.
	MarkVerified(ctx context.Context, token string) (*model.Account, error)
}
