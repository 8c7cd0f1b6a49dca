package postgres

import (
	"context"
	"errors"

	"github.com/and161185/barkcard/internal/errs"
	"github.com/and161185/barkcard/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// AccountRepo implements AccountRepository using PostgreSQL.
type AccountRepo struct{ db *DB }

// NewAccountRepo constructs an account repository.
func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

const accountColumns = `id, email, pwd_hash, salt_auth, email_verified, COALESCE(verify_token, ''), created_at`

// Create inserts a new account row.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	const q = `
INSERT INTO accounts (id, email, pwd_hash, salt_auth, email_verified, verify_token)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))`
	_, err := r.db.Pool.Exec(ctx, q, a.ID, a.Email, a.PwdHash, a.SaltAuth, a.EmailVerified, a.VerifyToken)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects an account by ID.
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	return scanAccount(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByEmail selects an account by email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE email=$1`
	return scanAccount(r.db.Pool.QueryRow(ctx, q, email))
}

// MarkVerified flags the account owning token as verified and consumes the token.
func (r *AccountRepo) MarkVerified(ctx context.Context, token string) (*model.Account, error) {
	if token == "" {
		return nil, errs.ErrInvalidToken
	}
	const q = `
UPDATE accounts SET email_verified=true, verify_token=NULL
WHERE verify_token=$1
RETURNING ` + accountColumns
	a, err := scanAccount(r.db.Pool.QueryRow(ctx, q, token))
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrInvalidToken
	}
	return a, err
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.Email, &a.PwdHash, &a.SaltAuth, &a.EmailVerified, &a.VerifyToken, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
