// Package model defines domain entities shared by the backend, the client and the session core.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects issued access/refresh tokens (refresh optional).
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry (for diagnostics)
}

// Identity is what the auth provider reports for a signed-in user.
type Identity struct {
	UserID        string
	Email         string
	EmailVerified bool
}

// Account represents a credential record stored on the server. Passwords are never stored in plaintext.
type Account struct {
	ID            uuid.UUID // PK
	Email         string    // unique, lower-cased
	PwdHash       []byte    // Argon2id(password, SaltAuth)
	SaltAuth      []byte    // per-account auth salt
	EmailVerified bool
	VerifyToken   string // empty once consumed
	CreatedAt     time.Time
}

// Identity projects the account into what clients see.
func (a Account) Identity() Identity {
	return Identity{UserID: a.ID.String(), Email: a.Email, EmailVerified: a.EmailVerified}
}
