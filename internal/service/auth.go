// Package service contains application services for accounts and stored records.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgcrypto "github.com/and161185/barkcard/internal/crypto"
	"github.com/and161185/barkcard/internal/errs"
	"github.com/and161185/barkcard/internal/forms"
	"github.com/and161185/barkcard/internal/limiter"
	"github.com/and161185/barkcard/internal/model"
	"github.com/and161185/barkcard/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthService defines account operations.
type AuthService interface {
	// SignUp creates an unverified account and its initial profile record.
	// A record that fails to save is created on first sign-in.
	SignUp(ctx context.Context, email, password string) (model.Identity, error)
	// SignIn applies rate limiting, authenticates the account and creates
	// the profile record when it is missing.
	SignIn(ctx context.Context, email, password, ip string) (model.Tokens, model.Identity, error)
	// VerifyEmail consumes a verification token.
	VerifyEmail(ctx context.Context, token string) (model.Identity, error)
	// Refresh re-reads the account and issues a fresh access token.
	Refresh(ctx context.Context, userID string) (model.Tokens, model.Identity, error)
}

// Claims is the payload of access tokens.
type Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// AuthServiceImpl implements AuthService over repositories.
type AuthServiceImpl struct {
	accounts  repository.AccountRepository
	docs      repository.DocumentRepository
	mailer    Mailer
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
	log       *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(accounts repository.AccountRepository, docs repository.DocumentRepository, mailer Mailer,
	signKey []byte, accessTTL time.Duration, lim limiter.Limiter, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	if lim == nil {
		lim = limiter.Nop{}
	}
	return &AuthServiceImpl{
		accounts:  accounts,
		docs:      docs,
		mailer:    mailer,
		signKey:   signKey,
		accessTTL: accessTTL,
		lim:       lim,
		log:       log,
		now:       time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates the account with a per-account salt, seeds tbl_User/{id} and
// sends the verification token.
func (s *AuthServiceImpl) SignUp(ctx context.Context, email, password string) (model.Identity, error) {
	email = normalizeEmail(email)
	if err := (forms.SignUp{Email: email, Password: password, Confirm: password}).Validate(); err != nil {
		return model.Identity{}, err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return model.Identity{}, err
	}
	salt, err := pkgcrypto.RandBytes(pkgcrypto.SaltLen)
	if err != nil {
		return model.Identity{}, err
	}
	token, err := pkgcrypto.NewVerifyToken()
	if err != nil {
		return model.Identity{}, err
	}
	a := &model.Account{
		ID:          uid,
		Email:       email,
		PwdHash:     pkgcrypto.HashPassword([]byte(password), salt),
		SaltAuth:    salt,
		VerifyToken: token,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return model.Identity{}, err
	}

	if err := s.docs.Set(ctx, model.CollectionUsers, uid.String(), s.initialProfile(email), false); err != nil {
		// SignIn seeds it later; failing here would strand the account.
		s.log.Warn("profile record not created", zap.String("user_id", uid.String()), zap.Error(err))
	}

	if err := s.mailer.SendVerification(ctx, email, token); err != nil {
		// Delivery failure does not undo the sign-up.
		s.log.Warn("verification mail failed", zap.String("user_id", uid.String()), zap.Error(err))
	}
	return a.Identity(), nil
}

func (s *AuthServiceImpl) initialProfile(email string) model.Fields {
	return model.Fields{
		model.FieldUserEmail:       email,
		model.FieldStatus:          string(model.ProfileStatusActive),
		model.FieldProfileComplete: false,
		model.FieldBalance:         0,
		model.FieldTotalIncome:     0,
		model.FieldTotalExpenses:   0,
		model.FieldRole:            model.RoleStudent,
		model.FieldCreatedAt:       s.now().UTC().Format(time.RFC3339Nano),
	}
}

// SignIn authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password, ip string) (model.Tokens, model.Identity, error) {
	email = normalizeEmail(email)
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Tokens{}, model.Identity{}, err
	}
	if !allowed {
		return model.Tokens{}, model.Identity{}, errs.ErrRateLimited
	}

	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.Tokens{}, model.Identity{}, err
	}
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), a.SaltAuth, a.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.Identity{}, errs.ErrRateLimited
		}
		// unknown email and wrong password look the same
		return model.Tokens{}, model.Identity{}, errs.ErrUnauthorized
	}

	if err := s.lim.Success(ctx, email, ipHash); err != nil {
		s.log.Debug("limiter reset failed", zap.Error(err))
	}
	if err := s.ensureProfile(ctx, a); err != nil {
		return model.Tokens{}, model.Identity{}, err
	}
	return s.issue(a.Identity())
}

// ensureProfile creates tbl_User/{id} with the initial fields if absent.
func (s *AuthServiceImpl) ensureProfile(ctx context.Context, a *model.Account) error {
	uid := a.ID.String()
	_, err := s.docs.Get(ctx, model.CollectionUsers, uid)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("load profile record: %w", err)
	}
	if err := s.docs.Set(ctx, model.CollectionUsers, uid, s.initialProfile(a.Email), false); err != nil {
		return fmt.Errorf("create profile record: %w", err)
	}
	s.log.Info("profile record created on sign-in", zap.String("user_id", uid))
	return nil
}

// VerifyEmail marks the account owning token as verified.
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) (model.Identity, error) {
	a, err := s.accounts.MarkVerified(ctx, strings.TrimSpace(token))
	if err != nil {
		return model.Identity{}, err
	}
	s.log.Info("email verified", zap.String("user_id", a.ID.String()))
	return a.Identity(), nil
}

// Refresh issues a token reflecting the current account state.
func (s *AuthServiceImpl) Refresh(ctx context.Context, userID string) (model.Tokens, model.Identity, error) {
	id, err := uuid.FromString(userID)
	if err != nil {
		return model.Tokens{}, model.Identity{}, errs.ErrUnauthorized
	}
	a, err := s.accounts.GetByID(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return model.Tokens{}, model.Identity{}, errs.ErrUnauthorized
	}
	if err != nil {
		return model.Tokens{}, model.Identity{}, err
	}
	return s.issue(a.Identity())
}

func (s *AuthServiceImpl) issue(id model.Identity) (model.Tokens, model.Identity, error) {
	access, exp, err := s.issueAccessToken(id)
	if err != nil {
		return model.Tokens{}, model.Identity{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, id, nil
}

// issueAccessToken creates a signed HS256 JWT for the identity.
func (s *AuthServiceImpl) issueAccessToken(id model.Identity) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := Claims{
		Email:         id.Email,
		EmailVerified: id.EmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}
