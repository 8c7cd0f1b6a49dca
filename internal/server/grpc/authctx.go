package grpcserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/and161185/barkcard/internal/model"
	"github.com/and161185/barkcard/internal/service"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"
)

type ctxKey string

const identityKey ctxKey = "bc.identity"

// WithIdentity stores the authenticated caller in context.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromCtx fetches the authenticated caller from context.
func IdentityFromCtx(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok
}

// parseToken verifies an HS256 access token and returns the identity it carries.
func parseToken(signKey []byte, tok string) (model.Identity, error) {
	var claims service.Claims
	parsed, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return signKey, nil
	})
	if err != nil || !parsed.Valid {
		return model.Identity{}, errors.New("invalid token")
	}

	v := jwt.NewValidator(jwt.WithLeeway(30 * time.Second))
	if err := v.Validate(&claims); err != nil {
		return model.Identity{}, errors.New("token expired or not valid yet")
	}

	if _, err := uuid.FromString(claims.Subject); err != nil {
		return model.Identity{}, errors.New("bad subject")
	}
	return model.Identity{UserID: claims.Subject, Email: claims.Email, EmailVerified: claims.EmailVerified}, nil
}

func bearerTokenFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.New("no metadata")
	}
	for _, v := range md.Get("authorization") {
		v = strings.TrimSpace(v)
		if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
			t := strings.TrimSpace(v[7:])
			if t != "" {
				return t, nil
			}
		}
	}
	return "", errors.New("no bearer token")
}
