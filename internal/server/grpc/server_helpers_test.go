package grpcserver

import (
	"context"
	"testing"
	"time"

	"github.com/and161185/barkcard/internal/service"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"
)

func makeJWT(t *testing.T, sub string, verified bool, key []byte, method jwt.SigningMethod, iat time.Time, ttl time.Duration) string {
	t.Helper()
	claims := service.Claims{
		Email:         "ana@school.edu",
		EmailVerified: verified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(iat),
			NotBefore: jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func ctxWithAuth(token string) context.Context {
	md := metadata.New(map[string]string{
		"authorization": "Bearer " + token,
	})
	return metadata.NewIncomingContext(context.Background(), md)
}

func Test_bearerTokenFromMD_OkAndErrors(t *testing.T) {
	t.Parallel()

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer abc.def.ghi"))
	got, err := bearerTokenFromMD(ctx)
	if err != nil || got != "abc.def.ghi" {
		t.Fatalf("ok: got=%q err=%v", got, err)
	}

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Basic foo"))
	if _, err := bearerTokenFromMD(ctx); err == nil {
		t.Fatalf("want error on non-bearer")
	}

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer   "))
	if _, err := bearerTokenFromMD(ctx); err == nil {
		t.Fatalf("want error on empty token")
	}

	if _, err := bearerTokenFromMD(context.Background()); err == nil {
		t.Fatalf("want error on no metadata")
	}
}

func Test_bearerTokenFromMD_MultipleHeaders_CaseInsensitive_Spaces(t *testing.T) {
	t.Parallel()
	md := metadata.New(nil)
	md.Append("authorization", "Basic foo")
	md.Append("authorization", "  bearer   tok.part.sig   ")
	ctx := metadata.NewIncomingContext(context.Background(), md)
	got, err := bearerTokenFromMD(ctx)
	if err != nil || got != "tok.part.sig" {
		t.Fatalf("got=%q err=%v", got, err)
	}
}

func Test_parseToken_Valid(t *testing.T) {
	t.Parallel()

	key := []byte("secret")
	sub := uuid.Must(uuid.NewV4()).String()
	j := makeJWT(t, sub, true, key, jwt.SigningMethodHS256, time.Now().UTC().Add(-time.Minute), 10*time.Minute)

	id, err := parseToken(key, j)
	if err != nil {
		t.Fatalf("parseToken: %v", err)
	}
	if id.UserID != sub || id.Email != "ana@school.edu" || !id.EmailVerified {
		t.Fatalf("identity mismatch: %+v", id)
	}
}

func Test_parseToken_Rejects(t *testing.T) {
	t.Parallel()

	key := []byte("secret")
	sub := uuid.Must(uuid.NewV4()).String()
	now := time.Now().UTC()

	cases := map[string]string{
		"expired":     makeJWT(t, sub, true, key, jwt.SigningMethodHS256, now.Add(-2*time.Hour), time.Hour),
		"bad subject": makeJWT(t, "not-a-uuid", true, key, jwt.SigningMethodHS256, now, time.Hour),
		"wrong alg":   makeJWT(t, sub, true, key, jwt.SigningMethodHS384, now, time.Hour),
		"wrong key":   makeJWT(t, sub, true, []byte("other"), jwt.SigningMethodHS256, now, time.Hour),
		"nbf future":  makeJWT(t, sub, true, key, jwt.SigningMethodHS256, now.Add(5*time.Minute), time.Hour),
		"garbage":     "this-is-not-a-jwt",
	}
	for name, tok := range cases {
		if _, err := parseToken(key, tok); err == nil {
			t.Fatalf("%s: want error", name)
		}
	}
}
