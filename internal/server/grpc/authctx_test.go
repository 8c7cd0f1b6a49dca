package grpcserver

import (
	"context"
	"testing"

	"github.com/and161185/barkcard/internal/model"
)

func TestWithIdentity_And_IdentityFromCtx(t *testing.T) {
	t.Parallel()

	if id, ok := IdentityFromCtx(context.Background()); ok || id != (model.Identity{}) {
		t.Fatalf("expected no identity in empty ctx")
	}

	want := model.Identity{UserID: "u1", Email: "ana@school.edu", EmailVerified: true}
	got, ok := IdentityFromCtx(WithIdentity(context.Background(), want))
	if !ok || got != want {
		t.Fatalf("mismatch: got %+v, want %+v", got, want)
	}

	type ctxKey string
	bad := context.WithValue(context.Background(), ctxKey("bc.identity"), "not-identity")
	if _, ok := IdentityFromCtx(bad); ok {
		t.Fatalf("expected miss on foreign key")
	}
}
