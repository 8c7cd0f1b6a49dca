package crypto

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestRandBytes(t *testing.T) {
	t.Parallel()

	a, err := RandBytes(SaltLen)
	if err != nil {
		t.Fatalf("RandBytes: %v", err)
	}
	if len(a) != SaltLen {
		t.Fatalf("len=%d, want=%d", len(a), SaltLen)
	}
	b, err := RandBytes(SaltLen)
	if err != nil {
		t.Fatalf("RandBytes(2): %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("two salts are equal")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	pw := []byte("Barkcard2024")
	salt := []byte("campus-salt-0001")

	hash := HashPassword(pw, salt)
	if !bytes.Equal(hash, HashPassword(pw, salt)) {
		t.Fatalf("hash not deterministic for same input")
	}
	if !VerifyPassword(pw, salt, hash) {
		t.Fatalf("expected true for correct password")
	}
	if VerifyPassword([]byte("barkcard2024"), salt, hash) {
		t.Fatalf("expected false for wrong password")
	}
	if VerifyPassword(pw, []byte("other-salt-00001"), hash) {
		t.Fatalf("expected false for wrong salt")
	}
	if VerifyPassword(pw, salt, nil) {
		t.Fatalf("expected false for missing stored hash")
	}
}

func TestNewVerifyToken(t *testing.T) {
	t.Parallel()

	a, err := NewVerifyToken()
	if err != nil {
		t.Fatalf("NewVerifyToken: %v", err)
	}
	raw, err := base64.RawURLEncoding.DecodeString(a)
	if err != nil {
		t.Fatalf("token is not url-safe base64: %v", err)
	}
	if len(raw) != tokenLen {
		t.Fatalf("entropy=%d, want=%d", len(raw), tokenLen)
	}
	b, _ := NewVerifyToken()
	if a == b {
		t.Fatalf("tokens repeat")
	}
}
