package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAndVerify(t *testing.T) {
	tm := NewTokenManager("test-secret", "cashy", time.Hour)
	userID := uuid.New()

	token, err := tm.Generate(userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != userID {
		t.Fatalf("expected %s, got %s", userID, got)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", "cashy", time.Hour)
	other := NewTokenManager("secret-b", "cashy", time.Hour)

	token, err := tm.Generate(uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := other.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", "cashy", -time.Minute)

	token, err := tm.Generate(uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := tm.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", "cashy", time.Hour)
	for _, in := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := tm.Verify(in); err != ErrInvalidToken {
			t.Fatalf("%q expected ErrInvalidToken, got %v", in, err)
		}
	}
}
