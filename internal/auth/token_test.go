package auth

import (
	"testing"
	"time"
)

func TestTokensIssueAndVerify(t *testing.T) {
	tokens := NewTokens("0123456789abcdef0123456789abcdef", time.Hour)

	signed, err := tokens.Issue("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	userID, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-42" {
		t.Fatalf("got user id %q", userID)
	}
}

func TestTokensRejectsWrongSecret(t *testing.T) {
	tokens := NewTokens("0123456789abcdef0123456789abcdef", time.Hour)
	other := NewTokens("ffffffffffffffffffffffffffffffff", time.Hour)

	signed, err := tokens.Issue("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := other.Verify(signed); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestTokensRejectsExpired(t *testing.T) {
	tokens := NewTokens("0123456789abcdef0123456789abcdef", -time.Minute)

	signed, err := tokens.Issue("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := tokens.Verify(signed); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestTokensRejectsGarbage(t *testing.T) {
	tokens := NewTokens("0123456789abcdef0123456789abcdef", time.Hour)
	for _, tok := range []string{"", "not.a.token", "a.b"} {
		if _, err := tokens.Verify(tok); err == nil {
			t.Fatalf("expected rejection for %q", tok)
		}
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := VerifyPassword(hash, "s3cret"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch error")
	}
}
