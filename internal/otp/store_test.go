package otp

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	s := NewStore(time.Minute)
	defer s.Stop()

	code, err := s.Issue("a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(code) != 4 {
		t.Fatalf("code %q is not 4 digits", code)
	}

	if err := s.Verify("a@example.com", code); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// Codes are single use.
	if err := s.Verify("a@example.com", code); !errors.Is(err, ErrNotIssued) {
		t.Fatalf("expected ErrNotIssued after consumption, got %v", err)
	}
}

func TestVerifyMismatch(t *testing.T) {
	s := NewStore(time.Minute)
	defer s.Stop()

	code, err := s.Issue("a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}
	if err := s.Verify("a@example.com", wrong); !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	// The code survives a failed attempt.
	if err := s.Verify("a@example.com", code); err != nil {
		t.Fatalf("verify after mismatch: %v", err)
	}
}

func TestVerifyUnknownEmail(t *testing.T) {
	s := NewStore(time.Minute)
	defer s.Stop()

	if err := s.Verify("nobody@example.com", "1234"); !errors.Is(err, ErrNotIssued) {
		t.Fatalf("expected ErrNotIssued, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	s := NewStore(10 * time.Millisecond)
	defer s.Stop()

	code, err := s.Issue("a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	time.Sleep(25 * time.Millisecond)

	if err := s.Verify("a@example.com", code); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if s.Pending() != 0 {
		t.Fatalf("expired code was not evicted")
	}
}

func TestReissueReplaces(t *testing.T) {
	s := NewStore(time.Minute)
	defer s.Stop()

	first, err := s.Issue("a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := s.Issue("a@example.com")
	if err != nil {
		t.Fatalf("reissue: %v", err)
	}
	if first != second {
		if err := s.Verify("a@example.com", first); !errors.Is(err, ErrMismatch) {
			t.Fatalf("old code should be invalid, got %v", err)
		}
	}
	if err := s.Verify("a@example.com", second); err != nil {
		t.Fatalf("verify reissued: %v", err)
	}
}
