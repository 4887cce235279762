// Package otp implements the one-time signup codes: a process-wide map
// keyed by email with a short TTL, evicted lazily on lookup and swept
// periodically in the background.
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"
)

var (
	ErrNotIssued = errors.New("OTP not sent or expired")
	ErrMismatch  = errors.New("invalid OTP")
	ErrExpired   = errors.New("OTP expired")
)

type entry struct {
	code      string
	expiresAt time.Time
}

// Store holds pending verification codes keyed by email.
type Store struct {
	mu           sync.Mutex
	codes        map[string]entry
	ttl          time.Duration
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// NewStore creates a store whose codes expire after ttl.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		codes:       make(map[string]entry),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}
	go s.startCleanup()
	return s
}

// Issue generates a fresh 4-digit code for the email, replacing any
// previous one, and returns it for delivery.
func (s *Store) Issue(email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = entry{
		code:      code,
		expiresAt: time.Now().Add(s.ttl),
	}
	return code, nil
}

// Verify checks the code for the email and consumes it on success.
// A matching but expired code is reported as ErrExpired and removed.
func (s *Store) Verify(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.codes[email]
	if !ok {
		return ErrNotIssued
	}
	if e.code != code {
		return ErrMismatch
	}
	if time.Now().After(e.expiresAt) {
		delete(s.codes, email)
		return ErrExpired
	}
	delete(s.codes, email)
	return nil
}

// Pending returns the number of codes currently held.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}

// Stop gracefully shuts down the cleanup goroutine.
func (s *Store) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.stopCleanup)
	})
}

// startCleanup runs periodic cleanup to remove expired codes
func (s *Store) startCleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *Store) cleanupExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for email, e := range s.codes {
		if now.After(e.expiresAt) {
			delete(s.codes, email)
		}
	}
}

// generateCode draws a uniform 4-digit code (1000-9999).
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}
