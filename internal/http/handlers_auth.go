package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"khata/internal/auth"
	"khata/internal/core"
)

const minPasswordLength = 6

type otpRequest struct {
	Email string `json:"email"`
}

// handleRequestOTP issues a verification code for a new signup and queues
// the mail carrying it.
func (s *Server) handleRequestOTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req otpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		writeError(w, http.StatusUnprocessableEntity, "invalid email")
		return
	}

	// Refuse early so nobody burns codes on an address that can't sign up.
	if _, err := s.ledger.UserByEmail(r.Context(), email); err == nil {
		writeError(w, http.StatusConflict, "user already exists")
		return
	} else if !errors.Is(err, core.ErrUserNotFound) {
		writeDomainError(w, r, err)
		return
	}

	code, err := s.otp.Issue(email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.ledger.NotifyOTP(r.Context(), email, code)

	slog.InfoContext(r.Context(), "OTP issued", "email", email)
	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent to your email."})
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	DOB      string `json:"dob"`
	Pic      string `json:"pic"`
	OTP      string `json:"otp"`
}

// handleSignup verifies the OTP, creates the user and returns a signed
// token. The credit account itself is created lazily on first transaction.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusUnprocessableEntity, "password too short")
		return
	}

	user := core.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		DOB:       strings.TrimSpace(req.DOB),
		Pic:       strings.TrimSpace(req.Pic),
		CreatedAt: time.Now().UTC(),
	}
	if err := user.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// Verify last: a successful check consumes the code, so rejected input
	// must not burn it and force a re-issue.
	if err := s.otp.Verify(email, strings.TrimSpace(req.OTP)); err != nil {
		writeDomainError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	user.PasswordHash = hash

	if err := s.ledger.CreateUser(r.Context(), user); err != nil {
		writeDomainError(w, r, err)
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "User signed up", "owner", user.ID, "email", email)
	writeJSON(w, http.StatusCreated, map[string]string{"usertoken": token})
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleSignin exchanges credentials for a token. Unknown email and wrong
// password get the identical response so the endpoint leaks nothing about
// which addresses exist.
func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req signinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.ledger.UserByEmail(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "User signed in", "owner", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"usertoken": token})
}

// handleProfile returns the authenticated user's profile with the current
// balance. A user without an account yet reads as zero.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	owner := ownerFrom(r.Context())
	user, err := s.ledger.UserByID(r.Context(), owner)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var balance core.Money
	if account, err := s.ledger.Account(r.Context(), owner); err == nil {
		balance = account.Balance
	} else if !errors.Is(err, core.ErrAccountNotFound) {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":          user,
		"balance_paise": balance.Paise,
	})
}
