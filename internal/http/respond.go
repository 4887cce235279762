package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"khata/internal/auth"
	"khata/internal/core"
	"khata/internal/otp"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps domain sentinel errors to HTTP statuses. Anything
// unrecognized is a 500 with a generic body so internals never leak.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrEmptyTitle):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrInsufficientBalance):
		writeError(w, http.StatusBadRequest, "Insufficient credit balance")
	case errors.Is(err, core.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, core.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "category not found")
	case errors.Is(err, core.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, core.ErrEmailTaken):
		writeError(w, http.StatusConflict, "user already exists")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, otp.ErrNotIssued),
		errors.Is(err, otp.ErrMismatch),
		errors.Is(err, otp.ErrExpired):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Unhandled request error",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a request body into dst, using json.Number so decimal
// amounts keep their literal form instead of going through float64.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// parseAmount converts a decimal JSON number (e.g. 123.45) to paise.
func parseAmount(n json.Number) (core.Money, error) {
	paise, err := core.ParseDecimalToPaise(n.String())
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Paise: paise}, nil
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
