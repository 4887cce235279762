package http

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const ownerKey contextKey = "owner"

// requireAuth verifies the user token and stashes the owner id in the
// request context. Clients send the token in the `usertoken` header; a
// standard Authorization bearer header is accepted as a fallback.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("usertoken")
		if token == "" {
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		owner, err := s.tokens.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ownerKey, owner)
		next(w, r.WithContext(ctx))
	}
}

// ownerFrom returns the authenticated owner id set by requireAuth.
func ownerFrom(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}
