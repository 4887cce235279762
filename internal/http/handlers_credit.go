package http

import (
	"encoding/json"
	"net/http"

	"khata/internal/core"
)

type creditRequest struct {
	Kind   string      `json:"kind"`
	Amount json.Number `json:"amount"`
}

// handleCredit serves the raw balance endpoint: POST applies a credit or
// debit (debits clamp at zero), GET returns the account with its history.
func (s *Server) handleCredit(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleUpdateBalance(w, r)
	case http.MethodGet:
		s.handleGetAccount(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleUpdateBalance(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	account, err := s.ledger.UpdateBalance(r.Context(), ownerFrom(r.Context()), kind, amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Credit updated",
		"account": account,
	})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.ledger.Account(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": account})
}
