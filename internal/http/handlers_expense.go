package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"khata/internal/core"
)

type expenseRequest struct {
	Title  string      `json:"title"`
	Amount json.Number `json:"amount"`
}

// handleExpenses serves the category collection: POST records a debit under
// a category (created on first use), GET lists all categories.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleRecordExpense(w, r)
	case http.MethodGet:
		s.handleListCategories(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	category, remaining, err := s.ledger.RecordExpense(
		r.Context(), ownerFrom(r.Context()), strings.TrimSpace(req.Title), amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":         "Expense recorded successfully",
		"category":        category,
		"remaining_paise": remaining.Paise,
	})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.ledger.Categories(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// handleExpenseByID serves /api/expenses/{id}: GET returns one category,
// DELETE removes it without touching the account balance.
func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/expenses/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		category, err := s.ledger.Category(r.Context(), ownerFrom(r.Context()), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"category": category})
	case http.MethodDelete:
		if err := s.ledger.DeleteCategory(r.Context(), ownerFrom(r.Context()), id); err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
	default:
		methodNotAllowed(w, "GET, DELETE")
	}
}
