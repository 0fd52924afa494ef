package http

import (
	"encoding/json"
	"net/http"
)

type setBudgetRequest struct {
	Amount amountField `json:"amount"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	status, err := s.budgets.Status(r.Context(), userIDFrom(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Budget", viewBudget(status))
}

// handleSetBudget creates or replaces the total budget. Category budgets
// are never rescaled; lowering below the allocated sum succeeds and the
// response flags the over-allocation.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	status, err := s.budgets.SetTotal(r.Context(), userIDFrom(r), req.Amount.money)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	message := "Budget saved"
	if status.OverAllocated {
		message = "Budget saved; category budgets now exceed it"
	}
	writeJSON(w, http.StatusOK, message, viewBudget(status))
}
