package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"cashy/internal/core"
	"cashy/internal/services"
)

type transactionRequest struct {
	Name       *string      `json:"name"`
	Amount     *amountField `json:"amount"`
	Date       *dateField   `json:"date"`
	Type       *string      `json:"type"`
	CategoryID *uuid.UUID   `json:"categoryId"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.List(r.Context(), userIDFrom(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Transactions", viewTransactions(txs))
}

// handleMonthTransactions lists the current calendar month only.
func (s *Server) handleMonthTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.ListThisMonth(r.Context(), userIDFrom(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "This month", viewTransactions(txs))
}

// handleRecentTransactions lists the newest entries of the current month,
// capped for the home screen.
func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.ListRecent(r.Context(), userIDFrom(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Recent", viewTransactions(txs))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	in := services.TransactionInput{}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Amount != nil {
		in.Amount = req.Amount.money
	}
	if req.Date != nil && req.Date.set {
		in.Date = req.Date.when
	}
	if req.Type != nil {
		in.Type = core.TransactionType(*req.Type)
	}
	if req.CategoryID != nil {
		in.CategoryID = *req.CategoryID
	}

	created, err := s.transactions.Create(r.Context(), userIDFrom(r), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Transaction created", viewTransaction(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	t, err := s.transactions.Get(r.Context(), userIDFrom(r), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Transaction", viewTransaction(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	in := services.TransactionUpdate{Name: req.Name, CategoryID: req.CategoryID}
	if req.Amount != nil {
		in.Amount = &req.Amount.money
	}
	if req.Date != nil && req.Date.set {
		in.Date = &req.Date.when
	}
	if req.Type != nil {
		t := core.TransactionType(*req.Type)
		in.Type = &t
	}

	updated, err := s.transactions.Update(r.Context(), userIDFrom(r), id, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Transaction updated", viewTransaction(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	if err := s.transactions.Delete(r.Context(), userIDFrom(r), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Transaction deleted", nil)
}
