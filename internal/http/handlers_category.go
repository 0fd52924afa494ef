package http

import (
	"encoding/json"
	"net/http"

	"cashy/internal/core"
	"cashy/internal/services"
)

type categoryRequest struct {
	Name   *string      `json:"name"`
	Budget *amountField `json:"budget"`
	Color  *string      `json:"color"`
	Icon   *string      `json:"icon"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := s.categories.List(r.Context(), userIDFrom(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]categoryView, len(list))
	for i, c := range list {
		out[i] = viewCategory(c.Category, c.Spent)
	}
	writeJSON(w, http.StatusOK, "Categories", out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	in := services.CategoryInput{}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Budget != nil {
		in.Budget = req.Budget.money
	}
	if req.Color != nil {
		in.Color = *req.Color
	}
	if req.Icon != nil {
		in.Icon = *req.Icon
	}

	created, err := s.categories.Create(r.Context(), userIDFrom(r), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Category created", viewCategory(created, core.Money{}))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	c, err := s.categories.Get(r.Context(), userIDFrom(r), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Category", viewCategory(c.Category, c.Spent))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	in := services.CategoryUpdate{Name: req.Name, Color: req.Color, Icon: req.Icon}
	if req.Budget != nil {
		in.Budget = &req.Budget.money
	}

	updated, err := s.categories.Update(r.Context(), userIDFrom(r), id, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	c, err := s.categories.Get(r.Context(), userIDFrom(r), updated.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Category updated", viewCategory(c.Category, c.Spent))
}

type categoryDeleteResponse struct {
	DeletedTransactions int64 `json:"deletedTransactions"`
}

// handleDeleteCategory cascades: the category and all its transactions go
// in one atomic operation.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	deleted, err := s.categories.Delete(r.Context(), userIDFrom(r), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Category deleted", categoryDeleteResponse{DeletedTransactions: deleted})
}
