package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"expensetracker/internal/core"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type categoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := s.transactions.CreateCategory(r.Context(), userID(r), req.Name, req.Description)
	if err != nil {
		s.respondCategoryError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.transactions.ListCategories(r.Context(), userID(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "List categories failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.transactions.GetCategory(r.Context(), mux.Vars(r)["id"], userID(r))
	if err != nil {
		s.respondCategoryError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := s.transactions.UpdateCategory(r.Context(), mux.Vars(r)["id"], userID(r), req.Name, req.Description)
	if err != nil {
		s.respondCategoryError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.DeleteCategory(r.Context(), mux.Vars(r)["id"], userID(r)); err != nil {
		s.respondCategoryError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) respondCategoryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "category not found")
	case errors.Is(err, services.ErrCategoryInUse):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidName), errors.Is(err, core.ErrMissingOwner):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Category operation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsDefault:   c.IsDefault,
		CreatedAt:   c.CreatedAt,
	}
}
