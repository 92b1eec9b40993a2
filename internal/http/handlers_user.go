package http

import (
	"errors"
	"log/slog"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

type profileRequest struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	PreferredCurrency string `json:"preferredCurrency"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.Profile(r.Context(), userID(r))
	if err != nil {
		s.respondProfileError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.auth.UpdateProfile(r.Context(), userID(r), services.ProfileParams{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		PreferredCurrency: req.PreferredCurrency,
	})
	if err != nil {
		s.respondProfileError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) respondProfileError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, core.ErrInvalidCurrency):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Profile operation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
