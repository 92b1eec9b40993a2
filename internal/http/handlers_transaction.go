package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"expensetracker/internal/core"
	"expensetracker/internal/query"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

type transactionRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	Date        string `json:"date"`
	Kind        string `json:"kind"`
	Currency    string `json:"currency"`
	CategoryID  string `json:"categoryId"`
}

type transactionResponse struct {
	ID           string    `json:"id"`
	Amount       string    `json:"amount"`
	Description  string    `json:"description"`
	Notes        string    `json:"notes,omitempty"`
	Date         string    `json:"date"`
	Kind         string    `json:"kind"`
	Currency     string    `json:"currency"`
	CategoryID   string    `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	CreatedAt    time.Time `json:"createdAt"`
}

type transactionListResponse struct {
	Items      []transactionResponse `json:"items"`
	TotalCount int                   `json:"totalCount"`
	PageNumber int                   `json:"pageNumber"`
	PageSize   int                   `json:"pageSize"`
	TotalPages int                   `json:"totalPages"`
}

func (req transactionRequest) toParams() (services.TransactionParams, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return services.TransactionParams{}, err
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return services.TransactionParams{}, core.ErrInvalidDate
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	return services.TransactionParams{
		Amount:      core.Money{Cents: cents},
		Description: req.Description,
		Notes:       req.Notes,
		Date:        date,
		Kind:        core.Kind(req.Kind),
		Currency:    currency,
		CategoryID:  req.CategoryID,
	}, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	params, err := req.toParams()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.transactions.Create(r.Context(), userID(r), params)
	if err != nil {
		s.respondTransactionError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.transactions.Get(r.Context(), mux.Vars(r)["id"], userID(r))
	if err != nil {
		s.respondTransactionError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	params, err := req.toParams()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.transactions.Update(r.Context(), mux.Vars(r)["id"], userID(r), params)
	if err != nil {
		s.respondTransactionError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Delete(r.Context(), mux.Vars(r)["id"], userID(r)); err != nil {
		s.respondTransactionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilterSpec(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := parsePageSpec(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.transactions.List(r.Context(), userID(r), filter, parseSortSpec(r), page)
	if err != nil {
		if errors.Is(err, query.ErrInvalidPage) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]transactionResponse, 0, len(result.Items))
	for _, t := range result.Items {
		items = append(items, toTransactionResponse(t))
	}

	respondJSON(w, http.StatusOK, transactionListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		PageNumber: result.PageNumber,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// respondTransactionError maps domain errors onto HTTP status codes.
func (s *Server) respondTransactionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "transaction not found")
	case errors.Is(err, core.ErrMissingCategory):
		respondError(w, http.StatusBadRequest, "category not found")
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrFutureDate),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidCurrency),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrLongDescription):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Transaction operation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:           t.ID,
		Amount:       core.FormatCents(t.Amount.Cents),
		Description:  t.Description,
		Notes:        t.Notes,
		Date:         t.Date.Format(dateLayout),
		Kind:         string(t.Kind),
		Currency:     t.Currency,
		CategoryID:   t.CategoryID,
		CategoryName: t.CategoryName,
		CreatedAt:    t.CreatedAt,
	}
}
