// Package http exposes the JSON API: auth, transactions, categories and
// reports.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"expensetracker/internal/auth"
	"expensetracker/internal/services"
)

type Server struct {
	srv          *http.Server
	router       *mux.Router
	auth         *services.AuthService
	transactions *services.TransactionService
	reports      *services.ReportService
	tokens       *auth.TokenManager
	limiter      *rateLimiter
}

func NewServer(addr string, authSvc *services.AuthService, txSvc *services.TransactionService, reportSvc *services.ReportService, tokens *auth.TokenManager) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		auth:         authSvc,
		transactions: txSvc,
		reports:      reportSvc,
		tokens:       tokens,
		limiter:      newRateLimiter(20, 5*time.Minute),
	}
	s.routes()

	s.srv = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}
	return s
}

func (s *Server) routes() {
	s.router.Use(traceMiddleware)
	s.router.Use(securityHeaders)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	// Auth endpoints are rate limited per client IP.
	authRouter := s.router.PathPrefix("/api/auth").Subrouter()
	authRouter.Use(s.limiter.middleware)
	authRouter.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	authRouter.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.authMiddleware)

	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.handleGetTransaction).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", s.handleUpdateTransaction).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCreateCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", s.handleGetCategory).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}", s.handleUpdateCategory).Methods(http.MethodPut)
	api.HandleFunc("/categories/{id}", s.handleDeleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/users/profile", s.handleGetProfile).Methods(http.MethodGet)
	api.HandleFunc("/users/profile", s.handleUpdateProfile).Methods(http.MethodPut)

	api.HandleFunc("/reports/summary", s.handleSummaryReport).Methods(http.MethodGet)
	api.HandleFunc("/reports/monthly", s.handleMonthlyReport).Methods(http.MethodGet)
}

// Handler exposes the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.stop()
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports readiness. Dependencies are constructed before the
// listener starts, so a served response means the stack is wired.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
