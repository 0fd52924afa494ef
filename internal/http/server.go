// Package http exposes the JSON API: account routes under /api/users, the
// budget and category routes, the transaction ledger under /api/expenses,
// and the analytics summary.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cashy/internal/auth"
	"cashy/internal/log"
	"cashy/internal/services"
	"cashy/internal/storage"
)

type ctxKey int

const (
	ctxKeyUserID ctxKey = iota
	ctxKeyRequestID
)

// Server wires the handlers over the services layer. It embeds http.Server
// so callers get ListenAndServe for free; Shutdown also stops the rate
// limiter's cleanup goroutine.
type Server struct {
	http.Server

	repo         *storage.SQLiteRepository
	tokens       *auth.TokenManager
	budgets      *services.BudgetService
	categories   *services.CategoryService
	transactions *services.TransactionService
	analytics    *services.AnalyticsService

	logger       *log.Logger
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// Deps carries everything NewServer needs.
type Deps struct {
	Repo         *storage.SQLiteRepository
	Tokens       *auth.TokenManager
	Budgets      *services.BudgetService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Analytics    *services.AnalyticsService
	Logger       *log.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		repo:         deps.Repo,
		tokens:       deps.Tokens,
		budgets:      deps.Budgets,
		categories:   deps.Categories,
		transactions: deps.Transactions,
		analytics:    deps.Analytics,
		logger:       deps.Logger.WithComponent(log.ComponentHTTP),
		rateLimiter:  newRateLimiter(),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("POST /api/users/register", s.wrap(s.handleRegister))
	mux.HandleFunc("POST /api/users/login", s.wrap(s.handleLogin))
	mux.HandleFunc("GET /api/users/profile", s.wrap(s.requireAuth(s.handleGetProfile)))
	mux.HandleFunc("PUT /api/users/profile", s.wrap(s.requireAuth(s.handleUpdateProfile)))
	mux.HandleFunc("POST /api/users/password", s.wrap(s.requireAuth(s.handleChangePassword)))

	mux.HandleFunc("GET /api/budgets", s.wrap(s.requireAuth(s.handleGetBudget)))
	mux.HandleFunc("POST /api/budgets", s.wrap(s.requireAuth(s.handleSetBudget)))

	mux.HandleFunc("GET /api/categories", s.wrap(s.requireAuth(s.handleListCategories)))
	mux.HandleFunc("POST /api/categories", s.wrap(s.requireAuth(s.handleCreateCategory)))
	mux.HandleFunc("GET /api/categories/{id}", s.wrap(s.requireAuth(s.handleGetCategory)))
	mux.HandleFunc("PUT /api/categories/{id}", s.wrap(s.requireAuth(s.handleUpdateCategory)))
	mux.HandleFunc("DELETE /api/categories/{id}", s.wrap(s.requireAuth(s.handleDeleteCategory)))

	mux.HandleFunc("GET /api/expenses", s.wrap(s.requireAuth(s.handleListTransactions)))
	mux.HandleFunc("POST /api/expenses", s.wrap(s.requireAuth(s.handleCreateTransaction)))
	mux.HandleFunc("GET /api/expenses/month", s.wrap(s.requireAuth(s.handleMonthTransactions)))
	mux.HandleFunc("GET /api/expenses/recent", s.wrap(s.requireAuth(s.handleRecentTransactions)))
	mux.HandleFunc("GET /api/expenses/{id}", s.wrap(s.requireAuth(s.handleGetTransaction)))
	mux.HandleFunc("PUT /api/expenses/{id}", s.wrap(s.requireAuth(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.wrap(s.requireAuth(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /api/analytics", s.wrap(s.requireAuth(s.handleAnalytics)))

	return s
}

// Shutdown gracefully shuts down the server and the rate limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// wrap adds security headers, rate limiting, and request logging.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, requestID)
		r = r.WithContext(ctx)

		s.logger.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		// Rate limit mutating requests only; reads stay cheap.
		if mutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// requireAuth verifies the token from the Authorization header and puts the
// user ID in the request context. A missing token is 401; a bad one is 403.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("Authorization"))
		raw = strings.TrimPrefix(raw, "Bearer ")
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "Authorization token required")
			return
		}

		userID, err := s.tokens.Verify(raw)
		if err != nil {
			writeError(w, http.StatusForbidden, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, userID)
		next(w, r.WithContext(ctx))
	}
}

func userIDFrom(r *http.Request) uuid.UUID {
	id, _ := r.Context().Value(ctxKeyUserID).(uuid.UUID)
	return id
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
