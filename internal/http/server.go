// Package http exposes the JSON API: auth, transaction CRUD, category
// limits, the analytics dashboard and report building/export.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/sessions"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/report"
)

// Store is everything the handlers need from the repository.
type Store interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (core.User, error)
	UserByEmail(ctx context.Context, email string) (core.User, error)
	UserByID(ctx context.Context, id int64) (core.User, error)

	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id int64) error
	DeleteAllTransactions(ctx context.Context, userID int64) (int64, error)
	ListTransactionsPage(ctx context.Context, userID int64, limit, offset int) ([]core.Transaction, error)
	CountTransactions(ctx context.Context, userID int64) (int64, error)

	ListCategoryLimits(ctx context.Context, userID int64) ([]core.CategoryLimit, error)
	UpsertCategoryLimit(ctx context.Context, l core.CategoryLimit) error
	UpdateCategoryLimit(ctx context.Context, l core.CategoryLimit) error
	DeleteCategoryLimit(ctx context.Context, userID, id int64) error
}

// Options carries the config the server needs beyond its address.
type Options struct {
	SessionSecret   string
	BcryptCost      int
	DashboardMonths int
}

type Server struct {
	http.Server
	store         Store
	analytics     *analytics.Builder
	reports       *report.Builder
	sessions      *sessions.CookieStore
	rateLimiter   *rateLimiter
	bcryptCost    int
	defaultMonths int
	shutdownOnce  sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, store Store, ab *analytics.Builder, rb *report.Builder, opts Options) *Server {
	mux := http.NewServeMux()

	cookieStore := sessions.NewCookieStore([]byte(opts.SessionSecret))
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	defaultMonths := opts.DashboardMonths
	if defaultMonths <= 0 {
		defaultMonths = analytics.DefaultMonths
	}

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		store:         store,
		analytics:     ab,
		reports:       rb,
		sessions:      cookieStore,
		rateLimiter:   newRateLimiter(),
		bcryptCost:    opts.BcryptCost,
		defaultMonths: defaultMonths,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/auth/register", s.withSecurityHeaders(s.handleRegister))
	mux.HandleFunc("/auth/login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("/auth/logout", s.withSecurityHeaders(s.handleLogout))

	mux.HandleFunc("/transactions", s.withSecurityHeaders(s.requireAuth(s.handleTransactions)))
	mux.HandleFunc("/transactions/delete-all", s.withSecurityHeaders(s.requireAuth(s.handleDeleteAllTransactions)))
	mux.HandleFunc("/transactions/", s.withSecurityHeaders(s.requireAuth(s.handleTransactionByID)))

	mux.HandleFunc("/limits", s.withSecurityHeaders(s.requireAuth(s.handleLimits)))
	mux.HandleFunc("/limits/", s.withSecurityHeaders(s.requireAuth(s.handleLimitByID)))

	mux.HandleFunc("/api/analytics/dashboard", s.withSecurityHeaders(s.requireAuth(s.handleDashboard)))
	mux.HandleFunc("/api/reports", s.withSecurityHeaders(s.requireAuth(s.handleReport)))
	mux.HandleFunc("/api/reports/export", s.withSecurityHeaders(s.requireAuth(s.handleReportExport)))

	s.Handler = trace.NewMiddleware(clientIP).Middleware(mux)

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
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

// withSecurityHeaders adds security headers and rate limiting on
// mutating methods.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutating := r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodDelete
		if mutating && !s.rateLimiter.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next(w, r)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
