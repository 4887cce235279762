// Package http exposes the JSON API for accounts, expenses and auth.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"khata/internal/auth"
	"khata/internal/ledger"
	"khata/internal/middleware/ratelimit"
	"khata/internal/middleware/security"
	"khata/internal/middleware/trace"
	"khata/internal/otp"
)

// Options configures the API server.
type Options struct {
	Addr              string
	RequestsPerMinute int
	BcryptCost        int
}

type Server struct {
	http.Server

	ledger     *ledger.Service
	tokens     *auth.Tokens
	otp        *otp.Store
	bcryptCost int

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	resolver *security.ClientIPResolver

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, svc *ledger.Service, tokens *auth.Tokens, otpStore *otp.Store) *Server {
	mux := http.NewServeMux()

	resolver := security.NewClientIPResolver()
	s := &Server{
		Server: http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		ledger:     svc,
		tokens:     tokens,
		otp:        otpStore,
		bcryptCost: opts.BcryptCost,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RequestsPerMinute,
		}),
		tracer:    trace.NewMiddleware(resolver.Resolve),
		resolver:  resolver,
		startedAt: time.Now(),
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/api/auth/otp", s.handleRequestOTP)
	mux.HandleFunc("/api/auth/signup", s.handleSignup)
	mux.HandleFunc("/api/auth/signin", s.handleSignin)
	mux.HandleFunc("/api/auth/user", s.requireAuth(s.handleProfile))

	mux.HandleFunc("/api/credit", s.requireAuth(s.handleCredit))
	mux.HandleFunc("/api/expenses", s.requireAuth(s.handleExpenses))
	mux.HandleFunc("/api/expenses/", s.requireAuth(s.handleExpenseByID))

	// Only mutating requests are throttled; reads stay unthrottled so
	// dashboards can poll freely.
	rateLimited := s.limiter.Middleware(resolver.Resolve, handleRateLimited,
		http.MethodPost, http.MethodDelete)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server.Handler = headers.Middleware(s.tracer.Middleware(rateLimited(mux)))

	return s
}

func handleRateLimited(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleMetrics reports plain-text counters for scraping.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	m := s.tracer.GetMetrics()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "khata_requests_total %d\n", m.TotalRequests)
	fmt.Fprintf(w, "khata_last_response_micros %d\n", m.LastResponseMicros)
	fmt.Fprintf(w, "khata_ratelimit_active_clients %d\n", s.limiter.ActiveClients())
	fmt.Fprintf(w, "khata_otp_pending %d\n", s.otp.Pending())
	fmt.Fprintf(w, "khata_uptime_seconds %d\n", int64(time.Since(s.startedAt).Seconds()))
}

// Shutdown stops the server and its background goroutines once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.otp.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
