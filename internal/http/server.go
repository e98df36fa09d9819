package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"duitku/internal/core"
	applog "duitku/internal/log"
	"duitku/internal/middleware/ratelimit"
	"duitku/internal/middleware/security"
	"duitku/internal/services"
	"duitku/internal/stats"
)

// TransactionHandler is the write and lookup surface used by the
// transaction routes.
type TransactionHandler interface {
	Create(ctx context.Context, t core.Transaction) (core.Transaction, error)
	Update(ctx context.Context, t core.Transaction) (core.Transaction, error)
	Get(ctx context.Context, id string) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
	ListRecent(ctx context.Context, limit int) ([]core.Transaction, error)
}

type ReportProvider interface {
	Report(ctx context.Context, period stats.Period, anchor time.Time) (stats.Report, error)
}

type BudgetProvider interface {
	Today(ctx context.Context, now time.Time) (services.DailyBudget, error)
}

// ReadinessCheck reports whether a dependency can serve requests.
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type Deps struct {
	Transactions TransactionHandler
	Reports      ReportProvider
	Budget       BudgetProvider
	Settings     services.SettingsStore
	Ready        []ReadinessCheck
	Location     *time.Location
	Now          func() time.Time
	RateLimit    ratelimit.Config
}

type Server struct {
	http.Server
	transactions TransactionHandler
	reports      ReportProvider
	budget       BudgetProvider
	settings     services.SettingsStore
	ready        []ReadinessCheck
	loc          *time.Location
	now          func() time.Time
	limiter      *ratelimit.Limiter
	detector     *security.Detector
}

func NewServer(addr string, deps Deps, logger *applog.Logger) *Server {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.RateLimit.RequestsPerMinute <= 0 {
		deps.RateLimit = ratelimit.DefaultConfig()
	}

	s := &Server{
		transactions: deps.Transactions,
		reports:      deps.Reports,
		budget:       deps.Budget,
		settings:     deps.Settings,
		ready:        deps.Ready,
		loc:          deps.Location,
		now:          deps.Now,
		limiter:      ratelimit.NewLimiter(deps.RateLimit),
		detector:     security.NewDetector(),
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(logger.WithComponent(applog.ComponentHTTP)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(logger *applog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(applog.Middleware(logger, s.detector.ClientIP))
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.detector.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ClientIP))

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Post("/candidate", s.handleCandidate)
			r.Get("/{id}", s.handleGetTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Get("/stats", s.handleStats)
		r.Get("/budget/today", s.handleBudgetToday)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.ready))
	status := http.StatusOK
	for _, c := range s.ready {
		if err := c.Ping(ctx); err != nil {
			checks[c.Name] = err.Error()
			status = http.StatusServiceUnavailable
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				"check", c.Name, applog.FieldError, err.Error())
			continue
		}
		checks[c.Name] = "ok"
	}
	writeJSON(w, status, map[string]any{"ready": status == http.StatusOK, "checks": checks})
}

// Shutdown drains in-flight requests and stops the limiter's cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}
