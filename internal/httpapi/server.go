package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/auth"
	"github.com/hamed0406/healthchecker/internal/domain"
	apimw "github.com/hamed0406/healthchecker/internal/httpapi/middleware"
	"github.com/hamed0406/healthchecker/internal/probe"
	"github.com/hamed0406/healthchecker/internal/repo"
	"github.com/hamed0406/healthchecker/internal/scheduler"
)

// ServiceName is reported by /health.
const ServiceName = "nx-health-checker"

// Collectors is the part of the polling supervisor the API drives.
type Collectors interface {
	Restart(ctx context.Context) int
	Status() scheduler.Status
	CheckService(ctx context.Context, id domain.ServiceID) (domain.CheckResult, error)
	CheckAll(ctx context.Context) ([]domain.CheckResult, error)
}

type Options struct {
	AdminKeys      []string
	AllowedOrigins []string
	LoginRPM       int
	LoginBurst     int
	// SecureCookies marks the session cookie Secure (HTTPS deployments).
	SecureCookies  bool
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a reverse proxy that sets those headers.
	TrustProxy     bool
}

type Server struct {
	Logger     *zap.Logger
	Services   repo.ServiceStore
	Store      repo.Pinger
	Auth       *auth.Manager
	Collectors Collectors
	// Metrics serves /metrics; nil disables the route.
	Metrics http.Handler
	Opts    Options

	// DNS annotates failed ad hoc checks.
	DNS func(ctx context.Context, target string) probe.DNSStatus
}

func NewServer(l *zap.Logger, services repo.ServiceStore, store repo.Pinger, am *auth.Manager, c Collectors, metrics http.Handler, opts Options) *Server {
	return &Server{
		Logger:     l,
		Services:   services,
		Store:      store,
		Auth:       am,
		Collectors: c,
		Metrics:    metrics,
		Opts:       opts,
		DNS:        probe.CheckDNS,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	if s.Opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.accessLog)
	r.Use(s.cors())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/health", s.handleHealth)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.With(apimw.RateLimit(s.Opts.LoginRPM, s.Opts.LoginBurst)).Post("/login", s.handleLogin)
	r.Get("/logout", s.handleLogout)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireSession(s.Auth))
			r.Get("/session", s.handleSession)
			r.Post("/change-password", s.handleChangePassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireSessionOrKey(s.Auth, s.Opts.AdminKeys))

			r.Get("/services", s.handleListServices)
			r.Post("/services", s.handleCreateService)
			r.Get("/services/health", s.handleCheckAll)
			r.Put("/services/{id}", s.handleUpdateService)
			r.Delete("/services/{id}", s.handleDeleteService)
			r.Get("/services/{id}/health", s.handleCheckService)

			r.Post("/metrics/restart", s.handleRestart)
			r.Get("/metrics/collectors", s.handleCollectors)
		})
	})

	return r
}

func (s *Server) cors() func(http.Handler) http.Handler {
	if len(s.Opts.AllowedOrigins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   s.Opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("http_request",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		s.Logger.Warn("health_store_unreachable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Database connection failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   ServiceName,
	})
}
