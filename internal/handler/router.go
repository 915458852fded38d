package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/quillhq/quill/internal/metrics"
	"github.com/quillhq/quill/internal/repository"
	"github.com/quillhq/quill/internal/service"
)

// Router assembles the HTTP surface: middleware chain, blog routes,
// health check, and the metrics endpoint.
type Router struct {
	blog        *BlogHandler
	sessions    *service.SessionService
	metrics     *metrics.Metrics
	metricsPath string
	health      repository.DatabaseHealth
	cookieName  string
	logger      zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	BlogHandler    *BlogHandler
	SessionService *service.SessionService
	Metrics        *metrics.Metrics
	MetricsPath    string
	Health         repository.DatabaseHealth
	CookieName     string
	Logger         zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(config RouterConfig) *Router {
	return &Router{
		blog:        config.BlogHandler,
		sessions:    config.SessionService,
		metrics:     config.Metrics,
		metricsPath: config.MetricsPath,
		health:      config.Health,
		cookieName:  config.CookieName,
		logger:      config.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(rt.logger))
	r.Use(middleware.Recoverer)
	if rt.metrics != nil {
		r.Use(Instrument(rt.metrics))
	}
	r.Use(Identity(rt.sessions, rt.cookieName))

	r.Get("/health", rt.handleHealth)
	if rt.metrics != nil && rt.metricsPath != "" {
		r.Handle(rt.metricsPath, rt.metrics.Handler())
	}

	rt.blog.RegisterRoutes(r)

	return r
}

// handleHealth reports process and database health.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK

	if rt.health != nil {
		if err := rt.health.Ping(r.Context()); err != nil {
			rt.logger.Error().Err(err).Msg("database ping failed")
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
