package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"koomy/portal/internal/api"
	"koomy/portal/internal/logging"
	"koomy/portal/internal/middleware"
)

// RegisterRoutes builds the portal router. metricsHandler is mounted at
// /metrics when non-nil.
func RegisterRoutes(deps *api.Dependencies, metricsHandler http.Handler) http.Handler {
	cfg := deps.Config

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.TenantMiddleware(deps.Resolver))
	r.Use(middleware.SessionMiddleware(deps.Services.Auth, cfg.CookieName))
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	if cfg.Debug {
		r.Use(middleware.Logging)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: !allowsAnyOrigin(cfg.CORSOrigins),
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with tenant, session and metrics middleware")

	handlers := api.NewHandlers(deps)

	r.Get("/healthCheck", handlers.HealthCheck())
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	RegisterUIRoutes(r, handlers, cfg.StaticDir, deps.Resolver.Paths)
	RegisterAPIRoutes(r, handlers, middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginBurst, "127.0.0.1"))

	return r
}

// credentials cannot be combined with a wildcard origin
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
