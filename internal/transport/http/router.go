// Package http assembles the public router: the middleware stack, the open
// endpoints (health, metrics, token issuance) and the JWT-guarded API
// surface split by scope.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"patra/internal/clients/models"
	"patra/internal/platform/metrics"
	platformmw "patra/internal/platform/middleware"
	authmw "patra/pkg/platform/middleware/auth"
	"patra/pkg/platform/middleware/metadata"
	"patra/pkg/platform/middleware/requesttime"
)

const requestTimeout = 30 * time.Second

// Registrar mounts a related group of endpoints on a router.
type Registrar interface {
	Register(r chi.Router)
}

// Config carries everything the router mounts. Token, Eligibility and the
// Admin registrars are the module handlers; RateLimit is optional and nil
// disables it.
type Config struct {
	Logger  *slog.Logger
	Metrics *metrics.HTTP
	Auth    authmw.TokenValidator

	// RateLimit wraps the authenticated API surface.
	RateLimit func(http.Handler) http.Handler

	// Token serves POST /auth/token and stays outside the JWT guard.
	Token Registrar

	// Eligibility serves the check and scheme endpoints, scope "eligibility".
	Eligibility Registrar

	// Admin registrars serve /admin/*, scope "admin".
	Admin []Registrar

	// Health serves the liveness and readiness probes.
	Health *HealthHandler
}

// New assembles the router.
func New(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(platformmw.Recovery(cfg.Logger))
	r.Use(platformmw.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(platformmw.Logger(cfg.Logger))
	r.Use(platformmw.Timeout(requestTimeout))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	// Probes and metrics stay open for the platform to scrape.
	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Token issuance is the door in; it cannot itself require a token.
	if cfg.Token != nil {
		cfg.Token.Register(r)
	}

	// Everything else requires a valid client JWT and is rate limited
	// per client.
	r.Group(func(api chi.Router) {
		api.Use(authmw.RequireAuth(cfg.Auth, cfg.Logger))
		if cfg.RateLimit != nil {
			api.Use(cfg.RateLimit)
		}

		api.Group(func(elig chi.Router) {
			elig.Use(authmw.RequireScope(models.ScopeEligibility, cfg.Logger))
			if cfg.Eligibility != nil {
				cfg.Eligibility.Register(elig)
			}
		})

		api.Group(func(admin chi.Router) {
			admin.Use(authmw.RequireScope(models.ScopeAdmin, cfg.Logger))
			for _, registrar := range cfg.Admin {
				registrar.Register(admin)
			}
		})
	})

	return r
}
