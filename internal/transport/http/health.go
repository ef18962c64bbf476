package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"patra/pkg/platform/httputil"
)

const probeTimeout = 2 * time.Second

// Prober reports whether one dependency is reachable.
type Prober func(ctx context.Context) error

type probe struct {
	name  string
	check Prober
}

// HealthHandler serves the liveness and readiness probes. Liveness only says
// the process is up; readiness runs a probe per dependency and fails if any
// of them do.
type HealthHandler struct {
	logger *slog.Logger
	probes []probe
}

// NewHealth constructs a health handler with no probes registered.
func NewHealth(logger *slog.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

// AddProbe registers a named dependency check for readiness.
func (h *HealthHandler) AddProbe(name string, check Prober) {
	if check == nil {
		return
	}
	h.probes = append(h.probes, probe{name: name, check: check})
}

// Register mounts the probe endpoints on the router.
func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/healthz", h.HandleLive)
	r.Get("/readyz", h.HandleReady)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HandleLive handles GET /healthz requests.
func (h *HealthHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// HandleReady handles GET /readyz requests.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.probes))
	healthy := true

	for _, p := range h.probes {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := p.check(ctx)
		cancel()
		if err != nil {
			healthy = false
			checks[p.name] = err.Error()
			h.logger.WarnContext(r.Context(), "readiness probe failed",
				"probe", p.name,
				"error", err,
			)
			continue
		}
		checks[p.name] = "ok"
	}

	status := http.StatusOK
	resp := healthResponse{Status: "ok", Checks: checks}
	if !healthy {
		status = http.StatusServiceUnavailable
		resp.Status = "unavailable"
	}
	httputil.WriteJSON(w, status, resp)
}
