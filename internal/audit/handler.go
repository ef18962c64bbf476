package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "patra/pkg/domain-errors"
	platformaudit "patra/pkg/platform/audit"
	"patra/pkg/platform/httputil"
	"patra/pkg/requestcontext"
)

// Handler serves the admin audit trail endpoints. The router applies
// authentication and the admin scope before requests land here.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the audit trail handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/audit/events", h.HandleRecent)
	r.Get("/admin/audit/subjects/{subject_id}", h.HandleTrail)
}

type eventResponse struct {
	Category       string    `json:"category"`
	Action         string    `json:"action"`
	Timestamp      time.Time `json:"timestamp"`
	SubjectHash    string    `json:"subject_hash,omitempty"`
	SchemeCode     string    `json:"scheme_code,omitempty"`
	RulesetVersion string    `json:"ruleset_version,omitempty"`
	Decision       string    `json:"decision,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	ClientID       string    `json:"client_id,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
	ActorID        string    `json:"actor_id,omitempty"`
}

type eventsResponse struct {
	Events []eventResponse `json:"events"`
	Count  int             `json:"count"`
}

// HandleRecent handles GET /admin/audit/events requests.
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	events, err := h.service.Recent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit event listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toEventsResponse(events))
}

// HandleTrail handles GET /admin/audit/subjects/{subject_id} requests.
func (h *Handler) HandleTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.service.Trail(ctx, chi.URLParam(r, "subject_id"))
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "audit trail lookup failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toEventsResponse(events))
}

func toEventsResponse(events []platformaudit.Event) eventsResponse {
	out := make([]eventResponse, len(events))
	for i, e := range events {
		out[i] = eventResponse{
			Category:       string(e.Category),
			Action:         e.Action,
			Timestamp:      e.Timestamp,
			SubjectHash:    e.SubjectHash,
			SchemeCode:     e.SchemeCode,
			RulesetVersion: e.RulesetVersion,
			Decision:       e.Decision,
			Reason:         e.Reason,
			ClientID:       e.ClientID,
			RequestID:      e.RequestID,
			ActorID:        e.ActorID,
		}
	}
	return eventsResponse{Events: out, Count: len(out)}
}
