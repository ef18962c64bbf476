package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"patra/internal/eligibility/models"
	"patra/internal/ruleset"
	"patra/pkg/domain"
	dErrors "patra/pkg/domain-errors"
	"patra/pkg/platform/httputil"
	"patra/pkg/requestcontext"
)

// Service defines the interface for eligibility operations.
type Service interface {
	Check(ctx context.Context, req models.CheckRequest) (*models.CheckResult, error)
	CheckBulk(ctx context.Context, reqs []models.CheckRequest) ([]*models.CheckResult, error)
	History(ctx context.Context, subjectID string, limit int) ([]*models.DecisionRecord, error)
	Schemes() []domain.SchemeCode
	Scheme(code domain.SchemeCode) (*ruleset.RuleSet, error)
}

// Handler wires eligibility endpoints to the eligibility service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an eligibility handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts eligibility endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/eligibility/check", h.HandleCheck)
	r.Post("/eligibility/bulk", h.HandleCheckBulk)
	r.Get("/eligibility/decisions", h.HandleHistory)
	r.Get("/schemes", h.HandleSchemes)
	r.Get("/schemes/{scheme_code}", h.HandleScheme)
}

// HandleCheck handles POST /eligibility/check requests.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	// Require an authenticated API client
	clientID := requestcontext.ClientID(ctx)
	if clientID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	// Decode and validate request
	req, ok := httputil.DecodeAndPrepare[CheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	// Call service
	result, err := h.service.Check(ctx, models.CheckRequest{
		SchemeCode: req.ParsedScheme(),
		Applicant:  req.Applicant,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "eligibility check failed",
			"request_id", requestID,
			"client_id", clientID,
			"scheme", req.SchemeCode,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "eligibility check served",
		"request_id", requestID,
		"client_id", clientID,
		"scheme", req.SchemeCode,
		"decision_id", result.DecisionID,
		"eligible", result.Decision.Eligible,
		"from_cache", result.FromCache,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleCheckBulk handles POST /eligibility/bulk requests.
func (h *Handler) HandleCheckBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	clientID := requestcontext.ClientID(ctx)
	if clientID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[BulkCheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	checks := make([]models.CheckRequest, len(req.Applicants))
	for i, rec := range req.Applicants {
		checks[i] = models.CheckRequest{SchemeCode: req.ParsedScheme(), Applicant: rec}
	}

	results, err := h.service.CheckBulk(ctx, checks)
	if err != nil {
		h.logger.ErrorContext(ctx, "bulk eligibility check failed",
			"request_id", requestID,
			"client_id", clientID,
			"scheme", req.SchemeCode,
			"batch_size", len(req.Applicants),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "bulk eligibility check served",
		"request_id", requestID,
		"client_id", clientID,
		"scheme", req.SchemeCode,
		"batch_size", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResults(results))
}

// HandleSchemes handles GET /schemes requests.
func (h *Handler) HandleSchemes(w http.ResponseWriter, r *http.Request) {
	if requestcontext.ClientID(r.Context()) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	codes := h.service.Schemes()
	infos := make([]SchemeInfo, 0, len(codes))
	for _, code := range codes {
		rs, err := h.service.Scheme(code)
		if err != nil {
			// Scheme removed between listing and lookup.
			continue
		}
		infos = append(infos, SchemeInfo{
			SchemeCode: string(code),
			Name:       rs.Name,
			Version:    rs.Version,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, SchemesResponse{Schemes: infos})
}

// HandleScheme handles GET /schemes/{scheme_code} requests.
func (h *Handler) HandleScheme(w http.ResponseWriter, r *http.Request) {
	if requestcontext.ClientID(r.Context()) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	code, err := domain.ParseSchemeCode(chi.URLParam(r, "scheme_code"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rs, err := h.service.Scheme(code)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRuleSet(rs))
}

// HandleHistory handles GET /eligibility/decisions requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	clientID := requestcontext.ClientID(ctx)
	if clientID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	subjectID := strings.TrimSpace(r.URL.Query().Get("subject_id"))
	if subjectID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "subject_id query parameter is required"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	records, err := h.service.History(ctx, subjectID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "decision history lookup failed",
			"request_id", requestID,
			"client_id", clientID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRecords(records))
}
