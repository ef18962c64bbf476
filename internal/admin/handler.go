package admin

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	rulestore "patra/internal/ruleset/store/postgres"
	"patra/pkg/domain"
	dErrors "patra/pkg/domain-errors"
	"patra/pkg/platform/httputil"
	"patra/pkg/requestcontext"
)

// maxDocumentBytes caps uploaded rule documents. Real documents are a few
// kilobytes; anything near the cap is a mistake.
const maxDocumentBytes = 1 << 20

// Handler wires the ruleset admin endpoints to the admin service.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the admin handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the admin endpoints on the router. The caller is expected
// to have wrapped r with authentication and the admin scope check.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/rulesets/reload", h.HandleReload)
	r.Put("/admin/rulesets/{scheme_code}", h.HandlePublish)
	r.Get("/admin/rulesets/{scheme_code}", h.HandleVersions)
	r.Post("/admin/rulesets/{scheme_code}/activate", h.HandleActivate)
}

type publishResponse struct {
	SchemeCode string `json:"scheme_code"`
	Version    string `json:"version"`
	Name       string `json:"name,omitempty"`
	Active     bool   `json:"active"`
}

// HandlePublish handles PUT /admin/rulesets/{scheme_code} requests. The body
// is the raw rule document, YAML or JSON.
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	scheme, err := domain.ParseSchemeCode(chi.URLParam(r, "scheme_code"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	source, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "read request body"))
		return
	}
	if len(strings.TrimSpace(string(source))) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is empty"))
		return
	}

	rs, err := h.service.Publish(ctx, scheme, source)
	if err != nil {
		h.logger.WarnContext(ctx, "ruleset publish rejected",
			"request_id", requestID,
			"scheme", scheme,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, publishResponse{
		SchemeCode: string(rs.SchemeCode),
		Version:    rs.Version,
		Name:       rs.Name,
		Active:     false,
	})
}

type activateRequest struct {
	Version string `json:"version"`
}

// Validate normalizes the activation request.
func (r *activateRequest) Validate() error {
	r.Version = strings.TrimSpace(r.Version)
	if r.Version == "" {
		return dErrors.New(dErrors.CodeValidation, "version is required")
	}
	return nil
}

// HandleActivate handles POST /admin/rulesets/{scheme_code}/activate requests.
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	scheme, err := domain.ParseSchemeCode(chi.URLParam(r, "scheme_code"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[activateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rs, err := h.service.Activate(ctx, scheme, req.Version)
	if err != nil {
		h.logger.ErrorContext(ctx, "ruleset activation failed",
			"request_id", requestID,
			"scheme", scheme,
			"version", req.Version,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "ruleset activated",
		"request_id", requestID,
		"scheme", scheme,
		"version", rs.Version,
	)

	httputil.WriteJSON(w, http.StatusOK, publishResponse{
		SchemeCode: string(rs.SchemeCode),
		Version:    rs.Version,
		Name:       rs.Name,
		Active:     true,
	})
}

type reloadResponse struct {
	Schemes []string `json:"schemes"`
	Count   int      `json:"count"`
}

// HandleReload handles POST /admin/rulesets/reload requests.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	schemes, err := h.service.Reload(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "ruleset reload failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	out := make([]string, len(schemes))
	for i, code := range schemes {
		out[i] = string(code)
	}

	h.logger.InfoContext(ctx, "rulesets reloaded",
		"request_id", requestID,
		"schemes", len(out),
	)

	httputil.WriteJSON(w, http.StatusOK, reloadResponse{Schemes: out, Count: len(out)})
}

type versionInfo struct {
	Version     string     `json:"version"`
	Name        string     `json:"name,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
}

type versionsResponse struct {
	SchemeCode string        `json:"scheme_code"`
	Versions   []versionInfo `json:"versions"`
}

// HandleVersions handles GET /admin/rulesets/{scheme_code} requests, listing
// every stored version of the scheme, newest first.
func (h *Handler) HandleVersions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	scheme, err := domain.ParseSchemeCode(chi.URLParam(r, "scheme_code"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	versions, err := h.service.Versions(ctx, scheme)
	if err != nil {
		h.logger.ErrorContext(ctx, "ruleset version listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"scheme", scheme,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, versionsResponse{
		SchemeCode: string(scheme),
		Versions:   toVersionInfos(versions),
	})
}

func toVersionInfos(versions []rulestore.Version) []versionInfo {
	out := make([]versionInfo, len(versions))
	for i, v := range versions {
		out[i] = versionInfo{
			Version:     v.Version,
			Name:        v.Name,
			Active:      v.Active,
			CreatedAt:   v.CreatedAt,
			ActivatedAt: v.ActivatedAt,
		}
	}
	return out
}
