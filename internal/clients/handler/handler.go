package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"patra/internal/clients/models"
	dErrors "patra/pkg/domain-errors"
	"patra/pkg/platform/httputil"
	"patra/pkg/requestcontext"
)

// TokenService is the part of the clients service the handler needs.
type TokenService interface {
	IssueToken(ctx context.Context, req models.TokenRequest) (*models.TokenResponse, error)
}

// Handler serves the token endpoint.
type Handler struct {
	service TokenService
	logger  *slog.Logger
}

func New(service TokenService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the token endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/token", h.HandleToken)
}

// tokenBody is the JSON variant of a token request. Form-encoded requests
// use the standard OAuth parameter names directly.
type tokenBody struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Scope        string `json:"scope"`
}

// HandleToken handles POST /auth/token requests.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, err := parseTokenRequest(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp, err := h.service.IssueToken(ctx, req)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "token issuance failed",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	// Token responses must never be cached.
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// parseTokenRequest accepts both form-encoded token requests (the OAuth
// convention) and JSON bodies.
func parseTokenRequest(r *http.Request) (models.TokenRequest, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var body tokenBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return models.TokenRequest{}, dErrors.New(dErrors.CodeBadRequest, "malformed JSON body")
		}
		return models.TokenRequest{
			GrantType:    body.GrantType,
			ClientID:     body.ClientID,
			ClientSecret: body.ClientSecret,
			Scope:        body.Scope,
		}, nil
	}

	if err := r.ParseForm(); err != nil {
		return models.TokenRequest{}, dErrors.New(dErrors.CodeBadRequest, "malformed form body")
	}
	return models.TokenRequest{
		GrantType:    r.PostFormValue("grant_type"),
		ClientID:     r.PostFormValue("client_id"),
		ClientSecret: r.PostFormValue("client_secret"),
		Scope:        r.PostFormValue("scope"),
	}, nil
}
