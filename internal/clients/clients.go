package clients

import (
	"log/slog"

	"patra/internal/clients/handler"
	"patra/internal/clients/service"
)

// Service exposes API client registration and token issuance.
type Service = service.Service

// Handler wires the token endpoint to the clients service.
type Handler = handler.Handler

// NewService constructs the clients service with required dependencies.
func NewService(store service.ClientStore, tokens service.TokenIssuer, opts ...service.Option) *Service {
	return service.New(store, tokens, opts...)
}

// NewHandler constructs an HTTP handler for the token endpoint.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
