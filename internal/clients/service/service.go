// Package service orchestrates API client registration and token issuance.
//
// Clients are the departments and portals calling the eligibility API. Each
// holds a bcrypt-hashed secret and a scope set; the token endpoint exchanges
// valid credentials for a short-lived HS256 JWT.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"patra/internal/clients/metrics"
	"patra/internal/clients/models"
	"patra/pkg/attrs"
	dErrors "patra/pkg/domain-errors"
	"patra/pkg/platform/audit"
	"patra/pkg/platform/secrets"
	"patra/pkg/platform/sentinel"
	"patra/pkg/requestcontext"
)

// ClientStore persists API clients.
type ClientStore interface {
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	FindByClientID(ctx context.Context, clientID string) (*models.Client, error)
	List(ctx context.Context) ([]*models.Client, error)
}

// TokenIssuer mints signed access tokens.
type TokenIssuer interface {
	GenerateClientToken(clientID, scope string, expiresIn time.Duration) (string, error)
}

// AuditPublisher records auditable client events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates client management and the token flow.
type Service struct {
	store    ClientStore
	tokens   TokenIssuer
	logger   *slog.Logger
	audit    AuditPublisher
	metrics  *metrics.Metrics
	clock    func() time.Time
	tokenTTL time.Duration
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// New constructs a Service.
func New(store ClientStore, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		store:    store,
		tokens:   tokens,
		clock:    func() time.Time { return time.Now().UTC() },
		tokenTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a client and returns it together with the cleartext
// secret. The secret is only available at creation time; afterwards only the
// bcrypt hash exists.
func (s *Service) Create(ctx context.Context, name string, scopes []string) (*models.Client, string, error) {
	name = strings.TrimSpace(name)
	if len(scopes) == 0 {
		scopes = []string{models.ScopeEligibility}
	}

	secret, err := secrets.Generate()
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate client secret")
	}
	secretHash, err := secrets.Hash(secret)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash client secret")
	}

	client, err := models.NewClient(uuid.New(), uuid.NewString(), name, secretHash, scopes, s.clock())
	if err != nil {
		return nil, "", err
	}

	if err := s.store.Create(ctx, client); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, "", dErrors.New(dErrors.CodeConflict, "client_id already registered")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create client")
	}

	s.logAudit(ctx, audit.EventClientCreated,
		"client_id", client.ClientID,
		"name", client.Name)

	return client, secret, nil
}

// IssueToken runs the client-credentials flow: verify the secret, check the
// requested scope against the registered set, and mint a JWT.
func (s *Service) IssueToken(ctx context.Context, req models.TokenRequest) (*models.TokenResponse, error) {
	if req.GrantType != models.GrantClientCredentials {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unsupported grant_type %q", req.GrantType)
	}
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "client_id is required")
	}

	client, err := s.store.FindByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.authFailure(ctx, clientID, "unknown_client")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve client")
	}
	if !client.IsActive() {
		s.metrics.IncrementAuthFailure("inactive")
		s.logAudit(ctx, audit.EventAuthFailed,
			"client_id", clientID,
			"reason", "inactive")
		return nil, dErrors.New(dErrors.CodeForbidden, "client is inactive")
	}
	if err := secrets.Verify(req.ClientSecret, client.SecretHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil, s.authFailure(ctx, clientID, "bad_secret")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify client secret")
	}

	granted, err := s.resolveScope(ctx, client, req.Scope)
	if err != nil {
		return nil, err
	}

	scope := strings.Join(granted, " ")
	token, err := s.tokens.GenerateClientToken(client.ClientID, scope, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}

	s.metrics.IncrementTokensIssued()
	s.logAudit(ctx, audit.EventTokenIssued,
		"client_id", client.ClientID,
		"scope", scope)

	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		Scope:       scope,
	}, nil
}

// resolveScope narrows the requested scope to what the client holds. An
// empty request grants every registered scope.
func (s *Service) resolveScope(ctx context.Context, client *models.Client, requested string) ([]string, error) {
	fields := strings.Fields(requested)
	if len(fields) == 0 {
		return client.Scopes, nil
	}
	for _, scope := range fields {
		if !client.HasScope(scope) {
			s.metrics.IncrementAuthFailure("scope")
			s.logAudit(ctx, audit.EventAuthFailed,
				"client_id", client.ClientID,
				"reason", "scope "+scope+" not granted")
			return nil, dErrors.Newf(dErrors.CodeForbidden, "scope %q not granted", scope)
		}
	}
	return fields, nil
}

// RotateSecret replaces the client secret, returning the new cleartext once.
func (s *Service) RotateSecret(ctx context.Context, clientID string) (string, error) {
	client, err := s.findActive(ctx, clientID)
	if err != nil {
		return "", err
	}

	secret, err := secrets.Generate()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate rotated secret")
	}
	client.SecretHash, err = secrets.Hash(secret)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash rotated secret")
	}
	client.UpdatedAt = s.clock()

	if err := s.store.Update(ctx, client); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to update client")
	}

	s.logAudit(ctx, audit.EventClientSecretRotated,
		"client_id", client.ClientID)

	return secret, nil
}

// Deactivate blocks a client from obtaining new tokens. Existing tokens
// remain valid until expiry.
func (s *Service) Deactivate(ctx context.Context, clientID string) error {
	client, err := s.findActive(ctx, clientID)
	if err != nil {
		return err
	}
	if err := client.Deactivate(s.clock()); err != nil {
		return err
	}
	if err := s.store.Update(ctx, client); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update client")
	}
	return nil
}

// List returns every registered client.
func (s *Service) List(ctx context.Context) ([]*models.Client, error) {
	clients, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list clients")
	}
	return clients, nil
}

func (s *Service) findActive(ctx context.Context, clientID string) (*models.Client, error) {
	client, err := s.store.FindByClientID(ctx, strings.TrimSpace(clientID))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "client not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve client")
	}
	return client, nil
}

// authFailure records one failed credential check and returns the uniform
// unauthorized error so callers cannot probe which part failed.
func (s *Service) authFailure(ctx context.Context, clientID, reason string) error {
	s.metrics.IncrementAuthFailure(reason)
	s.logAudit(ctx, audit.EventAuthFailed,
		"client_id", clientID,
		"reason", reason)
	return dErrors.New(dErrors.CodeUnauthorized, "invalid client credentials")
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.audit == nil {
		return
	}
	ev := audit.Event{
		Category:  event.Category(),
		Timestamp: s.clock(),
		Action:    string(event),
		ClientID:  attrs.ExtractString(attributes, "client_id"),
		Reason:    attrs.ExtractString(attributes, "reason"),
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, ev); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event), "error", err)
	}
}
