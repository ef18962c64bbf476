// Package admin manages the lifecycle of published rule documents: upload,
// activation and registry reload. Every operation here requires the admin
// scope; the router enforces that before requests reach the handler.
package admin

//go:generate mockgen -source=admin.go -destination=mocks/mocks.go -package=mocks DocumentStore,Registry,AuditPublisher

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"patra/internal/ruleset"
	rulestore "patra/internal/ruleset/store/postgres"
	"patra/pkg/attrs"
	"patra/pkg/domain"
	dErrors "patra/pkg/domain-errors"
	"patra/pkg/platform/audit"
	"patra/pkg/requestcontext"
)

// DocumentStore persists versioned rule documents. The postgres store is the
// production implementation.
type DocumentStore interface {
	Save(ctx context.Context, rs *ruleset.RuleSet, source []byte) error
	Activate(ctx context.Context, scheme domain.SchemeCode, version string) error
	GetDocument(ctx context.Context, scheme domain.SchemeCode, version string) ([]byte, error)
	Versions(ctx context.Context, scheme domain.SchemeCode) ([]rulestore.Version, error)
	ActiveRuleSets(ctx context.Context) (map[domain.SchemeCode]*ruleset.RuleSet, error)
}

// Registry receives hot-reloaded rule documents. Serving reads continue
// uninterrupted while documents are swapped underneath.
type Registry interface {
	Put(rs *ruleset.RuleSet)
	Replace(sets map[domain.SchemeCode]*ruleset.RuleSet)
}

// AuditPublisher emits audit events for ruleset lifecycle changes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service coordinates the document store and the live registry. Publishing
// and activating are separate steps so a document can be staged, reviewed
// and only then put in front of applicants.
type Service struct {
	store    DocumentStore
	registry Registry
	logger   *slog.Logger
	audit    AuditPublisher
	clock    func() time.Time
}

// Option configures the admin service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuditPublisher sets the audit event publisher.
func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
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

// New creates the admin service. The store and registry are required.
func New(store DocumentStore, registry Registry, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("document store is required")
	}
	if registry == nil {
		return nil, errors.New("registry is required")
	}
	s := &Service{
		store:    store,
		registry: registry,
		logger:   slog.Default(),
		clock:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Publish validates and stores a new document version for scheme. The
// document is not activated; a separate Activate call flips it live.
func (s *Service) Publish(ctx context.Context, scheme domain.SchemeCode, source []byte) (*ruleset.RuleSet, error) {
	rs, err := ruleset.Parse(source)
	if err != nil {
		// The admin uploading the document is the one who can fix it, so
		// the validation detail goes back in a client-facing error.
		detail := dErrors.MessageOf(err)
		if cause := errors.Unwrap(err); cause != nil {
			detail += ": " + cause.Error()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, detail)
	}
	if rs.SchemeCode != scheme {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"document declares scheme %s but was uploaded for %s", rs.SchemeCode, scheme)
	}
	if err := s.store.Save(ctx, rs, source); err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventRulesetPublished,
		"scheme_code", string(rs.SchemeCode),
		"ruleset_version", rs.Version,
		"client_id", requestcontext.ClientID(ctx),
	)
	return rs, nil
}

// Activate flips the active version of a scheme and hot-reloads the parsed
// document into the registry, so the next eligibility check already runs
// against the new rules.
func (s *Service) Activate(ctx context.Context, scheme domain.SchemeCode, version string) (*ruleset.RuleSet, error) {
	if err := s.store.Activate(ctx, scheme, version); err != nil {
		return nil, err
	}
	source, err := s.store.GetDocument(ctx, scheme, version)
	if err != nil {
		return nil, err
	}
	rs, err := ruleset.Parse(source)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRulesetInvalid, "stored document no longer parses")
	}
	s.registry.Put(rs)
	s.logAudit(ctx, audit.EventRulesetActivated,
		"scheme_code", string(scheme),
		"ruleset_version", version,
		"client_id", requestcontext.ClientID(ctx),
	)
	return rs, nil
}

// Reload re-reads every active document from the store and swaps the registry
// wholesale. Schemes deactivated in the store stop being served.
func (s *Service) Reload(ctx context.Context) ([]domain.SchemeCode, error) {
	sets, err := s.store.ActiveRuleSets(ctx)
	if err != nil {
		return nil, err
	}
	s.registry.Replace(sets)

	schemes := make([]domain.SchemeCode, 0, len(sets))
	for code := range sets {
		schemes = append(schemes, code)
	}
	sort.Slice(schemes, func(i, j int) bool { return schemes[i] < schemes[j] })

	s.logAudit(ctx, audit.EventRulesetReloaded,
		"schemes", len(schemes),
		"client_id", requestcontext.ClientID(ctx),
	)
	return schemes, nil
}

// Versions lists the stored versions of a scheme, newest first.
func (s *Service) Versions(ctx context.Context, scheme domain.SchemeCode) ([]rulestore.Version, error) {
	return s.store.Versions(ctx, scheme)
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
		Category:       event.Category(),
		Timestamp:      s.clock(),
		Action:         string(event),
		SchemeCode:     attrs.ExtractString(attributes, "scheme_code"),
		RulesetVersion: attrs.ExtractString(attributes, "ruleset_version"),
		ClientID:       attrs.ExtractString(attributes, "client_id"),
		RequestID:      requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, ev); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event), "error", err)
	}
}
