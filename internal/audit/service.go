// Package audit serves the audit trail to administrators: the event history
// of one subject and the most recent events across the system. Writing the
// trail is the platform's job; this package only reads what the consumer
// has materialized.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	dErrors "patra/pkg/domain-errors"
	platformaudit "patra/pkg/platform/audit"
	"patra/pkg/platform/privacy"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Store is the query surface over materialized audit events.
type Store interface {
	ListBySubject(ctx context.Context, subjectHash string) ([]platformaudit.Event, error)
	ListRecent(ctx context.Context, limit int) ([]platformaudit.Event, error)
}

// Service answers audit trail queries.
type Service struct {
	store  Store
	logger *slog.Logger
}

// Option configures the audit query service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates the audit query service. The store is required.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("audit store is required")
	}
	s := &Service{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var subjectHashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Trail returns the audit history of one subject, newest first. The caller
// may pass either the raw subject identifier or the hash as it appears in
// logs and audit rows; raw identifiers are hashed before the store sees
// them, so the raw value never reaches storage.
func (s *Service) Trail(ctx context.Context, subjectID string) ([]platformaudit.Event, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "subject_id is required")
	}
	hash := subjectID
	if !subjectHashPattern.MatchString(subjectID) {
		hash = privacy.HashSubjectID(subjectID)
	}
	return s.store.ListBySubject(ctx, hash)
}

// Recent returns the newest events across all subjects. Non-positive limits
// fall back to the default; the cap keeps responses bounded.
func (s *Service) Recent(ctx context.Context, limit int) ([]platformaudit.Event, error) {
	switch {
	case limit <= 0:
		limit = defaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}
	return s.store.ListRecent(ctx, limit)
}
