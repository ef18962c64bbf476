// Package ports defines shared interfaces for the eligibility module.
// Interfaces are placed here when consumed by multiple services to avoid duplication.
package ports

//go:generate mockgen -source=ports.go -destination=../mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"patra/internal/eligibility/models"
	"patra/internal/ruleset"
	"patra/pkg/domain"
	"patra/pkg/platform/audit"
)

// RulesetSource resolves the active rules for a scheme. The registry
// implementation serves reads lock-free while reloads swap underneath.
type RulesetSource interface {
	Get(code domain.SchemeCode) (*ruleset.RuleSet, error)
	Schemes() []domain.SchemeCode
}

// DecisionStore persists determinations for the audit trail.
type DecisionStore interface {
	// Save appends one determination.
	Save(ctx context.Context, record *models.DecisionRecord) error

	// ListBySubject returns determinations for one subject hash, newest first.
	ListBySubject(ctx context.Context, subjectHash string, limit int) ([]*models.DecisionRecord, error)
}

// DecisionCache short-circuits repeat checks of an identical applicant
// record against an identical ruleset version. A miss returns (nil, nil).
type DecisionCache interface {
	Get(ctx context.Context, key string) (*models.CachedDecision, error)
	Set(ctx context.Context, key string, cached *models.CachedDecision, ttl time.Duration) error
}

// Transactor runs a function inside one storage transaction.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuditPublisher emits audit events for determinations and rule changes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
