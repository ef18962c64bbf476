// Package models holds the eligibility module's shared data shapes.
package models

import (
	"time"

	"patra/internal/applicant"
	"patra/internal/engine"
	"patra/pkg/domain"
)

// CheckRequest is one eligibility determination to perform.
type CheckRequest struct {
	SchemeCode domain.SchemeCode
	Applicant  *applicant.Record
}

// CheckResult pairs the decision with bookkeeping about how it was produced.
// DecisionID names the persisted record; a cache hit replays the id of the
// determination that first produced the decision.
type CheckResult struct {
	DecisionID string
	Decision   *engine.Decision
	FromCache  bool
}

// CachedDecision is the decision cache payload. Carrying the record id lets
// repeat checks quote the original determination instead of minting a new one.
type CachedDecision struct {
	ID       string           `json:"id"`
	Decision *engine.Decision `json:"decision"`
}

// DecisionRecord is one persisted determination. The full decision is kept
// as the engine produced it; the flat columns exist for querying.
type DecisionRecord struct {
	ID             string
	SubjectHash    string
	SchemeCode     domain.SchemeCode
	RulesetVersion string
	Eligible       bool
	Decision       *engine.Decision
	ClientID       string
	RequestID      string
	CreatedAt      time.Time
}
