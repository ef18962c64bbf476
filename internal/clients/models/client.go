package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "patra/pkg/domain-errors"
	pstrings "patra/pkg/platform/strings"
)

// Scopes an API client may hold. Eligibility covers the determination
// endpoints; admin additionally covers ruleset and audit administration.
const (
	ScopeEligibility = "eligibility"
	ScopeAdmin       = "admin"
)

// KnownScope reports whether s is a recognised scope.
func KnownScope(s string) bool {
	return s == ScopeEligibility || s == ScopeAdmin
}

// Status is the lifecycle state of an API client.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// CanTransitionTo reports whether the status change is allowed.
// Only active ↔ inactive transitions exist.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusActive:
		return target == StatusInactive
	case StatusInactive:
		return target == StatusActive
	default:
		return false
	}
}

// Client is an API consumer (department portal, CSC integration, batch job)
// allowed to call the eligibility API.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - ClientID is non-empty (the public identifier presented in token requests)
//   - SecretHash is non-empty (every client is confidential; there is no
//     public-client flow)
//   - Scopes is non-empty and drawn from the known scope set
//   - Status transitions: active ↔ inactive only
type Client struct {
	ID         uuid.UUID `json:"id"`
	ClientID   string    `json:"client_id"`
	Name       string    `json:"name"`
	SecretHash string    `json:"-"` // Never serialize - contains bcrypt hash
	Scopes     []string  `json:"scopes"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewClient validates invariants and constructs an active client.
func NewClient(id uuid.UUID, clientID, name, secretHash string, scopes []string, now time.Time) (*Client, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "client name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeValidation, "client name must be 128 characters or less")
	}
	if clientID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "client_id cannot be empty")
	}
	if secretHash == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "client secret hash cannot be empty")
	}
	scopes = pstrings.DedupeAndTrimLower(scopes)
	if len(scopes) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "scopes cannot be empty")
	}
	for _, scope := range scopes {
		if !KnownScope(scope) {
			return nil, dErrors.Newf(dErrors.CodeValidation, "unknown scope %q", scope)
		}
	}
	return &Client{
		ID:         id,
		ClientID:   clientID,
		Name:       name,
		SecretHash: secretHash,
		Scopes:     scopes,
		Status:     StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (c *Client) IsActive() bool {
	return c.Status == StatusActive
}

// HasScope reports whether the client holds the given scope.
func (c *Client) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Deactivate transitions the client to inactive.
func (c *Client) Deactivate(now time.Time) error {
	if !c.Status.CanTransitionTo(StatusInactive) {
		return dErrors.New(dErrors.CodeValidation, "client is already inactive")
	}
	c.Status = StatusInactive
	c.UpdatedAt = now
	return nil
}

// Reactivate transitions the client back to active.
func (c *Client) Reactivate(now time.Time) error {
	if !c.Status.CanTransitionTo(StatusActive) {
		return dErrors.New(dErrors.CodeValidation, "client is already active")
	}
	c.Status = StatusActive
	c.UpdatedAt = now
	return nil
}
