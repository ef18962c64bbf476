// Package audit defines the audit trail shared across patra.
//
// Every consequential action — an eligibility decision, a rule document
// change, a client credential event — becomes an Event. Events are written
// to a transactional outbox alongside the action itself and relayed to Kafka
// by the outbox worker; consumers materialize them into query tables. Kafka
// is the source of truth for the trail.
package audit

import "time"

// EventCategory classifies audit events by retention and routing needs.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance:
	// eligibility decisions and rule document changes. Long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers authentication failures, credential rotation
	// and rate limiting. Feeds monitoring and alerting.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging.
	// May be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture one action. It carries no
// raw applicant PII: the applicant is identified by SubjectHash only.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Action    string

	// SubjectHash is the SHA-256 of the applicant's identity number for
	// decision events. Empty for events without an applicant.
	SubjectHash string

	SchemeCode     string
	RulesetVersion string

	// Decision is "eligible" or "ineligible" for decision events, or the
	// outcome of an administrative action.
	Decision string
	Reason   string

	// ClientID identifies the API client behind the action, RequestID the
	// originating request, ActorID the admin for administrative actions.
	ClientID  string
	RequestID string
	ActorID   string
}

// AuditEvent names one auditable action.
type AuditEvent string

const (
	// Decision events
	EventDecisionMade AuditEvent = "decision_made"

	// Ruleset events
	EventRulesetPublished AuditEvent = "ruleset_published"
	EventRulesetActivated AuditEvent = "ruleset_activated"
	EventRulesetReloaded  AuditEvent = "ruleset_reloaded"

	// Client credential events
	EventClientCreated       AuditEvent = "client_created"
	EventClientSecretRotated AuditEvent = "client_secret_rotated"
	EventTokenIssued         AuditEvent = "token_issued"
	EventAuthFailed          AuditEvent = "auth_failed"

	// Rate limit events
	EventRateLimitExceeded AuditEvent = "rate_limit_exceeded"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventDecisionMade:     CategoryCompliance,
	EventRulesetPublished: CategoryCompliance,
	EventRulesetActivated: CategoryCompliance,

	EventAuthFailed:          CategorySecurity,
	EventClientSecretRotated: CategorySecurity,
	EventRateLimitExceeded:   CategorySecurity,

	EventRulesetReloaded: CategoryOperations,
	EventClientCreated:   CategoryOperations,
	EventTokenIssued:     CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Topic names the Kafka topic carrying a category.
func (c EventCategory) Topic() string {
	switch c {
	case CategoryCompliance:
		return TopicCompliance
	case CategorySecurity:
		return TopicSecurity
	default:
		return TopicOperations
	}
}

// Kafka topics for the audit trail.
const (
	TopicCompliance = "patra.audit.compliance"
	TopicSecurity   = "patra.audit.security"
	TopicOperations = "patra.audit.operations"
)
