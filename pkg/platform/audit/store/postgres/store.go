// Package postgres implements the audit store using the transactional
// outbox pattern. Events are written to the outbox table, usually inside
// the same transaction as the action they describe, and relayed to Kafka
// by the outbox worker. Consumers materialize the audit_events table that
// the list queries read.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	audit "patra/pkg/platform/audit"
	txcontext "patra/pkg/platform/tx"
)

// Store reads and writes audit rows.
type Store struct {
	db    *sql.DB
	clock func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New creates a PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:    db,
		clock: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// execer prefers a transaction carried in the context so an audit append
// commits or rolls back with the action it describes.
func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const schema = `
CREATE TABLE IF NOT EXISTS audit_outbox (
	id           UUID        PRIMARY KEY,
	topic        TEXT        NOT NULL,
	payload      TEXT        NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	published_at TIMESTAMPTZ,
	attempts     INT         NOT NULL DEFAULT 0,
	last_error   TEXT        NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS audit_outbox_unpublished
	ON audit_outbox (created_at) WHERE published_at IS NULL;

CREATE TABLE IF NOT EXISTS audit_events (
	event_id        UUID        PRIMARY KEY,
	category        TEXT        NOT NULL,
	action          TEXT        NOT NULL,
	subject_hash    TEXT        NOT NULL DEFAULT '',
	scheme_code     TEXT        NOT NULL DEFAULT '',
	ruleset_version TEXT        NOT NULL DEFAULT '',
	decision        TEXT        NOT NULL DEFAULT '',
	reason          TEXT        NOT NULL DEFAULT '',
	client_id       TEXT        NOT NULL DEFAULT '',
	request_id      TEXT        NOT NULL DEFAULT '',
	actor_id        TEXT        NOT NULL DEFAULT '',
	occurred_at     TIMESTAMPTZ NOT NULL,
	recorded_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS audit_events_subject
	ON audit_events (subject_hash, occurred_at DESC);
`

// EnsureSchema creates the audit tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// outboxPayload is the JSON structure published to Kafka. Field names match
// audit.Event so the consumer can decode without a translation layer.
type outboxPayload struct {
	ID             string `json:"ID"`
	Category       string `json:"Category"`
	Timestamp      string `json:"Timestamp"`
	Action         string `json:"Action"`
	SubjectHash    string `json:"SubjectHash,omitempty"`
	SchemeCode     string `json:"SchemeCode,omitempty"`
	RulesetVersion string `json:"RulesetVersion,omitempty"`
	Decision       string `json:"Decision,omitempty"`
	Reason         string `json:"Reason,omitempty"`
	ClientID       string `json:"ClientID,omitempty"`
	RequestID      string `json:"RequestID,omitempty"`
	ActorID        string `json:"ActorID,omitempty"`
}

// Append writes an audit event to the outbox for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}
	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = s.clock()
	}

	payload := outboxPayload{
		ID:             eventID.String(),
		Category:       string(category),
		Timestamp:      timestamp.Format(time.RFC3339Nano),
		Action:         event.Action,
		SubjectHash:    event.SubjectHash,
		SchemeCode:     event.SchemeCode,
		RulesetVersion: event.RulesetVersion,
		Decision:       event.Decision,
		Reason:         event.Reason,
		ClientID:       event.ClientID,
		RequestID:      event.RequestID,
		ActorID:        event.ActorID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO audit_outbox (id, topic, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`, eventID, category.Topic(), string(body), s.clock())
	return err
}

// FetchUnpublished returns up to limit pending rows, oldest first.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]audit.OutboxMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, topic, payload, attempts
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []audit.OutboxMessage
	for rows.Next() {
		var m audit.OutboxMessage
		var payload string
		if err := rows.Scan(&m.ID, &m.Topic, &payload, &m.Attempts); err != nil {
			return nil, err
		}
		m.Payload = []byte(payload)
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkPublished stamps rows as relayed to Kafka.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE audit_outbox
		SET published_at = $1
		WHERE id = ANY($2::uuid[])
	`, s.clock(), pq.Array(idStrings))
	return err
}

// MarkFailed records a relay failure for later retry.
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, cause string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE audit_outbox
		SET attempts = attempts + 1, last_error = $2
		WHERE id = $1
	`, id, cause)
	return err
}

// AppendEvent materializes a consumed event. Redelivered messages hit the
// primary key and are ignored, keeping the consumer idempotent.
func (s *Store) AppendEvent(ctx context.Context, eventID uuid.UUID, event audit.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			event_id, category, action, subject_hash, scheme_code,
			ruleset_version, decision, reason, client_id, request_id,
			actor_id, occurred_at, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (event_id) DO NOTHING
	`, eventID, string(event.Category), event.Action, event.SubjectHash,
		event.SchemeCode, event.RulesetVersion, event.Decision, event.Reason,
		event.ClientID, event.RequestID, event.ActorID, event.Timestamp, s.clock())
	return err
}

// ListBySubject returns the materialized events for one subject hash,
// newest first.
func (s *Store) ListBySubject(ctx context.Context, subjectHash string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, action, subject_hash, scheme_code, ruleset_version,
		       decision, reason, client_id, request_id, actor_id, occurred_at
		FROM audit_events
		WHERE subject_hash = $1
		ORDER BY occurred_at DESC
	`, subjectHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns the newest materialized events across all subjects.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, action, subject_hash, scheme_code, ruleset_version,
		       decision, reason, client_id, request_id, actor_id, occurred_at
		FROM audit_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var out []audit.Event
	for rows.Next() {
		var e audit.Event
		var category string
		if err := rows.Scan(&category, &e.Action, &e.SubjectHash, &e.SchemeCode,
			&e.RulesetVersion, &e.Decision, &e.Reason, &e.ClientID,
			&e.RequestID, &e.ActorID, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Category = audit.EventCategory(category)
		out = append(out, e)
	}
	return out, rows.Err()
}
