// Package postgres persists determinations. Saves are tx-aware: when the
// service runs inside a transaction, the decision row and the audit outbox
// row commit together.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"patra/internal/eligibility/models"
	"patra/internal/engine"
	"patra/pkg/domain"
	dErrors "patra/pkg/domain-errors"
	txcontext "patra/pkg/platform/tx"
)

// Clock supplies the current time, injected for testability.
type Clock func() time.Time

// Store persists decision records in PostgreSQL.
type Store struct {
	db    *sql.DB
	clock Clock
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a PostgreSQL-backed decision store.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:    db,
		clock: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const schema = `
CREATE TABLE IF NOT EXISTS eligibility_decisions (
	id              UUID        PRIMARY KEY,
	subject_hash    TEXT        NOT NULL,
	scheme_code     TEXT        NOT NULL,
	ruleset_version TEXT        NOT NULL,
	eligible        BOOLEAN     NOT NULL,
	decision        JSONB       NOT NULL,
	client_id       TEXT        NOT NULL DEFAULT '',
	request_id      TEXT        NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS eligibility_decisions_subject
	ON eligibility_decisions (subject_hash, created_at DESC);

CREATE INDEX IF NOT EXISTS eligibility_decisions_scheme
	ON eligibility_decisions (scheme_code, created_at DESC);
`

// EnsureSchema creates the decisions table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Save appends one determination.
func (s *Store) Save(ctx context.Context, record *models.DecisionRecord) error {
	body, err := json.Marshal(record.Decision)
	if err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.clock()
	}

	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO eligibility_decisions (
			id, subject_hash, scheme_code, ruleset_version,
			eligible, decision, client_id, request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, record.ID, record.SubjectHash, string(record.SchemeCode), record.RulesetVersion,
		record.Eligible, string(body), record.ClientID, record.RequestID, createdAt)
	if err != nil {
		return fmt.Errorf("save decision: %w", err)
	}
	return nil
}

// Get returns one determination by its decision ID.
func (s *Store) Get(ctx context.Context, id string) (*models.DecisionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_hash, scheme_code, ruleset_version,
		       eligible, decision, client_id, request_id, created_at
		FROM eligibility_decisions
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get decision: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "decision %s not found", id)
	}
	return records[0], nil
}

// ListBySubject returns determinations for one subject hash, newest first.
func (s *Store) ListBySubject(ctx context.Context, subjectHash string, limit int) ([]*models.DecisionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_hash, scheme_code, ruleset_version,
		       eligible, decision, client_id, request_id, created_at
		FROM eligibility_decisions
		WHERE subject_hash = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, subjectHash, limit)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListByScheme returns the newest determinations for one scheme.
func (s *Store) ListByScheme(ctx context.Context, schemeCode domain.SchemeCode, limit int) ([]*models.DecisionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_hash, scheme_code, ruleset_version,
		       eligible, decision, client_id, request_id, created_at
		FROM eligibility_decisions
		WHERE scheme_code = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, string(schemeCode), limit)
	if err != nil {
		return nil, fmt.Errorf("list decisions by scheme: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]*models.DecisionRecord, error) {
	var out []*models.DecisionRecord
	for rows.Next() {
		var rec models.DecisionRecord
		var scheme string
		var body []byte
		if err := rows.Scan(&rec.ID, &rec.SubjectHash, &scheme, &rec.RulesetVersion,
			&rec.Eligible, &body, &rec.ClientID, &rec.RequestID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		rec.SchemeCode = domain.SchemeCode(scheme)
		var decision engine.Decision
		if err := json.Unmarshal(body, &decision); err != nil {
			return nil, fmt.Errorf("decode decision %s: %w", rec.ID, err)
		}
		rec.Decision = &decision
		out = append(out, &rec)
	}
	return out, rows.Err()
}
