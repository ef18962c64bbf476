// Package postgres persists versioned rule documents. The database is the
// durable home of every document version ever published; the in-memory
// registry only ever holds the active version per scheme.
package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"patra/internal/ruleset"
	"patra/pkg/domain"
	dErrors "patra/pkg/domain-errors"
)

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads and writes rule documents.
type Store struct {
	db    DB
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

// New creates a rule document store.
func New(db DB, opts ...Option) *Store {
	s := &Store{
		db:    db,
		clock: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens a pgx pool and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "open ruleset database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "ping ruleset database")
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS ruleset_documents (
	scheme_code  TEXT        NOT NULL,
	version      TEXT        NOT NULL,
	name         TEXT        NOT NULL DEFAULT '',
	document     TEXT        NOT NULL,
	is_active    BOOLEAN     NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL,
	activated_at TIMESTAMPTZ,
	PRIMARY KEY (scheme_code, version)
);

CREATE UNIQUE INDEX IF NOT EXISTS ruleset_documents_one_active
	ON ruleset_documents (scheme_code) WHERE is_active;
`

// EnsureSchema creates the ruleset tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "ensure ruleset schema")
	}
	return nil
}

// Version is one stored document version.
type Version struct {
	SchemeCode  domain.SchemeCode
	Version     string
	Name        string
	Active      bool
	CreatedAt   time.Time
	ActivatedAt *time.Time
}

// Save stores a new document version. The document source is kept verbatim;
// it has already been validated by the caller. Versions are immutable, so
// saving an existing scheme+version pair is a conflict.
func (s *Store) Save(ctx context.Context, rs *ruleset.RuleSet, source []byte) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ruleset_documents (scheme_code, version, name, document, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, string(rs.SchemeCode), rs.Version, rs.Name, string(source), s.clock())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return dErrors.Newf(dErrors.CodeConflict,
				"ruleset %s version %s already exists", rs.SchemeCode, rs.Version)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "save ruleset document")
	}
	return nil
}

// Activate switches the active version of a scheme. The flip is a single
// statement, so no reader ever sees zero or two active versions.
func (s *Store) Activate(ctx context.Context, scheme domain.SchemeCode, version string) error {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM ruleset_documents WHERE scheme_code = $1 AND version = $2
		)
	`, string(scheme), version).Scan(&exists)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "look up ruleset version")
	}
	if !exists {
		return dErrors.Newf(dErrors.CodeNotFound,
			"ruleset %s version %s not found", scheme, version)
	}

	_, err = s.db.Exec(ctx, `
		UPDATE ruleset_documents
		SET is_active = (version = $2),
		    activated_at = CASE WHEN version = $2 THEN $3 ELSE activated_at END
		WHERE scheme_code = $1
	`, string(scheme), version, s.clock())
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "activate ruleset version")
	}
	return nil
}

// GetDocument returns the stored source of one version.
func (s *Store) GetDocument(ctx context.Context, scheme domain.SchemeCode, version string) ([]byte, error) {
	var document string
	err := s.db.QueryRow(ctx, `
		SELECT document FROM ruleset_documents WHERE scheme_code = $1 AND version = $2
	`, string(scheme), version).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, dErrors.Newf(dErrors.CodeNotFound,
			"ruleset %s version %s not found", scheme, version)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get ruleset document")
	}
	return []byte(document), nil
}

// Versions lists every stored version of a scheme, newest first.
func (s *Store) Versions(ctx context.Context, scheme domain.SchemeCode) ([]Version, error) {
	rows, err := s.db.Query(ctx, `
		SELECT scheme_code, version, name, is_active, created_at, activated_at
		FROM ruleset_documents
		WHERE scheme_code = $1
		ORDER BY created_at DESC
	`, string(scheme))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list ruleset versions")
	}
	defer rows.Close()
	return scanVersions(rows)
}

// ActiveRuleSets loads and parses every active document, keyed by scheme.
// A stored document that no longer parses is a configuration error: better
// to refuse the whole load than to serve a scheme with missing rules.
func (s *Store) ActiveRuleSets(ctx context.Context) (map[domain.SchemeCode]*ruleset.RuleSet, error) {
	rows, err := s.db.Query(ctx, `
		SELECT scheme_code, version, document
		FROM ruleset_documents
		WHERE is_active
	`)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load active rulesets")
	}
	defer rows.Close()

	sets := make(map[domain.SchemeCode]*ruleset.RuleSet)
	for rows.Next() {
		var scheme, version, document string
		if err := rows.Scan(&scheme, &version, &document); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "scan ruleset row")
		}
		rs, err := ruleset.Parse([]byte(document))
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeRulesetInvalid, "stored ruleset "+scheme+" version "+version)
		}
		if !strings.EqualFold(string(rs.SchemeCode), scheme) {
			return nil, dErrors.Newf(dErrors.CodeRulesetInvalid,
				"stored ruleset row %s carries document for scheme %s", scheme, rs.SchemeCode)
		}
		sets[rs.SchemeCode] = rs
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "iterate ruleset rows")
	}
	return sets, nil
}

func scanVersions(rows pgx.Rows) ([]Version, error) {
	var out []Version
	for rows.Next() {
		var v Version
		var scheme string
		if err := rows.Scan(&scheme, &v.Version, &v.Name, &v.Active, &v.CreatedAt, &v.ActivatedAt); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "scan ruleset version")
		}
		v.SchemeCode = domain.SchemeCode(scheme)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "iterate ruleset versions")
	}
	return out, nil
}
