package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"patra/internal/clients/models"
	"patra/pkg/platform/sentinel"
)

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres persists API clients. Lookup failures surface as sentinel errors;
// the service layer translates them into domain errors.
type Postgres struct {
	db DB
}

func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS api_clients (
	id          UUID        PRIMARY KEY,
	client_id   TEXT        NOT NULL UNIQUE,
	name        TEXT        NOT NULL,
	secret_hash TEXT        NOT NULL,
	scopes      TEXT[]      NOT NULL,
	status      TEXT        NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the api_clients table if it does not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure api_clients schema: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, client *models.Client) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO api_clients (id, client_id, name, secret_hash, scopes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, client.ID, client.ClientID, client.Name, client.SecretHash,
		client.Scopes, string(client.Status), client.CreatedAt, client.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert api client: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, client *models.Client) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE api_clients
		SET name = $2, secret_hash = $3, scopes = $4, status = $5, updated_at = $6
		WHERE id = $1
	`, client.ID, client.Name, client.SecretHash, client.Scopes,
		string(client.Status), client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update api client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *Postgres) FindByClientID(ctx context.Context, clientID string) (*models.Client, error) {
	return s.findOne(ctx, `WHERE client_id = $1`, clientID)
}

func (s *Postgres) findOne(ctx context.Context, where string, arg any) (*models.Client, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, client_id, name, secret_hash, scopes, status, created_at, updated_at
		FROM api_clients `+where, arg)

	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query api client: %w", err)
	}
	return client, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Client, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, client_id, name, secret_hash, scopes, status, created_at, updated_at
		FROM api_clients
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list api clients: %w", err)
	}
	defer rows.Close()

	var out []*models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan api client: %w", err)
		}
		out = append(out, client)
	}
	return out, rows.Err()
}

func scanClient(row pgx.Row) (*models.Client, error) {
	var (
		c         models.Client
		status    string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&c.ID, &c.ClientID, &c.Name, &c.SecretHash,
		&c.Scopes, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.Status = models.Status(status)
	c.CreatedAt = createdAt.UTC()
	c.UpdatedAt = updatedAt.UTC()
	return &c, nil
}
