package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/clientportal/internal/models"
	"github.com/wolfeidau/clientportal/internal/store"
)

const clientColumns = `client_id, slug, business_name, status, vertical, created_at, updated_at`

// ClientStore implements store.ClientStore using PostgreSQL.
type ClientStore struct {
	pool *pgxpool.Pool
	cfg  StoreConfig
}

// NewClientStore creates a new PostgreSQL-backed client store.
// It shares the connection pool with other stores.
func NewClientStore(pool *pgxpool.Pool, cfg *StoreConfig) *ClientStore {
	return &ClientStore{
		pool: pool,
		cfg:  newStoreConfig(cfg),
	}
}

// Create creates a new client in the database.
func (s *ClientStore) Create(ctx context.Context, client *models.Client) error {
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO clients (
			client_id, slug, business_name, status, vertical, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := s.pool.Exec(ctx, query,
		client.ClientID,
		client.Slug,
		client.BusinessName,
		client.Status,
		client.Vertical,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("client_id", client.ClientID.String()).
		Str("slug", client.Slug).
		Msg("Created client")

	return nil
}

// Get retrieves a client by ID.
func (s *ClientStore) Get(ctx context.Context, clientID uuid.UUID) (*models.Client, error) {
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE client_id = $1`, clientID)
	return scanClient(row)
}

// GetBySlug retrieves a client by slug.
func (s *ClientStore) GetBySlug(ctx context.Context, slug string) (*models.Client, error) {
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE slug = $1`, slug)
	return scanClient(row)
}

// List returns all clients ordered by business name.
func (s *ClientStore) List(ctx context.Context) ([]*models.Client, error) {
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY business_name, slug`)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(err)
	}

	return clients, nil
}

// Update updates an existing client.
func (s *ClientStore) Update(ctx context.Context, client *models.Client) error {
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	client.UpdatedAt = time.Now()

	query := `
		UPDATE clients SET
			slug = $2,
			business_name = $3,
			status = $4,
			vertical = $5,
			updated_at = $6
		WHERE client_id = $1
		RETURNING created_at
	`

	err := s.pool.QueryRow(ctx, query,
		client.ClientID,
		client.Slug,
		client.BusinessName,
		client.Status,
		client.Vertical,
		client.UpdatedAt,
	).Scan(&client.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrClientNotFound
		}
		return mapPostgresError(err)
	}

	log.Debug().
		Str("client_id", client.ClientID.String()).
		Msg("Updated client")

	return nil
}

func scanClient(row pgx.Row) (*models.Client, error) {
	var client models.Client
	err := row.Scan(
		&client.ClientID,
		&client.Slug,
		&client.BusinessName,
		&client.Status,
		&client.Vertical,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrClientNotFound
		}
		return nil, mapPostgresError(err)
	}
	return &client, nil
}
