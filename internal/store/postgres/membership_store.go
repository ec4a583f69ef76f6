package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/clientportal/internal/models"
	"github.com/wolfeidau/clientportal/internal/store"
)

// MembershipStore implements store.MembershipStore using the portal_users table.
type MembershipStore struct {
	pool *pgxpool.Pool
	cfg  StoreConfig
}

// NewMembershipStore creates a new PostgreSQL-backed membership store.
func NewMembershipStore(pool *pgxpool.Pool, cfg *StoreConfig) *MembershipStore {
	return &MembershipStore{
		pool: pool,
		cfg:  newStoreConfig(cfg),
	}
}

// Upsert creates a membership or updates role and active flag of the existing one.
func (s *MembershipStore) Upsert(ctx context.Context, m *models.Membership) error {
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	query := `
		INSERT INTO portal_users (
			membership_id, identity_id, client_id, role, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		ON CONFLICT (identity_id, client_id) DO UPDATE SET
			role = EXCLUDED.role,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
		RETURNING membership_id, created_at
	`

	err := s.pool.QueryRow(ctx, query,
		m.MembershipID,
		m.IdentityID,
		m.ClientID,
		m.Role,
		m.IsActive,
		m.CreatedAt,
		m.UpdatedAt,
	).Scan(&m.MembershipID, &m.CreatedAt)
	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("identity_id", m.IdentityID).
		Str("client_id", m.ClientID.String()).
		Bool("active", m.IsActive).
		Msg("Upserted membership")

	return nil
}

// SetActive flips the active flag on an existing membership.
func (s *MembershipStore) SetActive(ctx context.Context, identityID string, clientID uuid.UUID, active bool) error {
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	result, err := s.pool.Exec(ctx, `
		UPDATE portal_users
		SET is_active = $3, updated_at = $4
		WHERE identity_id = $1 AND client_id = $2
	`, identityID, clientID, active, time.Now())
	if err != nil {
		return mapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrMembershipNotFound
	}

	return nil
}

// ListActiveByIdentity returns active memberships left-joined to their client.
func (s *MembershipStore) ListActiveByIdentity(ctx context.Context, identityID string) ([]*models.MembershipWithClient, error) {
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT
			m.membership_id, m.identity_id, m.client_id, m.role, m.is_active,
			m.created_at, m.updated_at,
			c.client_id, c.slug, c.business_name, c.status, c.vertical,
			c.created_at, c.updated_at
		FROM portal_users m
		LEFT JOIN clients c ON c.client_id = m.client_id
		WHERE m.identity_id = $1 AND m.is_active
		ORDER BY m.created_at
	`

	rows, err := s.pool.Query(ctx, query, identityID)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var result []*models.MembershipWithClient
	for rows.Next() {
		var (
			entry                          models.MembershipWithClient
			clientID                       *uuid.UUID
			slug, name, status, vertical   *string
			clientCreatedAt, clientUpdated *time.Time
		)
		err := rows.Scan(
			&entry.MembershipID,
			&entry.IdentityID,
			&entry.ClientID,
			&entry.Role,
			&entry.IsActive,
			&entry.CreatedAt,
			&entry.UpdatedAt,
			&clientID,
			&slug,
			&name,
			&status,
			&vertical,
			&clientCreatedAt,
			&clientUpdated,
		)
		if err != nil {
			return nil, mapPostgresError(err)
		}

		if clientID != nil {
			entry.Client = &models.Client{
				ClientID:     *clientID,
				Slug:         deref(slug),
				BusinessName: deref(name),
				Status:       deref(status),
				Vertical:     deref(vertical),
			}
			if clientCreatedAt != nil {
				entry.Client.CreatedAt = *clientCreatedAt
			}
			if clientUpdated != nil {
				entry.Client.UpdatedAt = *clientUpdated
			}
		}

		result = append(result, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(err)
	}

	return result, nil
}

// ListByClient returns all memberships of a client.
func (s *MembershipStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Membership, error) {
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT membership_id, identity_id, client_id, role, is_active, created_at, updated_at
		FROM portal_users
		WHERE client_id = $1
		ORDER BY created_at
	`, clientID)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var result []*models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(
			&m.MembershipID,
			&m.IdentityID,
			&m.ClientID,
			&m.Role,
			&m.IsActive,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, mapPostgresError(err)
		}
		result = append(result, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(err)
	}

	return result, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
