package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/clientportal/internal/models"
)

// MembershipStore defines the interface for portal membership storage operations.
// A membership is unique per (identity_id, client_id).
type MembershipStore interface {
	// Upsert grants access, creating the membership or updating role and active flag
	// of the existing one. MembershipID and CreatedAt of an existing row are preserved
	// and written back into m.
	// Returns ErrClientNotFound if the client doesn't exist.
	Upsert(ctx context.Context, m *models.Membership) error

	// SetActive flips the active flag on an existing membership.
	// Returns ErrMembershipNotFound if there is no membership for the pair.
	SetActive(ctx context.Context, identityID string, clientID uuid.UUID, active bool) error

	// ListActiveByIdentity returns the active memberships of an identity joined to their
	// client. Client is nil on entries whose client row is missing.
	ListActiveByIdentity(ctx context.Context, identityID string) ([]*models.MembershipWithClient, error)

	// ListByClient returns all memberships, active or not, for a client.
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Membership, error)
}
