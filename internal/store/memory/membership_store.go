package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/clientportal/internal/models"
	"github.com/wolfeidau/clientportal/internal/store"
)

type membershipKey struct {
	identityID string
	clientID   uuid.UUID
}

var _ store.MembershipStore = (*MembershipStore)(nil)

// MembershipStore implements store.MembershipStore using in-memory storage.
// Joins are resolved against the ClientStore it was created with.
type MembershipStore struct {
	mu sync.RWMutex

	clients     *ClientStore
	memberships map[membershipKey]*models.Membership
}

// NewMembershipStore creates a new in-memory membership store joined to clients.
func NewMembershipStore(clients *ClientStore) *MembershipStore {
	return &MembershipStore{
		clients:     clients,
		memberships: make(map[membershipKey]*models.Membership),
	}
}

// Upsert creates or updates a membership.
func (s *MembershipStore) Upsert(ctx context.Context, m *models.Membership) error {
	if s.clients.lookup(m.ClientID) == nil {
		return store.ErrClientNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	key := membershipKey{identityID: m.IdentityID, clientID: m.ClientID}

	if existing, exists := s.memberships[key]; exists {
		m.MembershipID = existing.MembershipID
		m.CreatedAt = existing.CreatedAt
	} else if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	clone := *m
	s.memberships[key] = &clone

	return nil
}

// SetActive flips the active flag on a membership.
func (s *MembershipStore) SetActive(ctx context.Context, identityID string, clientID uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, exists := s.memberships[membershipKey{identityID: identityID, clientID: clientID}]
	if !exists {
		return store.ErrMembershipNotFound
	}

	m.IsActive = active
	m.UpdatedAt = time.Now()

	return nil
}

// ListActiveByIdentity returns active memberships joined to their client.
func (s *MembershipStore) ListActiveByIdentity(ctx context.Context, identityID string) ([]*models.MembershipWithClient, error) {
	s.mu.RLock()
	var active []models.Membership
	for key, m := range s.memberships {
		if key.identityID == identityID && m.IsActive {
			active = append(active, *m)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(active, func(a, b models.Membership) int {
		return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	})

	result := make([]*models.MembershipWithClient, 0, len(active))
	for _, m := range active {
		result = append(result, &models.MembershipWithClient{
			Membership: m,
			Client:     s.clients.lookup(m.ClientID),
		})
	}

	return result, nil
}

// ListByClient returns all memberships of a client ordered by creation time.
func (s *MembershipStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Membership
	for key, m := range s.memberships {
		if key.clientID == clientID {
			clone := *m
			result = append(result, &clone)
		}
	}

	slices.SortFunc(result, func(a, b *models.Membership) int {
		return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	})

	return result, nil
}
