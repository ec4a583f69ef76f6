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

var _ store.ClientStore = (*ClientStore)(nil)

// ClientStore implements store.ClientStore using in-memory storage.
// This implementation is for testing and local development - data is lost on restart.
type ClientStore struct {
	mu sync.RWMutex

	clients map[uuid.UUID]*models.Client // client_id -> Client
	bySlug  map[string]uuid.UUID         // slug -> client_id
}

// NewClientStore creates a new in-memory client store.
func NewClientStore() *ClientStore {
	return &ClientStore{
		clients: make(map[uuid.UUID]*models.Client),
		bySlug:  make(map[string]uuid.UUID),
	}
}

// Create creates a new client in memory.
func (s *ClientStore) Create(ctx context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[client.ClientID]; exists {
		return store.ErrClientAlreadyExists
	}
	if _, taken := s.bySlug[client.Slug]; taken {
		return store.ErrClientSlugTaken
	}

	clone := *client
	s.clients[client.ClientID] = &clone
	s.bySlug[client.Slug] = client.ClientID

	return nil
}

// Get retrieves a client by ID.
func (s *ClientStore) Get(ctx context.Context, clientID uuid.UUID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, exists := s.clients[clientID]
	if !exists {
		return nil, store.ErrClientNotFound
	}

	clone := *client
	return &clone, nil
}

// GetBySlug retrieves a client by slug.
func (s *ClientStore) GetBySlug(ctx context.Context, slug string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clientID, exists := s.bySlug[slug]
	if !exists {
		return nil, store.ErrClientNotFound
	}

	clone := *s.clients[clientID]
	return &clone, nil
}

// List returns all clients ordered by business name.
func (s *ClientStore) List(ctx context.Context) ([]*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Client, 0, len(s.clients))
	for _, client := range s.clients {
		clone := *client
		result = append(result, &clone)
	}

	slices.SortFunc(result, func(a, b *models.Client) int {
		return cmp.Or(
			cmp.Compare(a.BusinessName, b.BusinessName),
			cmp.Compare(a.Slug, b.Slug),
		)
	})

	return result, nil
}

// Update updates an existing client.
func (s *ClientStore) Update(ctx context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.clients[client.ClientID]
	if !exists {
		return store.ErrClientNotFound
	}

	if owner, taken := s.bySlug[client.Slug]; taken && owner != client.ClientID {
		return store.ErrClientSlugTaken
	}

	client.UpdatedAt = time.Now()
	client.CreatedAt = existing.CreatedAt

	delete(s.bySlug, existing.Slug)
	clone := *client
	s.clients[client.ClientID] = &clone
	s.bySlug[client.Slug] = client.ClientID

	return nil
}

// Delete removes a client. Memberships and documents referencing it are left in place,
// which mirrors a row going missing underneath a join.
func (s *ClientStore) Delete(ctx context.Context, clientID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, exists := s.clients[clientID]
	if !exists {
		return store.ErrClientNotFound
	}

	delete(s.bySlug, client.Slug)
	delete(s.clients, clientID)

	return nil
}

// lookup returns a clone of the client or nil, for joins.
func (s *ClientStore) lookup(clientID uuid.UUID) *models.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, exists := s.clients[clientID]
	if !exists {
		return nil
	}
	clone := *client
	return &clone
}
