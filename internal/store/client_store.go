package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/clientportal/internal/models"
)

// ClientStore defines the interface for client storage operations.
type ClientStore interface {
	// Create creates a new client.
	// Returns ErrClientSlugTaken if the slug is already used by another client.
	Create(ctx context.Context, client *models.Client) error

	// Get retrieves a client by ID.
	// Returns ErrClientNotFound if the client doesn't exist.
	Get(ctx context.Context, clientID uuid.UUID) (*models.Client, error)

	// GetBySlug retrieves a client by its slug.
	// Returns ErrClientNotFound if no client has the slug.
	GetBySlug(ctx context.Context, slug string) (*models.Client, error)

	// List returns all clients ordered by business name.
	List(ctx context.Context) ([]*models.Client, error)

	// Update replaces the mutable fields of an existing client and sets UpdatedAt.
	// Returns ErrClientNotFound if the client doesn't exist, ErrClientSlugTaken on slug collision.
	Update(ctx context.Context, client *models.Client) error
}
