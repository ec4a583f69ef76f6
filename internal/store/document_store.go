package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/clientportal/internal/models"
)

// DocumentStore defines the interface for client document storage operations.
// Documents are unique per (client_id, doc_type).
type DocumentStore interface {
	// ListByClient returns every document of a client ordered by doc_type.
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Document, error)

	// Get retrieves a single document.
	// Returns ErrDocumentNotFound if it doesn't exist.
	Get(ctx context.Context, clientID uuid.UUID, docType models.DocType) (*models.Document, error)

	// InsertBatch inserts all documents or none.
	// Returns ErrDocumentConflict if any (client_id, doc_type) already exists.
	InsertBatch(ctx context.Context, docs []*models.Document) error

	// Upsert inserts the document or replaces title, content, updated_at and updated_by
	// of the existing row for the same (client_id, doc_type). The stored row is written
	// back into doc.
	Upsert(ctx context.Context, doc *models.Document) error
}
