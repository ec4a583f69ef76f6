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

type documentKey struct {
	clientID uuid.UUID
	docType  models.DocType
}

var _ store.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements store.DocumentStore using in-memory storage.
// It enforces the same (client_id, doc_type) uniqueness as the database.
type DocumentStore struct {
	mu sync.RWMutex

	documents map[documentKey]*models.Document
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[documentKey]*models.Document),
	}
}

// ListByClient returns the documents of a client ordered by doc_type.
func (s *DocumentStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Document
	for key, doc := range s.documents {
		if key.clientID == clientID {
			result = append(result, cloneDocument(doc))
		}
	}

	slices.SortFunc(result, func(a, b *models.Document) int {
		return cmp.Compare(a.DocType, b.DocType)
	})

	return result, nil
}

// Get retrieves a single document.
func (s *DocumentStore) Get(ctx context.Context, clientID uuid.UUID, docType models.DocType) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.documents[documentKey{clientID: clientID, docType: docType}]
	if !exists {
		return nil, store.ErrDocumentNotFound
	}

	return cloneDocument(doc), nil
}

// InsertBatch inserts every document or none of them.
func (s *DocumentStore) InsertBatch(ctx context.Context, docs []*models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check every key before writing so a conflict leaves the store untouched.
	seen := make(map[documentKey]struct{}, len(docs))
	for _, doc := range docs {
		key := documentKey{clientID: doc.ClientID, docType: doc.DocType}
		if _, exists := s.documents[key]; exists {
			return store.ErrDocumentConflict
		}
		if _, dup := seen[key]; dup {
			return store.ErrDocumentConflict
		}
		seen[key] = struct{}{}
	}

	for _, doc := range docs {
		s.documents[documentKey{clientID: doc.ClientID, docType: doc.DocType}] = cloneDocument(doc)
	}

	return nil
}

// Upsert inserts or replaces a document keyed by (client_id, doc_type).
func (s *DocumentStore) Upsert(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := documentKey{clientID: doc.ClientID, docType: doc.DocType}
	if existing, exists := s.documents[key]; exists {
		doc.DocumentID = existing.DocumentID
		doc.CreatedAt = existing.CreatedAt
	} else if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	s.documents[key] = cloneDocument(doc)

	return nil
}

func cloneDocument(doc *models.Document) *models.Document {
	clone := *doc
	if doc.UpdatedBy != nil {
		updatedBy := *doc.UpdatedBy
		clone.UpdatedBy = &updatedBy
	}
	return &clone
}
