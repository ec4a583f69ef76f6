package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/clientportal/internal/models"
	"github.com/wolfeidau/clientportal/internal/store"
)

const documentColumns = `document_id, client_id, doc_type, title, content, created_at, updated_at, updated_by`

// DocumentStore implements store.DocumentStore using the client_documents table.
type DocumentStore struct {
	pool *pgxpool.Pool
	cfg  StoreConfig
}

// NewDocumentStore creates a new PostgreSQL-backed document store.
func NewDocumentStore(pool *pgxpool.Pool, cfg *StoreConfig) *DocumentStore {
	return &DocumentStore{
		pool: pool,
		cfg:  newStoreConfig(cfg),
	}
}

// ListByClient returns every document of a client ordered by doc_type.
func (s *DocumentStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Document, error) {
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM client_documents WHERE client_id = $1 ORDER BY doc_type`,
		clientID,
	)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(err)
	}

	return docs, nil
}

// Get retrieves a single document.
func (s *DocumentStore) Get(ctx context.Context, clientID uuid.UUID, docType models.DocType) (*models.Document, error) {
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM client_documents WHERE client_id = $1 AND doc_type = $2`,
		clientID, string(docType),
	)
	return scanDocument(row)
}

// InsertBatch inserts all documents in a single transaction.
// A unique violation on any row rolls back the whole batch.
func (s *DocumentStore) InsertBatch(ctx context.Context, docs []*models.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return mapPostgresError(err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // no-op after commit
	}()

	query := `
		INSERT INTO client_documents (
			document_id, client_id, doc_type, title, content, created_at, updated_at, updated_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	b := &pgx.Batch{}
	for _, doc := range docs {
		b.Queue(query,
			doc.DocumentID,
			doc.ClientID,
			string(doc.DocType),
			doc.Title,
			doc.Content,
			doc.CreatedAt,
			doc.UpdatedAt,
			doc.UpdatedBy,
		)
	}

	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return mapPostgresError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("client_id", docs[0].ClientID.String()).
		Int("count", len(docs)).
		Msg("Inserted document batch")

	return nil
}

// Upsert inserts or replaces the document for (client_id, doc_type).
func (s *DocumentStore) Upsert(ctx context.Context, doc *models.Document) error {
	ctx, cancel := s.cfg.withTimeout(ctx)
	defer cancel()

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO client_documents (
			document_id, client_id, doc_type, title, content, created_at, updated_at, updated_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (client_id, doc_type) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
		RETURNING document_id, created_at
	`

	err := s.pool.QueryRow(ctx, query,
		doc.DocumentID,
		doc.ClientID,
		string(doc.DocType),
		doc.Title,
		doc.Content,
		doc.CreatedAt,
		doc.UpdatedAt,
		doc.UpdatedBy,
	).Scan(&doc.DocumentID, &doc.CreatedAt)
	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("client_id", doc.ClientID.String()).
		Str("doc_type", doc.DocType.String()).
		Msg("Upserted document")

	return nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var (
		doc     models.Document
		docType string
	)
	err := row.Scan(
		&doc.DocumentID,
		&doc.ClientID,
		&docType,
		&doc.Title,
		&doc.Content,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrDocumentNotFound
		}
		return nil, mapPostgresError(err)
	}

	doc.DocType, err = models.ParseDocType(docType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrUpstream, err)
	}

	return &doc, nil
}
