// Package documents guarantees every client has its required documents and owns
// the single mutation path for them.
package documents

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/clientportal/internal/invalidate"
	"github.com/wolfeidau/clientportal/internal/models"
	"github.com/wolfeidau/clientportal/internal/store"
	"github.com/wolfeidau/clientportal/internal/telemetry"
)

// Provisioner creates missing default documents and replaces document content.
type Provisioner struct {
	clients   store.ClientStore
	documents store.DocumentStore
	notifier  invalidate.Notifier
	now       func() time.Time
	metrics   *telemetry.Metrics
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Provisioner) {
		p.now = now
	}
}

// NewProvisioner creates a provisioner. A nil notifier discards invalidation signals.
func NewProvisioner(clients store.ClientStore, documents store.DocumentStore, notifier invalidate.Notifier, opts ...Option) *Provisioner {
	if notifier == nil {
		notifier = invalidate.Nop{}
	}

	p := &Provisioner{
		clients:   clients,
		documents: documents,
		notifier:  notifier,
		now:       time.Now,
		metrics:   telemetry.GetMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EnsureAll makes sure one document exists per required type for the client and
// returns the full set ordered by doc_type.
//
// Missing documents are inserted in a single batch. If a concurrent call inserted any
// of them first the batch is rejected and the error matches store.ErrConflict; the
// caller decides whether to re-read.
func (p *Provisioner) EnsureAll(ctx context.Context, clientID uuid.UUID) ([]*models.Document, error) {
	if _, err := p.clients.Get(ctx, clientID); err != nil {
		return nil, classify("failed to get client", err)
	}

	existing, err := p.documents.ListByClient(ctx, clientID)
	if err != nil {
		return nil, classify("failed to list documents", err)
	}

	missing := missingTypes(existing)
	if len(missing) == 0 {
		return existing, nil
	}

	now := p.now()
	batch := make([]*models.Document, 0, len(missing))
	for _, docType := range missing {
		tmpl, _ := DefaultTemplate(docType)

		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate document id: %w", err)
		}

		batch = append(batch, &models.Document{
			DocumentID: id,
			ClientID:   clientID,
			DocType:    docType,
			Title:      tmpl.Title,
			Content:    tmpl.Content,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	if err := p.documents.InsertBatch(ctx, batch); err != nil {
		if errors.Is(err, store.ErrConflict) {
			p.metrics.ProvisionConflicts.Add(ctx, 1)
			log.Warn().
				Str("client_id", clientID.String()).
				Int("missing", len(missing)).
				Msg("Document provisioning lost a concurrent insert")
		}
		return nil, classify("failed to insert default documents", err)
	}

	p.metrics.DocumentsProvisioned.Add(ctx, int64(len(batch)))

	log.Info().
		Str("client_id", clientID.String()).
		Int("created", len(batch)).
		Msg("Provisioned default documents")

	p.notifier.Invalidate(ctx, invalidate.AdminClientView(clientID))

	docs, err := p.documents.ListByClient(ctx, clientID)
	if err != nil {
		return nil, classify("failed to re-read documents", err)
	}

	return docs, nil
}

// UpsertInput describes a full replacement of a document.
type UpsertInput struct {
	ClientID  uuid.UUID
	DocType   models.DocType
	Content   string
	Title     *string // nil keeps the current title, or the default for a new document
	UpdatedBy *string
}

// Upsert replaces the document content for (ClientID, DocType), creating the row if
// needed. UpdatedAt is set on every call even when the content is unchanged.
func (p *Provisioner) Upsert(ctx context.Context, in UpsertInput) (*models.Document, error) {
	if !in.DocType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDocType, in.DocType)
	}

	client, err := p.clients.Get(ctx, in.ClientID)
	if err != nil {
		return nil, classify("failed to get client", err)
	}

	title, err := p.title(ctx, in)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document id: %w", err)
	}

	now := p.now()
	doc := &models.Document{
		DocumentID: id,
		ClientID:   in.ClientID,
		DocType:    in.DocType,
		Title:      title,
		Content:    in.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
		UpdatedBy:  in.UpdatedBy,
	}

	if err := p.documents.Upsert(ctx, doc); err != nil {
		return nil, classify("failed to upsert document", err)
	}

	p.metrics.DocumentUpserts.Add(ctx, 1)

	log.Info().
		Str("client_id", in.ClientID.String()).
		Str("doc_type", in.DocType.String()).
		Msg("Updated document")

	p.notifier.Invalidate(ctx,
		invalidate.AdminClientView(in.ClientID),
		invalidate.PortalView(client.Slug),
	)

	return doc, nil
}

// List returns the client's documents without provisioning missing ones.
func (p *Provisioner) List(ctx context.Context, clientID uuid.UUID) ([]*models.Document, error) {
	docs, err := p.documents.ListByClient(ctx, clientID)
	if err != nil {
		return nil, classify("failed to list documents", err)
	}
	return docs, nil
}

// Get returns a single document.
func (p *Provisioner) Get(ctx context.Context, clientID uuid.UUID, docType models.DocType) (*models.Document, error) {
	if !docType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDocType, docType)
	}
	doc, err := p.documents.Get(ctx, clientID, docType)
	if err != nil {
		return nil, classify("failed to get document", err)
	}
	return doc, nil
}

func (p *Provisioner) title(ctx context.Context, in UpsertInput) (string, error) {
	if in.Title != nil && *in.Title != "" {
		return *in.Title, nil
	}

	current, err := p.documents.Get(ctx, in.ClientID, in.DocType)
	switch {
	case err == nil:
		return current.Title, nil
	case errors.Is(err, store.ErrNotFound):
		tmpl, _ := DefaultTemplate(in.DocType)
		return tmpl.Title, nil
	default:
		return "", classify("failed to get document", err)
	}
}

// missingTypes returns the required types absent from docs, in doc_type order.
func missingTypes(docs []*models.Document) []models.DocType {
	var missing []models.DocType
	for _, docType := range models.RequiredDocTypes {
		if !slices.ContainsFunc(docs, func(d *models.Document) bool { return d.DocType == docType }) {
			missing = append(missing, docType)
		}
	}
	return missing
}
