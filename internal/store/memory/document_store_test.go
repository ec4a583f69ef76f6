package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/clientportal/internal/models"
	"github.com/wolfeidau/clientportal/internal/store"
)

func newTestDocument(clientID uuid.UUID, docType models.DocType, content string) *models.Document {
	now := time.Now()
	return &models.Document{
		DocumentID: uuid.New(),
		ClientID:   clientID,
		DocType:    docType,
		Title:      string(docType),
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestDocumentStore_InsertBatch(t *testing.T) {
	t.Run("inserts and lists in doc_type order", func(t *testing.T) {
		st := NewDocumentStore()
		ctx := context.Background()
		clientID := uuid.New()

		err := st.InsertBatch(ctx, []*models.Document{
			newTestDocument(clientID, models.DocTypeStrategy, "s"),
			newTestDocument(clientID, models.DocTypeBrandGuide, "b"),
			newTestDocument(clientID, models.DocTypeOnboarding, "o"),
		})
		require.NoError(t, err)

		docs, err := st.ListByClient(ctx, clientID)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		require.Equal(t, models.DocTypeBrandGuide, docs[0].DocType)
		require.Equal(t, models.DocTypeOnboarding, docs[1].DocType)
		require.Equal(t, models.DocTypeStrategy, docs[2].DocType)
	})

	t.Run("conflict writes nothing", func(t *testing.T) {
		st := NewDocumentStore()
		ctx := context.Background()
		clientID := uuid.New()

		require.NoError(t, st.InsertBatch(ctx, []*models.Document{
			newTestDocument(clientID, models.DocTypeStrategy, "existing"),
		}))

		err := st.InsertBatch(ctx, []*models.Document{
			newTestDocument(clientID, models.DocTypeBrandGuide, "b"),
			newTestDocument(clientID, models.DocTypeStrategy, "s"),
		})
		require.ErrorIs(t, err, store.ErrDocumentConflict)
		require.ErrorIs(t, err, store.ErrConflict)

		docs, err := st.ListByClient(ctx, clientID)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		require.Equal(t, "existing", docs[0].Content)
	})

	t.Run("duplicate types within one batch", func(t *testing.T) {
		st := NewDocumentStore()
		clientID := uuid.New()

		err := st.InsertBatch(context.Background(), []*models.Document{
			newTestDocument(clientID, models.DocTypeStrategy, "a"),
			newTestDocument(clientID, models.DocTypeStrategy, "b"),
		})
		require.ErrorIs(t, err, store.ErrConflict)
	})
}

func TestDocumentStore_Upsert(t *testing.T) {
	st := NewDocumentStore()
	ctx := context.Background()
	clientID := uuid.New()

	original := newTestDocument(clientID, models.DocTypeStrategy, "v1")
	require.NoError(t, st.Upsert(ctx, original))

	replacement := newTestDocument(clientID, models.DocTypeStrategy, "v2")
	require.NoError(t, st.Upsert(ctx, replacement))
	require.Equal(t, original.DocumentID, replacement.DocumentID)

	docs, err := st.ListByClient(ctx, clientID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "v2", docs[0].Content)

	_, err = st.Get(ctx, clientID, models.DocTypeBrandGuide)
	require.ErrorIs(t, err, store.ErrDocumentNotFound)
}
