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

func newTestClient(t *testing.T, slug, name string) *models.Client {
	t.Helper()
	clientID, err := uuid.NewV7()
	require.NoError(t, err)

	now := time.Now()
	return &models.Client{
		ClientID:     clientID,
		Slug:         slug,
		BusinessName: name,
		Status:       models.ClientStatusActive,
		Vertical:     "dental",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestClientStore_Create(t *testing.T) {
	t.Run("create and get", func(t *testing.T) {
		st := NewClientStore()
		ctx := context.Background()

		client := newTestClient(t, "acme", "Acme Dental")
		require.NoError(t, st.Create(ctx, client))

		got, err := st.Get(ctx, client.ClientID)
		require.NoError(t, err)
		require.Equal(t, "acme", got.Slug)
		require.Equal(t, "Acme Dental", got.BusinessName)

		bySlug, err := st.GetBySlug(ctx, "acme")
		require.NoError(t, err)
		require.Equal(t, client.ClientID, bySlug.ClientID)
	})

	t.Run("duplicate slug is a conflict", func(t *testing.T) {
		st := NewClientStore()
		ctx := context.Background()

		require.NoError(t, st.Create(ctx, newTestClient(t, "acme", "Acme Dental")))

		err := st.Create(ctx, newTestClient(t, "acme", "Acme Legal"))
		require.ErrorIs(t, err, store.ErrClientSlugTaken)
		require.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("returned values are copies", func(t *testing.T) {
		st := NewClientStore()
		ctx := context.Background()

		client := newTestClient(t, "acme", "Acme Dental")
		require.NoError(t, st.Create(ctx, client))
		client.BusinessName = "mutated"

		got, err := st.Get(ctx, client.ClientID)
		require.NoError(t, err)
		require.Equal(t, "Acme Dental", got.BusinessName)
	})
}

func TestClientStore_GetMissing(t *testing.T) {
	st := NewClientStore()
	ctx := context.Background()

	_, err := st.Get(ctx, uuid.New())
	require.ErrorIs(t, err, store.ErrClientNotFound)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.GetBySlug(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestClientStore_List(t *testing.T) {
	st := NewClientStore()
	ctx := context.Background()

	require.NoError(t, st.Create(ctx, newTestClient(t, "zenith", "Zenith Roofing")))
	require.NoError(t, st.Create(ctx, newTestClient(t, "acme", "Acme Dental")))

	clients, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	require.Equal(t, "acme", clients[0].Slug)
	require.Equal(t, "zenith", clients[1].Slug)
}

func TestClientStore_Update(t *testing.T) {
	t.Run("rename slug", func(t *testing.T) {
		st := NewClientStore()
		ctx := context.Background()

		client := newTestClient(t, "acme", "Acme Dental")
		require.NoError(t, st.Create(ctx, client))

		client.Slug = "acme-dental"
		require.NoError(t, st.Update(ctx, client))

		_, err := st.GetBySlug(ctx, "acme")
		require.ErrorIs(t, err, store.ErrNotFound)

		got, err := st.GetBySlug(ctx, "acme-dental")
		require.NoError(t, err)
		require.Equal(t, client.ClientID, got.ClientID)
	})

	t.Run("slug collision", func(t *testing.T) {
		st := NewClientStore()
		ctx := context.Background()

		acme := newTestClient(t, "acme", "Acme Dental")
		zenith := newTestClient(t, "zenith", "Zenith Roofing")
		require.NoError(t, st.Create(ctx, acme))
		require.NoError(t, st.Create(ctx, zenith))

		zenith.Slug = "acme"
		require.ErrorIs(t, st.Update(ctx, zenith), store.ErrClientSlugTaken)
	})

	t.Run("missing client", func(t *testing.T) {
		st := NewClientStore()
		err := st.Update(context.Background(), newTestClient(t, "acme", "Acme Dental"))
		require.ErrorIs(t, err, store.ErrClientNotFound)
	})
}
