//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wolfeidau/clientportal/internal/models"
	"github.com/wolfeidau/clientportal/internal/store"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	// Start postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := NewPool(ctx, &PoolConfig{ConnString: connString})
	require.NoError(t, err)

	require.NoError(t, Migrate(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup
}

func newIntegrationClient(t *testing.T, slug string) *models.Client {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Client{
		ClientID:     id,
		Slug:         slug,
		BusinessName: "Business " + slug,
		Status:       models.ClientStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newIntegrationDocument(t *testing.T, clientID uuid.UUID, docType models.DocType, content string) *models.Document {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Document{
		DocumentID: id,
		ClientID:   clientID,
		DocType:    docType,
		Title:      docType.String(),
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestIntegration_Stores(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	clients := NewClientStore(pool, nil)
	memberships := NewMembershipStore(pool, nil)
	documents := NewDocumentStore(pool, nil)

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, Migrate(ctx, pool))
	})

	t.Run("client slug is unique", func(t *testing.T) {
		require.NoError(t, clients.Create(ctx, newIntegrationClient(t, "unique-slug")))

		err := clients.Create(ctx, newIntegrationClient(t, "unique-slug"))
		require.ErrorIs(t, err, store.ErrClientSlugTaken)
		require.ErrorIs(t, err, store.ErrConflict)

		_, err = clients.GetBySlug(ctx, "missing-slug")
		require.ErrorIs(t, err, store.ErrClientNotFound)
	})

	t.Run("client update", func(t *testing.T) {
		client := newIntegrationClient(t, "update-me")
		require.NoError(t, clients.Create(ctx, client))

		client.BusinessName = "Renamed"
		client.Status = models.ClientStatusPaused
		require.NoError(t, clients.Update(ctx, client))

		got, err := clients.Get(ctx, client.ClientID)
		require.NoError(t, err)
		require.Equal(t, "Renamed", got.BusinessName)
		require.Equal(t, models.ClientStatusPaused, got.Status)

		missing := newIntegrationClient(t, "never-created")
		require.ErrorIs(t, clients.Update(ctx, missing), store.ErrClientNotFound)
	})

	t.Run("membership upsert and deactivate", func(t *testing.T) {
		client := newIntegrationClient(t, "members")
		require.NoError(t, clients.Create(ctx, client))

		id, err := uuid.NewV7()
		require.NoError(t, err)
		m := &models.Membership{
			MembershipID: id,
			IdentityID:   "user-1",
			ClientID:     client.ClientID,
			Role:         models.MembershipRoleViewer,
			IsActive:     true,
		}
		require.NoError(t, memberships.Upsert(ctx, m))

		otherID, err := uuid.NewV7()
		require.NoError(t, err)
		again := &models.Membership{
			MembershipID: otherID,
			IdentityID:   "user-1",
			ClientID:     client.ClientID,
			Role:         models.MembershipRoleEditor,
			IsActive:     true,
		}
		require.NoError(t, memberships.Upsert(ctx, again))
		require.Equal(t, id, again.MembershipID, "existing membership id is preserved")

		active, err := memberships.ListActiveByIdentity(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, active, 1)
		require.NotNil(t, active[0].Client)
		require.Equal(t, "members", active[0].Client.Slug)
		require.Equal(t, models.MembershipRoleEditor, active[0].Role)

		require.NoError(t, memberships.SetActive(ctx, "user-1", client.ClientID, false))

		active, err = memberships.ListActiveByIdentity(ctx, "user-1")
		require.NoError(t, err)
		require.Empty(t, active)

		err = memberships.SetActive(ctx, "nobody", client.ClientID, true)
		require.ErrorIs(t, err, store.ErrMembershipNotFound)
	})

	t.Run("membership for unknown client", func(t *testing.T) {
		id, err := uuid.NewV7()
		require.NoError(t, err)
		err = memberships.Upsert(ctx, &models.Membership{
			MembershipID: id,
			IdentityID:   "user-2",
			ClientID:     uuid.New(),
			Role:         models.MembershipRoleViewer,
			IsActive:     true,
		})
		require.ErrorIs(t, err, store.ErrClientNotFound)
	})

	t.Run("document batch is all or nothing", func(t *testing.T) {
		client := newIntegrationClient(t, "docs-batch")
		require.NoError(t, clients.Create(ctx, client))

		require.NoError(t, documents.InsertBatch(ctx, []*models.Document{
			newIntegrationDocument(t, client.ClientID, models.DocTypeOnboarding, "existing"),
		}))

		err := documents.InsertBatch(ctx, []*models.Document{
			newIntegrationDocument(t, client.ClientID, models.DocTypeBrandGuide, ""),
			newIntegrationDocument(t, client.ClientID, models.DocTypeOnboarding, ""),
			newIntegrationDocument(t, client.ClientID, models.DocTypeStrategy, ""),
		})
		require.ErrorIs(t, err, store.ErrDocumentConflict)

		docs, err := documents.ListByClient(ctx, client.ClientID)
		require.NoError(t, err)
		require.Len(t, docs, 1, "conflicting batch must not insert any row")
		require.Equal(t, "existing", docs[0].Content)
	})

	t.Run("document upsert replaces content", func(t *testing.T) {
		client := newIntegrationClient(t, "docs-upsert")
		require.NoError(t, clients.Create(ctx, client))

		first := newIntegrationDocument(t, client.ClientID, models.DocTypeStrategy, "v1")
		require.NoError(t, documents.Upsert(ctx, first))

		editor := "editor@example.com"
		second := newIntegrationDocument(t, client.ClientID, models.DocTypeStrategy, "v2")
		second.UpdatedAt = first.UpdatedAt.Add(time.Minute)
		second.UpdatedBy = &editor
		require.NoError(t, documents.Upsert(ctx, second))
		require.Equal(t, first.DocumentID, second.DocumentID)

		got, err := documents.Get(ctx, client.ClientID, models.DocTypeStrategy)
		require.NoError(t, err)
		require.Equal(t, "v2", got.Content)
		require.NotNil(t, got.UpdatedBy)
		require.Equal(t, editor, *got.UpdatedBy)
		require.True(t, got.UpdatedAt.After(first.UpdatedAt))

		_, err = documents.Get(ctx, client.ClientID, models.DocTypeBrandGuide)
		require.ErrorIs(t, err, store.ErrDocumentNotFound)
	})

	t.Run("document for unknown client", func(t *testing.T) {
		err := documents.Upsert(ctx, newIntegrationDocument(t, uuid.New(), models.DocTypeStrategy, ""))
		require.ErrorIs(t, err, store.ErrClientNotFound)
	})
}
