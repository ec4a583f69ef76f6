package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/clientportal/internal/models"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name     string
		identity *models.Identity
		perm     Permission
		expected bool
	}{
		{name: "nil identity", identity: nil, perm: PermPortalView, expected: false},
		{name: "member can view portal", identity: &models.Identity{ID: "u1"}, perm: PermPortalView, expected: true},
		{name: "member cannot manage clients", identity: &models.Identity{ID: "u1"}, perm: PermClientsManage, expected: false},
		{name: "member cannot edit documents", identity: &models.Identity{ID: "u1"}, perm: PermDocumentsEdit, expected: false},
		{name: "editor can edit documents", identity: &models.Identity{ID: "u1", Roles: []string{RoleEditor}}, perm: PermDocumentsEdit, expected: true},
		{name: "editor cannot manage clients", identity: &models.Identity{ID: "u1", Roles: []string{RoleEditor}}, perm: PermClientsManage, expected: false},
		{name: "admin can manage clients", identity: &models.Identity{ID: "u1", Roles: []string{RoleAdmin}}, perm: PermClientsManage, expected: true},
		{name: "admin can edit documents", identity: &models.Identity{ID: "u1", Roles: []string{RoleAdmin}}, perm: PermDocumentsEdit, expected: true},
		{name: "unknown role grants nothing extra", identity: &models.Identity{ID: "u1", Roles: []string{"superuser"}}, perm: PermClientsManage, expected: false},
		{name: "any matching role is enough", identity: &models.Identity{ID: "u1", Roles: []string{"superuser", RoleAdmin}}, perm: PermClientsManage, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, HasPermission(tt.identity, tt.perm))
		})
	}
}

func TestRequirePermission(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		err := RequirePermission(context.Background(), PermPortalView)
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("denied", func(t *testing.T) {
		ctx := WithIdentity(context.Background(), &models.Identity{ID: "u1"})
		err := RequirePermission(ctx, PermClientsManage)
		require.ErrorIs(t, err, ErrPermissionDenied)
		require.Contains(t, err.Error(), "clients:manage")
	})

	t.Run("allowed", func(t *testing.T) {
		ctx := WithIdentity(context.Background(), &models.Identity{ID: "u1", Roles: []string{RoleAdmin}})
		require.NoError(t, RequirePermission(ctx, PermClientsManage))
	})
}
