package auth

import (
	"context"
	"fmt"
	"slices"

	"github.com/wolfeidau/clientportal/internal/models"
)

// Permission represents an authorized action.
type Permission string

const (
	PermPortalView    Permission = "portal:view"
	PermClientsManage Permission = "clients:manage"
	PermDocumentsEdit Permission = "documents:edit"
)

// Application roles carried in access tokens.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// RolePermissions maps application roles to allowed permissions.
// Every authenticated identity may view the portal, membership checks decide which
// workspaces.
var RolePermissions = map[string][]Permission{
	RoleAdmin: {
		PermPortalView,
		PermClientsManage,
		PermDocumentsEdit,
	},
	RoleEditor: {
		PermPortalView,
		PermDocumentsEdit,
	},
}

// HasPermission checks if the identity holds perm through any of its roles.
func HasPermission(identity *models.Identity, perm Permission) bool {
	if identity == nil {
		return false
	}
	if perm == PermPortalView {
		return true
	}
	for _, role := range identity.Roles {
		if slices.Contains(RolePermissions[role], perm) {
			return true
		}
	}
	return false
}

// RequirePermission checks authorization and returns an error if not authorized.
func RequirePermission(ctx context.Context, perm Permission) error {
	identity := IdentityFromContext(ctx)
	if identity == nil {
		return ErrUnauthenticated
	}

	if !HasPermission(identity, perm) {
		return fmt.Errorf("%w: %s requires %s", ErrPermissionDenied, identity.ID, perm)
	}

	return nil
}
