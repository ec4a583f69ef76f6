package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership roles within a single client workspace.
const (
	MembershipRoleOwner  = "owner"
	MembershipRoleEditor = "editor"
	MembershipRoleViewer = "viewer"
)

// Membership links an identity to a client workspace.
// Only active memberships grant access.
type Membership struct {
	MembershipID uuid.UUID // UUIDv7
	IdentityID   string    // subject issued by the auth service
	ClientID     uuid.UUID
	Role         string // "owner", "editor", "viewer"
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MembershipWithClient is a membership joined to its client.
// Client is nil when the referenced client row is missing.
type MembershipWithClient struct {
	Membership
	Client *Client
}

// ValidMembershipRole reports whether role is a known membership role.
func ValidMembershipRole(role string) bool {
	switch role {
	case MembershipRoleOwner, MembershipRoleEditor, MembershipRoleViewer:
		return true
	}
	return false
}
