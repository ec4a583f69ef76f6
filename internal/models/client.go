package models

import (
	"time"

	"github.com/google/uuid"
)

// Client statuses.
const (
	ClientStatusActive   = "active"
	ClientStatusPaused   = "paused"
	ClientStatusArchived = "archived"
)

// Client represents a marketing client workspace.
// Slug is the externally addressable identifier used in portal routes, ClientID is the
// internal key joined against memberships and documents.
type Client struct {
	ClientID     uuid.UUID // UUIDv7
	Slug         string    // unique, lowercase, e.g. "acme"
	BusinessName string
	Status       string // "active", "paused", "archived"
	Vertical     string // e.g. "dental", "legal", "home-services"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasSlug returns true if the client can be routed to.
func (c *Client) HasSlug() bool {
	return c != nil && c.Slug != ""
}

// ValidClientStatus reports whether status is a known client status.
func ValidClientStatus(status string) bool {
	switch status {
	case ClientStatusActive, ClientStatusPaused, ClientStatusArchived:
		return true
	}
	return false
}
