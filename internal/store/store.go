package store

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every store implementation.
var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")

	// ErrUpstream is returned when the backing data store fails unexpectedly.
	ErrUpstream = errors.New("upstream failure")
)

// Typed not-found errors, each matches ErrNotFound with errors.Is.
var (
	ErrClientNotFound     = fmt.Errorf("client %w", ErrNotFound)
	ErrMembershipNotFound = fmt.Errorf("membership %w", ErrNotFound)
	ErrDocumentNotFound   = fmt.Errorf("document %w", ErrNotFound)
)

// Typed conflict errors, each matches ErrConflict with errors.Is.
var (
	ErrClientAlreadyExists = fmt.Errorf("client already exists: %w", ErrConflict)
	ErrClientSlugTaken     = fmt.Errorf("client slug already in use: %w", ErrConflict)
	ErrDocumentConflict    = fmt.Errorf("document already exists for type: %w", ErrConflict)
)

// Stores bundles the stores used by the service.
type Stores struct {
	Clients     ClientStore
	Memberships MembershipStore
	Documents   DocumentStore
}
