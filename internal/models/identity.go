package models

import "slices"

// Identity is an authenticated principal as reported by the auth service.
// It is never persisted by this service.
type Identity struct {
	ID    string // stable subject id
	Email string
	Name  string
	Roles []string // application roles, e.g. ["admin"]
}

// HasRole returns true if the identity carries the given application role.
func (i *Identity) HasRole(role string) bool {
	return i != nil && slices.Contains(i.Roles, role)
}

// Actor returns the value recorded in updated_by columns.
func (i *Identity) Actor() string {
	if i == nil {
		return ""
	}
	if i.Email != "" {
		return i.Email
	}
	return i.ID
}
