// Package auth verifies access tokens issued by the external auth service and
// carries the resulting identity through request contexts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wolfeidau/clientportal/internal/models"
)

var (
	// ErrUnauthenticated is returned when no identity is present.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrPermissionDenied is returned when the identity lacks a permission.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidToken is returned for tokens that fail verification.
	ErrInvalidToken = errors.New("invalid token")
)

// Verifier validates an access token and returns the identity it names.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
}

// Claims are the access token claims understood by the portal.
type Claims struct {
	jwt.RegisteredClaims
	Email string   `json:"email,omitempty"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

func (c *Claims) identity() (*models.Identity, error) {
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &models.Identity{
		ID:    c.Subject,
		Email: c.Email,
		Name:  c.Name,
		Roles: c.Roles,
	}, nil
}

type contextKey int

const (
	identityContextKey contextKey = iota
)

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext extracts the authenticated identity from the context.
// Returns nil if the request is unauthenticated.
func IdentityFromContext(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(identityContextKey).(*models.Identity)
	return identity
}

// parserOptions builds the shared validation options.
func parserOptions(method, issuer, audience string) []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return opts
}
