package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/clientportal/internal/models"
)

// HMACVerifier verifies HS256 tokens signed with a shared secret, the scheme used
// by hosted auth backends.
type HMACVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewHMACVerifier creates a verifier. Empty issuer or audience disables that check.
func NewHMACVerifier(secret []byte, issuer, audience string) (*HMACVerifier, error) {
	if len(secret) < 32 {
		return nil, errors.New("HMAC secret must be at least 32 bytes")
	}
	return &HMACVerifier{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
	}, nil
}

// Verify parses and validates the token.
func (v *HMACVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, parserOptions(jwt.SigningMethodHS256.Alg(), v.issuer, v.audience)...)
	if err != nil {
		log.Debug().Err(err).Msg("JWT parse error")
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return claims.identity()
}

// IssueToken signs an HS256 token for identity. Used for local development and tests.
func IssueToken(secret []byte, issuer string, identity *models.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: identity.Email,
		Name:  identity.Name,
		Roles: identity.Roles,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
