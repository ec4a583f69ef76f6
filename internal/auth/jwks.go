package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/clientportal/internal/models"
)

const (
	defaultKeyTTL      = time.Hour
	defaultMinRefresh  = 30 * time.Second
	defaultHTTPTimeout = 5 * time.Second
)

// NewCachingHTTPClient returns an HTTP client that honours Cache-Control headers
// on responses, keeping them in memory.
func NewCachingHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{
		Transport: httpcache.NewTransport(httpcache.NewMemoryCache()),
		Timeout:   timeout,
	}
}

// KeyCache fetches ES256 signing keys from a JWKS endpoint and caches them by kid.
type KeyCache struct {
	jwksURL    string
	httpClient *http.Client
	ttl        time.Duration
	minRefresh time.Duration

	mu        sync.RWMutex
	keys      map[string]*ecdsa.PublicKey // kid -> public key
	fetchedAt time.Time
}

// NewKeyCache creates a key cache. A nil client uses NewCachingHTTPClient.
func NewKeyCache(jwksURL string, httpClient *http.Client) *KeyCache {
	if httpClient == nil {
		httpClient = NewCachingHTTPClient(0)
	}
	return &KeyCache{
		jwksURL:    jwksURL,
		httpClient: httpClient,
		ttl:        defaultKeyTTL,
		minRefresh: defaultMinRefresh,
		keys:       make(map[string]*ecdsa.PublicKey),
	}
}

// Key returns the public key for kid, refreshing the key set when it is stale or
// when kid is unknown and the last fetch is older than the refresh floor.
// A stale key is still returned when the refresh fails.
func (c *KeyCache) Key(ctx context.Context, kid string) (*ecdsa.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	age := time.Since(c.fetchedAt)
	c.mu.RUnlock()

	if ok && age < c.ttl {
		log.Debug().Str("kid", kid).Msg("JWKS cache hit")
		return key, nil
	}
	if !ok && age < c.minRefresh {
		return nil, fmt.Errorf("kid not found in JWKS: %s", kid)
	}

	keys, err := c.fetch(ctx)
	if err != nil {
		if ok {
			log.Warn().Err(err).Str("kid", kid).Dur("age", age).Msg("JWKS refresh failed, using cached key")
			return key, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.keys = keys
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	key, ok = keys[kid]
	if !ok {
		return nil, fmt.Errorf("kid not found in JWKS: %s", kid)
	}

	log.Info().Str("kid", kid).Int("total_keys", len(keys)).Msg("Cached JWKS")
	return key, nil
}

type jsonWebKey struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

func (c *KeyCache) fetch(ctx context.Context) (map[string]*ecdsa.PublicKey, error) {
	log.Debug().Str("jwks_url", c.jwksURL).Msg("Fetching JWKS")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS request failed: %s", resp.Status)
	}

	var set struct {
		Keys []jsonWebKey `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS: %w", err)
	}

	keys := make(map[string]*ecdsa.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Kid == "" {
			log.Warn().Msg("JWK missing kid")
			continue
		}
		key, err := parseJWK(jwk)
		if err != nil {
			log.Warn().Err(err).Str("kid", jwk.Kid).Msg("Failed to parse JWK")
			continue
		}
		keys[jwk.Kid] = key
	}

	return keys, nil
}

// parseJWK converts a P-256 EC JWK into a public key.
func parseJWK(jwk jsonWebKey) (*ecdsa.PublicKey, error) {
	if jwk.Kty != "EC" {
		return nil, fmt.Errorf("unsupported key type: %q", jwk.Kty)
	}
	if jwk.Crv != "P-256" {
		return nil, fmt.Errorf("unsupported curve: %q", jwk.Crv)
	}
	if jwk.X == "" || jwk.Y == "" {
		return nil, errors.New("missing coordinates")
	}

	x, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(jwk.X, "="))
	if err != nil {
		return nil, fmt.Errorf("failed to decode x: %w", err)
	}
	y, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(jwk.Y, "="))
	if err != nil {
		return nil, fmt.Errorf("failed to decode y: %w", err)
	}

	if len(x) != 32 || len(y) != 32 {
		return nil, errors.New("invalid coordinate length")
	}

	point := make([]byte, 0, 65)
	point = append(point, 0x04)
	point = append(point, x...)
	point = append(point, y...)

	key, err := ecdsa.ParseUncompressedPublicKey(elliptic.P256(), point)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}

	return key, nil
}

// JWKSVerifier verifies ES256 tokens against keys published at a JWKS endpoint.
type JWKSVerifier struct {
	keys     *KeyCache
	issuer   string
	audience string
}

// NewJWKSVerifier creates a verifier. Empty issuer or audience disables that check.
func NewJWKSVerifier(keys *KeyCache, issuer, audience string) *JWKSVerifier {
	return &JWKSVerifier{
		keys:     keys,
		issuer:   issuer,
		audience: audience,
	}
}

// Verify parses the token, resolves its kid and validates the signature and claims.
func (v *JWKSVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("missing kid")
		}
		return v.keys.Key(ctx, kid)
	}, parserOptions(jwt.SigningMethodES256.Alg(), v.issuer, v.audience)...)
	if err != nil {
		log.Debug().Err(err).Msg("JWT parse error")
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return claims.identity()
}
