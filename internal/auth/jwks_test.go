package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func generateECKeyPair(t *testing.T) (*ecdsa.PrivateKey, *ecdsa.PublicKey) {
	t.Helper()
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return privateKey, &privateKey.PublicKey
}

func toJWK(t *testing.T, kid string, publicKey *ecdsa.PublicKey) jsonWebKey {
	t.Helper()
	ecdhKey, err := publicKey.ECDH()
	require.NoError(t, err)
	point := ecdhKey.Bytes() // 0x04 || X || Y
	return jsonWebKey{
		Kty: "EC",
		Crv: "P-256",
		Kid: kid,
		Use: "sig",
		X:   base64.RawURLEncoding.EncodeToString(point[1:33]),
		Y:   base64.RawURLEncoding.EncodeToString(point[33:]),
	}
}

type jwksServer struct {
	*httptest.Server
	requests atomic.Int32
	keys     atomic.Pointer[[]jsonWebKey]
}

func newJWKSServer(t *testing.T, keys ...jsonWebKey) *jwksServer {
	t.Helper()
	s := &jwksServer{}
	s.keys.Store(&keys)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": *s.keys.Load()})
	}))
	t.Cleanup(s.Close)
	return s
}

func signES256(t *testing.T, privateKey *ecdsa.PrivateKey, kid string, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	tokenStr, err := token.SignedString(privateKey)
	require.NoError(t, err)
	return tokenStr
}

func esClaims(subject string) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestParseJWK(t *testing.T) {
	_, publicKey := generateECKeyPair(t)
	valid := toJWK(t, "k1", publicKey)

	key, err := parseJWK(valid)
	require.NoError(t, err)
	require.True(t, key.Equal(publicKey))

	tests := []struct {
		name   string
		mutate func(j *jsonWebKey)
	}{
		{name: "rsa key", mutate: func(j *jsonWebKey) { j.Kty = "RSA" }},
		{name: "other curve", mutate: func(j *jsonWebKey) { j.Crv = "P-384" }},
		{name: "missing x", mutate: func(j *jsonWebKey) { j.X = "" }},
		{name: "bad base64", mutate: func(j *jsonWebKey) { j.Y = "!!!" }},
		{name: "short coordinate", mutate: func(j *jsonWebKey) { j.X = base64.RawURLEncoding.EncodeToString([]byte{1, 2, 3}) }},
		{name: "swapped coordinates", mutate: func(j *jsonWebKey) { j.X, j.Y = j.Y, j.X }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jwk := valid
			tt.mutate(&jwk)
			_, err := parseJWK(jwk)
			require.Error(t, err)
		})
	}
}

func TestJWKSVerifier_Verify(t *testing.T) {
	privateKey, publicKey := generateECKeyPair(t)
	server := newJWKSServer(t, toJWK(t, "k1", publicKey))

	v := NewJWKSVerifier(NewKeyCache(server.URL, nil), "", "")

	t.Run("valid token", func(t *testing.T) {
		identity, err := v.Verify(context.Background(), signES256(t, privateKey, "k1", esClaims("user-1")))
		require.NoError(t, err)
		require.Equal(t, "user-1", identity.ID)
	})

	t.Run("keys are cached", func(t *testing.T) {
		before := server.requests.Load()
		_, err := v.Verify(context.Background(), signES256(t, privateKey, "k1", esClaims("user-2")))
		require.NoError(t, err)
		require.Equal(t, before, server.requests.Load())
	})

	t.Run("missing kid", func(t *testing.T) {
		_, err := v.Verify(context.Background(), signES256(t, privateKey, "", esClaims("user-1")))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown kid", func(t *testing.T) {
		_, err := v.Verify(context.Background(), signES256(t, privateKey, "k-unknown", esClaims("user-1")))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("signed by another key", func(t *testing.T) {
		otherKey, _ := generateECKeyPair(t)
		_, err := v.Verify(context.Background(), signES256(t, otherKey, "k1", esClaims("user-1")))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("hmac token rejected", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, esClaims("user-1")).SignedString(testSecret)
		require.NoError(t, err)
		_, err = v.Verify(context.Background(), token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestKeyCache_Rotation(t *testing.T) {
	_, oldPublic := generateECKeyPair(t)
	newPrivate, newPublic := generateECKeyPair(t)
	server := newJWKSServer(t, toJWK(t, "old", oldPublic))

	cache := NewKeyCache(server.URL, &http.Client{Timeout: time.Second})
	cache.minRefresh = 0

	_, err := cache.Key(context.Background(), "old")
	require.NoError(t, err)

	rotated := []jsonWebKey{toJWK(t, "new", newPublic)}
	server.keys.Store(&rotated)

	key, err := cache.Key(context.Background(), "new")
	require.NoError(t, err)
	require.True(t, key.Equal(newPublic))

	v := NewJWKSVerifier(cache, "", "")
	_, err = v.Verify(context.Background(), signES256(t, newPrivate, "new", esClaims("user-1")))
	require.NoError(t, err)
}

func TestKeyCache_RefreshFloor(t *testing.T) {
	_, publicKey := generateECKeyPair(t)
	server := newJWKSServer(t, toJWK(t, "k1", publicKey))
	cache := NewKeyCache(server.URL, nil)

	_, err := cache.Key(context.Background(), "k1")
	require.NoError(t, err)
	require.EqualValues(t, 1, server.requests.Load())

	_, err = cache.Key(context.Background(), "nope")
	require.Error(t, err)
	require.EqualValues(t, 1, server.requests.Load(), "unknown kid within the refresh floor must not refetch")
}

func TestKeyCache_Upstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewKeyCache(server.URL, nil).Key(context.Background(), "k1")
	require.ErrorContains(t, err, "JWKS request failed")
}

func TestKeyCache_StaleKeyOnRefreshFailure(t *testing.T) {
	privateKey, publicKey := generateECKeyPair(t)

	var failing atomic.Bool
	keys := []jsonWebKey{toJWK(t, "k1", publicKey)}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": keys})
	}))
	defer server.Close()

	cache := NewKeyCache(server.URL, &http.Client{Timeout: time.Second})
	_, err := cache.Key(context.Background(), "k1")
	require.NoError(t, err)

	failing.Store(true)
	cache.ttl = 0

	key, err := cache.Key(context.Background(), "k1")
	require.NoError(t, err)
	require.True(t, key.Equal(publicKey))

	v := NewJWKSVerifier(cache, "", "")
	_, err = v.Verify(context.Background(), signES256(t, privateKey, "k1", esClaims("user-1")))
	require.NoError(t, err)

	_, err = cache.Key(context.Background(), "unknown")
	require.Error(t, err, "an unknown kid has no cached fallback")
}
