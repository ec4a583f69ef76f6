package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/wolfeidau/clientportal/internal/auth"
)

type AuthFlags struct {
	Mode     string        `help:"token verification mode (hmac or jwks)" default:"hmac" env:"PORTAL_AUTH_MODE" enum:"hmac,jwks"`
	Secret   string        `help:"shared HS256 secret, at least 32 bytes" env:"PORTAL_AUTH_SECRET"`
	JWKSURL  string        `name:"jwks-url" help:"JWKS endpoint for ES256 tokens" env:"PORTAL_AUTH_JWKS_URL"`
	Issuer   string        `help:"required token issuer (empty disables the check)" env:"PORTAL_AUTH_ISSUER"`
	Audience string        `help:"required token audience (empty disables the check)" env:"PORTAL_AUTH_AUDIENCE"`
	Timeout  time.Duration `help:"JWKS fetch timeout" default:"10s" env:"PORTAL_AUTH_JWKS_TIMEOUT"`
}

func (a *AuthFlags) Validate() error {
	switch a.Mode {
	case "jwks":
		if a.JWKSURL == "" {
			return errors.New("JWKS URL is required in jwks mode (--auth-jwks-url or PORTAL_AUTH_JWKS_URL)")
		}
	default:
		if len(a.Secret) < 32 {
			return errors.New("auth secret must be at least 32 bytes (--auth-secret or PORTAL_AUTH_SECRET)")
		}
	}
	return nil
}

func (a *AuthFlags) verifier() (auth.Verifier, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate auth flags: %w", err)
	}

	if a.Mode == "jwks" {
		keys := auth.NewKeyCache(a.JWKSURL, auth.NewCachingHTTPClient(a.Timeout))
		return auth.NewJWKSVerifier(keys, a.Issuer, a.Audience), nil
	}

	return auth.NewHMACVerifier([]byte(a.Secret), a.Issuer, a.Audience)
}
