package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/wolfeidau/clientportal/internal/auth"
	"github.com/wolfeidau/clientportal/internal/models"
)

type TokenCmd struct {
	Subject string        `help:"identity subject" required:""`
	Email   string        `help:"identity email"`
	Name    string        `help:"identity display name"`
	Roles   []string      `help:"application roles (admin, editor)"`
	TTL     time.Duration `help:"token lifetime" default:"1h"`
	Secret  string        `help:"shared HS256 secret, at least 32 bytes" env:"PORTAL_AUTH_SECRET"`
	Issuer  string        `help:"token issuer" env:"PORTAL_AUTH_ISSUER"`
}

func (c *TokenCmd) Run(globals *Globals) error {
	if len(c.Secret) < 32 {
		return errors.New("secret must be at least 32 bytes (--secret or PORTAL_AUTH_SECRET)")
	}

	token, err := auth.IssueToken([]byte(c.Secret), c.Issuer, &models.Identity{
		ID:    c.Subject,
		Email: c.Email,
		Name:  c.Name,
		Roles: c.Roles,
	}, c.TTL)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	_, err = fmt.Fprintln(os.Stdout, token)
	return err
}
