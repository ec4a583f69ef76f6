package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/wolfeidau/clientportal/internal/access"
	"github.com/wolfeidau/clientportal/internal/models"
)

type ResolveCmd struct {
	Identity string `help:"identity subject to resolve" required:""`

	Store StoreFlags `embed:""`
}

type resolveOutput struct {
	Outcome    string             `json:"outcome"`
	Slug       string             `json:"slug,omitempty"`
	Workspaces []resolveWorkspace `json:"workspaces"`
}

type resolveWorkspace struct {
	Slug         string `json:"slug"`
	BusinessName string `json:"business_name"`
	Role         string `json:"role"`
}

func (c *ResolveCmd) Run(ctx context.Context, globals *Globals) error {
	if _, err := globals.setupLogger(); err != nil {
		return err
	}

	stores, err := c.Store.open(ctx)
	if err != nil {
		return err
	}
	defer stores.close()

	identity := &models.Identity{ID: c.Identity}
	resolver := access.NewResolver(stores.Memberships)

	outcome, err := resolver.Resolve(ctx, identity)
	if err != nil {
		return fmt.Errorf("failed to resolve access: %w", err)
	}

	accessible, err := resolver.ListAccessible(ctx, identity)
	if err != nil {
		return fmt.Errorf("failed to list workspaces: %w", err)
	}

	out := resolveOutput{
		Outcome:    outcome.Kind.String(),
		Slug:       outcome.Slug,
		Workspaces: make([]resolveWorkspace, 0, len(accessible)),
	}
	for _, a := range accessible {
		out.Workspaces = append(out.Workspaces, resolveWorkspace{
			Slug:         a.Client.Slug,
			BusinessName: a.Client.BusinessName,
			Role:         a.Role,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
