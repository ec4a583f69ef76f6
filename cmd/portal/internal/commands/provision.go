package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/clientportal/internal/documents"
)

type ProvisionCmd struct {
	ClientSlug string `help:"slug of the client to provision" required:""`

	Store  StoreFlags  `embed:""`
	Notify NotifyFlags `embed:"" prefix:"notify-"`
}

func (c *ProvisionCmd) Run(ctx context.Context, globals *Globals) error {
	log, err := globals.setupLogger()
	if err != nil {
		return err
	}

	notifier, closeNotifier, err := c.Notify.notifier(ctx)
	if err != nil {
		return err
	}
	defer closeNotifier()

	stores, err := c.Store.open(ctx)
	if err != nil {
		return err
	}
	defer stores.close()

	client, err := stores.Clients.GetBySlug(ctx, c.ClientSlug)
	if err != nil {
		return fmt.Errorf("failed to find client %q: %w", c.ClientSlug, err)
	}

	provisioner := documents.NewProvisioner(stores.Clients, stores.Documents, notifier)
	docs, err := provisioner.EnsureAll(ctx, client.ClientID)
	if err != nil {
		return fmt.Errorf("failed to provision documents: %w", err)
	}

	for _, doc := range docs {
		log.Info().
			Str("client", client.Slug).
			Str("doc_type", doc.DocType.String()).
			Time("updated_at", doc.UpdatedAt).
			Msg("Document ready")
	}

	return nil
}
