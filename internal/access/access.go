// Package access decides which client workspaces an identity may reach.
package access

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/clientportal/internal/models"
	"github.com/wolfeidau/clientportal/internal/store"
	"github.com/wolfeidau/clientportal/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrDenied is returned when the identity has no active membership for the requested client.
	ErrDenied = errors.New("access denied")

	// ErrNoIdentity is returned when an operation is called without an authenticated identity.
	ErrNoIdentity = errors.New("no authenticated identity")
)

// Kind classifies the result of Resolve.
type Kind int

const (
	// NoAccess means the identity has no usable active membership.
	NoAccess Kind = iota
	// SingleAccess means exactly one workspace is reachable, see Outcome.Slug.
	SingleAccess
	// MultiAccess means the caller should present a selection step.
	MultiAccess
)

func (k Kind) String() string {
	switch k {
	case NoAccess:
		return "none"
	case SingleAccess:
		return "single"
	case MultiAccess:
		return "multi"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Outcome is the result of Resolve. Slug is only set for SingleAccess.
type Outcome struct {
	Kind Kind
	Slug string
}

// Access is a verified grant to a single client workspace.
type Access struct {
	Role   string
	Client *models.Client
}

// Resolver answers access questions from the membership store. It holds no state
// of its own, every call reads fresh rows.
type Resolver struct {
	memberships store.MembershipStore
	metrics     *telemetry.Metrics
}

// NewResolver creates a resolver backed by the given membership store.
func NewResolver(memberships store.MembershipStore) *Resolver {
	return &Resolver{
		memberships: memberships,
		metrics:     telemetry.GetMetrics(),
	}
}

// Resolve classifies the identity's active memberships into an Outcome.
// Memberships whose client is missing or has no slug are ignored.
func (r *Resolver) Resolve(ctx context.Context, identity *models.Identity) (Outcome, error) {
	accessible, err := r.accessible(ctx, identity)
	if err != nil {
		return Outcome{}, err
	}

	var outcome Outcome
	switch len(accessible) {
	case 0:
		outcome = Outcome{Kind: NoAccess}
	case 1:
		outcome = Outcome{Kind: SingleAccess, Slug: accessible[0].Client.Slug}
	default:
		outcome = Outcome{Kind: MultiAccess}
	}

	r.metrics.AccessResolutions.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome.Kind.String())))

	log.Debug().
		Str("identity_id", identity.ID).
		Stringer("outcome", outcome.Kind).
		Str("slug", outcome.Slug).
		Msg("Resolved access")

	return outcome, nil
}

// VerifyClientAccess checks that the identity has an active membership for the client
// with exactly this slug. It returns ErrDenied otherwise, including when no such client
// exists, so callers cannot probe for slugs.
func (r *Resolver) VerifyClientAccess(ctx context.Context, identity *models.Identity, slug string) (*Access, error) {
	if slug == "" {
		return nil, ErrDenied
	}

	accessible, err := r.accessible(ctx, identity)
	if err != nil {
		return nil, err
	}

	for _, a := range accessible {
		if a.Client.Slug == slug {
			return a, nil
		}
	}

	r.metrics.AccessDenials.Add(ctx, 1)

	log.Info().
		Str("identity_id", identity.ID).
		Str("slug", slug).
		Msg("Client access denied")

	return nil, ErrDenied
}

// ListAccessible returns every workspace the identity may enter, ordered by business name.
func (r *Resolver) ListAccessible(ctx context.Context, identity *models.Identity) ([]*Access, error) {
	accessible, err := r.accessible(ctx, identity)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(accessible, func(a, b *Access) int {
		return cmp.Or(
			cmp.Compare(a.Client.BusinessName, b.Client.BusinessName),
			cmp.Compare(a.Client.Slug, b.Client.Slug),
		)
	})

	return accessible, nil
}

// accessible loads active memberships and drops the ones that cannot be routed to.
func (r *Resolver) accessible(ctx context.Context, identity *models.Identity) ([]*Access, error) {
	if identity == nil || identity.ID == "" {
		return nil, ErrNoIdentity
	}

	memberships, err := r.memberships.ListActiveByIdentity(ctx, identity.ID)
	if err != nil {
		return nil, upstream(fmt.Errorf("failed to list memberships: %w", err))
	}

	result := make([]*Access, 0, len(memberships))
	for _, m := range memberships {
		if !m.IsActive {
			continue
		}
		if !m.Client.HasSlug() {
			log.Warn().
				Str("identity_id", identity.ID).
				Str("membership_id", m.MembershipID.String()).
				Str("client_id", m.ClientID.String()).
				Msg("Skipping membership with unresolvable client")
			continue
		}
		result = append(result, &Access{Role: m.Role, Client: m.Client})
	}

	return result, nil
}

// upstream ensures err classifies as store.ErrUpstream.
func upstream(err error) error {
	if errors.Is(err, store.ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: %w", store.ErrUpstream, err)
}
