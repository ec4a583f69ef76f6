// Package invalidate tells dependent views that their cached rendering is stale.
//
// Signals are fire-and-forget: a Notifier never returns an error to the caller,
// failures are logged and counted.
package invalidate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/clientportal/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultTimeout bounds a single publish to an external broker.
const DefaultTimeout = 2 * time.Second

// Notifier publishes invalidation signals for the named views.
type Notifier interface {
	Invalidate(ctx context.Context, views ...string)
}

// AdminClientView is the view key of a client's admin page.
func AdminClientView(clientID uuid.UUID) string {
	return fmt.Sprintf("admin/clients/%s", clientID)
}

// PortalView is the view key of a client's portal workspace.
func PortalView(slug string) string {
	return fmt.Sprintf("portal/%s", slug)
}

// Message is the payload published to brokers.
type Message struct {
	Views []string  `json:"views"`
	At    time.Time `json:"at"`
}

func encode(views []string) (string, error) {
	data, err := json.Marshal(Message{Views: views, At: time.Now().UTC()})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Nop discards every signal.
type Nop struct{}

func (Nop) Invalidate(context.Context, ...string) {}

// Log writes every signal to the logger at debug level.
type Log struct{}

func (Log) Invalidate(ctx context.Context, views ...string) {
	if len(views) == 0 {
		return
	}
	log.Debug().Strs("views", views).Msg("Invalidate views")
}

// Multi fans a signal out to every notifier in order.
type Multi []Notifier

func (m Multi) Invalidate(ctx context.Context, views ...string) {
	for _, n := range m {
		n.Invalidate(ctx, views...)
	}
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, views ...string)

func (f Func) Invalidate(ctx context.Context, views ...string) {
	f(ctx, views...)
}

// record logs and counts the result of an external publish.
func record(ctx context.Context, backend string, views []string, err error) {
	m := telemetry.GetMetrics()
	attrs := metric.WithAttributes(attribute.String("backend", backend))

	if err != nil {
		m.InvalidationsFailed.Add(ctx, 1, attrs)
		log.Warn().Err(err).Str("backend", backend).Strs("views", views).Msg("Failed to publish invalidation")
		return
	}

	m.InvalidationsSent.Add(ctx, 1, attrs)
	log.Debug().Str("backend", backend).Strs("views", views).Msg("Published invalidation")
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}
