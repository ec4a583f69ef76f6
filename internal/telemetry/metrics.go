package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/clientportal"
)

// Metrics holds the OpenTelemetry instruments used by the portal.
type Metrics struct {
	// Access resolution
	AccessResolutions metric.Int64Counter
	AccessDenials     metric.Int64Counter

	// Document provisioning
	DocumentsProvisioned metric.Int64Counter
	ProvisionConflicts   metric.Int64Counter
	DocumentUpserts      metric.Int64Counter

	// Cache invalidation
	InvalidationsSent   metric.Int64Counter
	InvalidationsFailed metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary.
// Instruments bind to whichever meter provider is global at first call.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.AccessResolutions, _ = meter.Int64Counter(
		"portal.access.resolutions",
		metric.WithDescription("Access resolutions by outcome"),
		metric.WithUnit("{resolution}"),
	)

	m.AccessDenials, _ = meter.Int64Counter(
		"portal.access.denials",
		metric.WithDescription("Workspace entries denied by access verification"),
		metric.WithUnit("{denial}"),
	)

	m.DocumentsProvisioned, _ = meter.Int64Counter(
		"portal.documents.provisioned",
		metric.WithDescription("Default documents inserted by provisioning"),
		metric.WithUnit("{document}"),
	)

	m.ProvisionConflicts, _ = meter.Int64Counter(
		"portal.documents.provision_conflicts",
		metric.WithDescription("Provisioning batches rejected by a concurrent insert"),
		metric.WithUnit("{conflict}"),
	)

	m.DocumentUpserts, _ = meter.Int64Counter(
		"portal.documents.upserts",
		metric.WithDescription("Document replacements"),
		metric.WithUnit("{document}"),
	)

	m.InvalidationsSent, _ = meter.Int64Counter(
		"portal.invalidations.sent",
		metric.WithDescription("Cache invalidation signals published"),
		metric.WithUnit("{signal}"),
	)

	m.InvalidationsFailed, _ = meter.Int64Counter(
		"portal.invalidations.failed",
		metric.WithDescription("Cache invalidation signals that failed to publish"),
		metric.WithUnit("{signal}"),
	)

	return m
}
