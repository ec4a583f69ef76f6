package postgres

import (
	"context"
	"time"
)

// StoreConfig holds settings shared by the PostgreSQL-backed stores.
// Pool configuration is handled separately via PoolConfig.
type StoreConfig struct {
	// QueryTimeoutSeconds bounds every query issued by a store.
	// Default: 5 seconds
	QueryTimeoutSeconds int32
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *StoreConfig) ApplyDefaults() {
	if c.QueryTimeoutSeconds <= 0 {
		c.QueryTimeoutSeconds = 5
	}
}

// queryTimeout returns the per-query deadline.
func (c StoreConfig) queryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

// withTimeout derives a context bounded by the configured query timeout.
func (c StoreConfig) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.queryTimeout())
}

func newStoreConfig(cfg *StoreConfig) StoreConfig {
	var c StoreConfig
	if cfg != nil {
		c = *cfg
	}
	c.ApplyDefaults()
	return c
}
