package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/clientportal/internal/server"
	"github.com/wolfeidau/clientportal/internal/store"
	memorystore "github.com/wolfeidau/clientportal/internal/store/memory"
	postgresstore "github.com/wolfeidau/clientportal/internal/store/postgres"
)

type StoreFlags struct {
	StoreType string             `help:"store type (memory or postgres)" default:"memory" env:"PORTAL_STORE_TYPE" enum:"memory,postgres"`
	Postgres  PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString     string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`
	ConnectTimeout int32  `help:"total seconds to keep retrying the initial connection" default:"30" env:"PORTAL_POSTGRES_CONNECT_TIMEOUT"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Store Configuration
	QueryTimeout int32 `help:"per-query timeout in seconds" default:"5" env:"PORTAL_POSTGRES_QUERY_TIMEOUT"`
	AutoMigrate  bool  `help:"run database migrations on startup" default:"false" env:"PORTAL_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	if s.MinConns > s.MaxConns {
		return fmt.Errorf("postgres min conns (%d) must not exceed max conns (%d)", s.MinConns, s.MaxConns)
	}
	return nil
}

// openedStores holds the stores plus the resources backing them.
type openedStores struct {
	store.Stores
	pinger server.Pinger
	close  func()
}

func (f *StoreFlags) open(ctx context.Context) (*openedStores, error) {
	switch f.StoreType {
	case "postgres":
		pool, err := f.Postgres.connect(ctx)
		if err != nil {
			return nil, err
		}

		if f.Postgres.AutoMigrate {
			if err := postgresstore.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}

		cfg := &postgresstore.StoreConfig{QueryTimeoutSeconds: f.Postgres.QueryTimeout}
		log.Info().Msg("Using PostgreSQL stores")

		return &openedStores{
			Stores: store.Stores{
				Clients:     postgresstore.NewClientStore(pool, cfg),
				Memberships: postgresstore.NewMembershipStore(pool, cfg),
				Documents:   postgresstore.NewDocumentStore(pool, cfg),
			},
			pinger: pool,
			close:  pool.Close,
		}, nil

	default:
		clients := memorystore.NewClientStore()
		log.Info().Msg("Using in-memory stores, data is lost on restart")

		return &openedStores{
			Stores: store.Stores{
				Clients:     clients,
				Memberships: memorystore.NewMembershipStore(clients),
				Documents:   memorystore.NewDocumentStore(),
			},
			close: func() {},
		}, nil
	}
}

func (s *PostgresStoreFlags) connect(ctx context.Context) (*pgxpool.Pool, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate postgres flags: %w", err)
	}

	pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: s.MaxConnLifetime,
		MaxConnIdleTime: s.MaxConnIdleTime,
		StartupTimeout:  s.ConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return pool, nil
}
