package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wolfeidau/clientportal/internal/store"
)

// Constraint names from migrations/1_initial_schema.sql.
const (
	constraintClientsSlug         = "clients_slug_key"
	constraintDocumentsClientType = "client_documents_client_doc_type_key"
	constraintMembershipsClient   = "portal_users_client_id_fkey"
	constraintDocumentsClient     = "client_documents_client_id_fkey"
)

// mapPostgresError maps PostgreSQL errors to store sentinel errors.
// Anything that is not a recognised constraint violation is reported as store.ErrUpstream.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		// Network failures, context deadlines and pool exhaustion land here.
		return fmt.Errorf("%w: %w", store.ErrUpstream, err)
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		switch pgErr.ConstraintName {
		case constraintClientsSlug:
			return store.ErrClientSlugTaken
		case constraintDocumentsClientType:
			return store.ErrDocumentConflict
		}
		return fmt.Errorf("unique constraint violation: %s: %w", pgErr.ConstraintName, store.ErrConflict)

	case pgerrcode.ForeignKeyViolation:
		switch pgErr.ConstraintName {
		case constraintMembershipsClient, constraintDocumentsClient:
			return store.ErrClientNotFound
		}
		return fmt.Errorf("%w: %s", store.ErrNotFound, pgErr.Detail)

	case pgerrcode.CheckViolation:
		return fmt.Errorf("%w: check constraint violation: %s: %w", store.ErrUpstream, pgErr.ConstraintName, err)

	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return fmt.Errorf("%w: transaction conflict: %w", store.ErrUpstream, err)

	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.CannotConnectNow,
		pgerrcode.SQLClientUnableToEstablishSQLConnection:
		return fmt.Errorf("%w: database connection error: %w", store.ErrUpstream, err)

	case pgerrcode.AdminShutdown,
		pgerrcode.CrashShutdown:
		return fmt.Errorf("%w: database server unavailable: %w", store.ErrUpstream, err)

	case pgerrcode.QueryCanceled:
		return fmt.Errorf("%w: query canceled: %w", store.ErrUpstream, err)

	default:
		return fmt.Errorf("%w: postgres error [%s]: %s (detail: %s, hint: %s): %w",
			store.ErrUpstream, pgErr.Code, pgErr.Message, pgErr.Detail, pgErr.Hint, err)
	}
}
