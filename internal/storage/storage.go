// Package storage presents one query surface over two interchangeable
// relational backends: PostgreSQL (via the pgx stdlib driver) and SQLite
// (via modernc.org/sqlite). Callers always write PostgreSQL-style $N
// placeholders; the SQLite backend rewrites them transparently.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure Go sqlite driver
)

// Backend identifies which relational engine is active. The choice is
// made once from DATABASE_URL at startup and never varies mid-process.
type Backend int

const (
	BackendSQLite Backend = iota
	BackendPostgres
)

func (b Backend) String() string {
	if b == BackendPostgres {
		return "postgres"
	}
	return "sqlite"
}

// Row is a single result row keyed by column name.
type Row map[string]any

// Statement is one SQL statement with its bound parameters, for use in
// RunInTransaction.
type Statement struct {
	SQL  string
	Args []any
}

// Store is the uniform query surface over both backends.
type Store interface {
	// QueryAll runs a SELECT and returns every row.
	QueryAll(ctx context.Context, query string, args ...any) ([]Row, error)
	// QueryOne runs a SELECT and returns the first row, or nil when
	// there is no match.
	QueryOne(ctx context.Context, query string, args ...any) (Row, error)
	// Execute runs an INSERT/UPDATE/DELETE and returns the affected
	// row count.
	Execute(ctx context.Context, query string, args ...any) (int64, error)
	// RunInTransaction applies the statements all-or-nothing. On any
	// statement failure the whole batch is rolled back and the
	// original error is re-raised.
	RunInTransaction(ctx context.Context, stmts []Statement) error
	// Backend reports which engine this store talks to.
	Backend() Backend
	// Health checks connectivity.
	Health(ctx context.Context) error
	Close() error
}

// StorageError wraps any backend failure so callers can distinguish it
// from validation errors via errors.As.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// DetectBackend classifies a connection string. Postgres URLs are
// recognized by scheme; everything else is treated as a SQLite path.
func DetectBackend(databaseURL string) Backend {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return BackendPostgres
	}
	return BackendSQLite
}

// Open connects to the backend selected by databaseURL. sqlitePath is
// used when databaseURL does not name a Postgres database.
//
// A connection failure does not leave the caller without a Store: the
// returned Store is then a stub that rejects every operation with a
// descriptive StorageError, so the host process can start up and report
// the condition to its own callers instead of crashing.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	backend := DetectBackend(databaseURL)

	var (
		db  *sql.DB
		err error
	)
	switch backend {
	case BackendPostgres:
		db, err = sql.Open("pgx", databaseURL)
	default:
		path := sqlitePath
		if path == "" {
			path = "data/nhl_pool.db"
		}
		db, err = sql.Open("sqlite", path)
	}
	if err != nil {
		err = fmt.Errorf("failed to open %s database: %w", backend, err)
		return NewUnavailable(err), err
	}

	if backend == BackendPostgres {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	} else {
		// SQLite is a single-writer engine; one pooled connection
		// also keeps :memory: databases coherent across calls.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		err = fmt.Errorf("failed to ping %s database: %w", backend, err)
		return NewUnavailable(err), err
	}

	log.Info().
		Str("backend", backend.String()).
		Msg("Database connection established")

	return &sqlStore{db: db, backend: backend}, nil
}
