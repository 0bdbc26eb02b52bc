package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Versioned schema migrations, applied once at startup instead of
// probing columns at request time. Each migration runs inside a single
// transaction together with its schema_migrations bookkeeping row.

type migration struct {
	version  int
	name     string
	postgres []string
	sqlite   []string
}

func (m migration) statements(backend Backend) []string {
	if backend == BackendPostgres {
		return m.postgres
	}
	return m.sqlite
}

var migrations = []migration{
	{
		version: 1,
		name:    "base schema",
		postgres: []string{
			`CREATE TABLE IF NOT EXISTS standings (
				id SERIAL PRIMARY KEY,
				team TEXT NOT NULL,
				gp INTEGER NOT NULL DEFAULT 0,
				w INTEGER NOT NULL DEFAULT 0,
				l INTEGER NOT NULL DEFAULT 0,
				otl INTEGER NOT NULL DEFAULT 0,
				pts INTEGER NOT NULL DEFAULT 0,
				last_updated TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_standings_team ON standings (team)`,
			`CREATE TABLE IF NOT EXISTS predictions (
				id SERIAL PRIMARY KEY,
				user_id TEXT NOT NULL,
				predictions TEXT NOT NULL,
				submitted_at TEXT NOT NULL,
				last_updated TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_predictions_user ON predictions (user_id, last_updated)`,
			`CREATE TABLE IF NOT EXISTS config (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)`,
		},
		sqlite: []string{
			`CREATE TABLE IF NOT EXISTS standings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				team TEXT NOT NULL,
				gp INTEGER NOT NULL DEFAULT 0,
				w INTEGER NOT NULL DEFAULT 0,
				l INTEGER NOT NULL DEFAULT 0,
				otl INTEGER NOT NULL DEFAULT 0,
				pts INTEGER NOT NULL DEFAULT 0,
				last_updated TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_standings_team ON standings (team)`,
			`CREATE TABLE IF NOT EXISTS predictions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id TEXT NOT NULL,
				predictions TEXT NOT NULL,
				submitted_at TEXT NOT NULL,
				last_updated TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_predictions_user ON predictions (user_id, last_updated)`,
			`CREATE TABLE IF NOT EXISTS config (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)`,
		},
	},
}

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at TEXT NOT NULL
)`

// Migrate applies any pending migrations to the store.
func Migrate(ctx context.Context, store Store) error {
	if _, err := store.Execute(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		row, err := store.QueryOne(ctx,
			`SELECT version FROM schema_migrations WHERE version = $1`, m.version)
		if err != nil {
			return fmt.Errorf("failed to check migration %d: %w", m.version, err)
		}
		if row != nil {
			continue
		}

		stmts := make([]Statement, 0, len(m.statements(store.Backend()))+1)
		for _, sql := range m.statements(store.Backend()) {
			stmts = append(stmts, Statement{SQL: sql})
		}
		stmts = append(stmts, Statement{
			SQL:  `INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, $3)`,
			Args: []any{m.version, m.name, time.Now().UTC().Format(time.RFC3339)},
		})

		if err := store.RunInTransaction(ctx, stmts); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}

		log.Info().
			Int("version", m.version).
			Str("name", m.name).
			Msg("Migration applied")
	}

	return nil
}
