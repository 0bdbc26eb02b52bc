package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"nhl_pool/sync/internal/metrics"
)

// sqlStore implements Store over a database/sql handle for either
// backend. The only per-backend behaviors are placeholder rewriting and
// pool sizing; everything else is shared.
type sqlStore struct {
	db      *sql.DB
	backend Backend
}

func (s *sqlStore) Backend() Backend {
	return s.backend
}

// bind rewrites $N placeholders for backends that do not accept them.
func (s *sqlStore) bind(query string) string {
	if s.backend == BackendSQLite {
		return rewritePlaceholders(query)
	}
	return query
}

func (s *sqlStore) QueryAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(query), args...)
	if err != nil {
		metrics.RecordDBQuery("query", "error")
		return nil, &StorageError{Op: "query", Err: err}
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		metrics.RecordDBQuery("query", "error")
		return nil, &StorageError{Op: "scan", Err: err}
	}

	metrics.RecordDBQuery("query", "success")
	return out, nil
}

func (s *sqlStore) QueryOne(ctx context.Context, query string, args ...any) (Row, error) {
	all, err := s.QueryAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (s *sqlStore) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.bind(query), args...)
	if err != nil {
		metrics.RecordDBQuery("execute", "error")
		return 0, &StorageError{Op: "execute", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		// Both supported drivers report affected rows; treat a
		// missing count as zero rather than failing the write.
		affected = 0
	}

	metrics.RecordDBQuery("execute", "success")
	return affected, nil
}

func (s *sqlStore) RunInTransaction(ctx context.Context, stmts []Statement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "begin", Err: err}
	}

	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, s.bind(stmt.SQL), stmt.Args...); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("Transaction rollback failed")
			}
			return &StorageError{
				Op:  "transaction",
				Err: fmt.Errorf("statement %d failed: %w", i+1, err),
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "commit", Err: err}
	}
	return nil
}

func (s *sqlStore) Health(ctx context.Context) error {
	ctx, cancel := contextWithHealthTimeout(ctx)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return &StorageError{Op: "health", Err: err}
	}
	return nil
}

func (s *sqlStore) Close() error {
	if err := s.db.Close(); err != nil {
		return &StorageError{Op: "close", Err: err}
	}
	log.Info().Msg("Database connection closed")
	return nil
}

// scanRows turns a generic result set into column-keyed rows.
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		targets := make([]any, len(cols))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}
