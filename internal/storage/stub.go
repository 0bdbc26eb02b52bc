package storage

import (
	"context"
	"fmt"
)

// unavailableStore rejects every operation with a descriptive error.
// It stands in for a real Store when the connection could not be
// established at startup, so the rest of the system keeps running and
// reports the condition per request instead of failing silently.
type unavailableStore struct {
	cause error
}

// NewUnavailable builds the rejecting stub carrying the original
// connection failure.
func NewUnavailable(cause error) Store {
	return &unavailableStore{cause: cause}
}

func (s *unavailableStore) err(op string) error {
	return &StorageError{Op: op, Err: fmt.Errorf("storage unavailable: %w", s.cause)}
}

func (s *unavailableStore) QueryAll(context.Context, string, ...any) ([]Row, error) {
	return nil, s.err("query")
}

func (s *unavailableStore) QueryOne(context.Context, string, ...any) (Row, error) {
	return nil, s.err("query")
}

func (s *unavailableStore) Execute(context.Context, string, ...any) (int64, error) {
	return 0, s.err("execute")
}

func (s *unavailableStore) RunInTransaction(context.Context, []Statement) error {
	return s.err("transaction")
}

func (s *unavailableStore) Backend() Backend {
	return DetectBackend("")
}

func (s *unavailableStore) Health(context.Context) error {
	return s.err("health")
}

func (s *unavailableStore) Close() error {
	return nil
}
