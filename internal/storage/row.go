package storage

import (
	"context"
	"strconv"
	"time"
)

// The two drivers hand back different Go types for the same column
// (pgx returns int64/string, sqlite may return []byte for text), so
// Row carries typed accessors that coerce instead of asserting.

// String returns the named column as a string, or "" when absent/null.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

// Int returns the named column as an int, or 0 when absent/null.
func (r Row) Int(col string) int {
	switch v := r[col].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	case []byte:
		n, _ := strconv.Atoi(string(v))
		return n
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

func contextWithHealthTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 2*time.Second)
}
