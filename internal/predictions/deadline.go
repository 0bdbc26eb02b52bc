package predictions

import (
	"context"
	"fmt"
	"time"
)

// DeadlineStatus describes the prediction window for API consumers.
type DeadlineStatus struct {
	Deadline      string `json:"deadline"`
	IsActive      bool   `json:"isActive"`
	TimeRemaining int64  `json:"timeRemaining"`
	CurrentTime   string `json:"currentTime"`
}

// Deadline reads the configured submission deadline from the config
// table. A missing or unparsable deadline is a configuration problem.
func (r *Repository) Deadline(ctx context.Context) (time.Time, error) {
	row, err := r.store.QueryOne(ctx,
		`SELECT value FROM config WHERE key = $1`, "deadline")
	if err != nil {
		return time.Time{}, err
	}
	if row == nil {
		return time.Time{}, fmt.Errorf("deadline not configured")
	}

	deadline, err := time.Parse(time.RFC3339, row.String("value"))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline value: %w", err)
	}
	return deadline, nil
}

// DeadlineOpen reports whether predictions may still be submitted.
func (r *Repository) DeadlineOpen(ctx context.Context) (bool, error) {
	deadline, err := r.Deadline(ctx)
	if err != nil {
		return false, err
	}
	return time.Now().Before(deadline), nil
}

// DeadlineStatus builds the deadline payload served to clients.
func (r *Repository) DeadlineStatus(ctx context.Context) (*DeadlineStatus, error) {
	deadline, err := r.Deadline(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	remaining := deadline.Sub(now).Milliseconds()
	if remaining < 0 {
		remaining = 0
	}

	return &DeadlineStatus{
		Deadline:      deadline.UTC().Format(time.RFC3339),
		IsActive:      now.Before(deadline),
		TimeRemaining: remaining,
		CurrentTime:   now.Format(time.RFC3339),
	}, nil
}
