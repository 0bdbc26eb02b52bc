// Package predictions stores user prediction sets. Saves are
// append-only timestamped rows; only the most recent row per user is
// authoritative. Saves close when the pool deadline passes.
package predictions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"nhl_pool/sync/internal/models"
	"nhl_pool/sync/internal/storage"
)

// ErrDeadlinePassed rejects saves after the prediction window closes.
var ErrDeadlinePassed = fmt.Errorf("deadline has passed")

// Repository handles prediction database operations
type Repository struct {
	store storage.Store
}

// NewRepository creates a predictions repository.
func NewRepository(store storage.Store) *Repository {
	return &Repository{store: store}
}

// ValidatePicks enforces the prediction-set invariants: exactly one
// pick per division team, unique teams, and ranks forming a
// permutation of 1..8.
func ValidatePicks(picks []models.Pick) error {
	if len(picks) != models.AtlanticTeamCount {
		return models.NewValidationError(
			fmt.Sprintf("expected %d picks, got %d", models.AtlanticTeamCount, len(picks)))
	}

	teams := make(map[string]struct{}, len(picks))
	ranks := make(map[int]struct{}, len(picks))
	for _, p := range picks {
		if p.Team == "" {
			return models.NewValidationError("pick has no team identity")
		}
		if _, dup := teams[p.Team]; dup {
			return models.NewValidationError("duplicate team: " + p.Team)
		}
		teams[p.Team] = struct{}{}

		if p.Rank < 1 || p.Rank > models.AtlanticTeamCount {
			return models.NewValidationError(fmt.Sprintf("rank %d out of range", p.Rank))
		}
		if _, dup := ranks[p.Rank]; dup {
			return models.NewValidationError(fmt.Sprintf("duplicate rank: %d", p.Rank))
		}
		ranks[p.Rank] = struct{}{}
	}

	return nil
}

// Save validates and stores a prediction set for userID, subject to the
// deadline. Each save inserts a new row; Latest picks the newest.
func (r *Repository) Save(ctx context.Context, userID string, picks []models.Pick) (string, error) {
	if userID == "" {
		return "", models.NewValidationError("missing user id")
	}
	if err := ValidatePicks(picks); err != nil {
		return "", err
	}

	open, err := r.DeadlineOpen(ctx)
	if err != nil {
		return "", err
	}
	if !open {
		return "", ErrDeadlinePassed
	}

	payload, err := json.Marshal(picks)
	if err != nil {
		return "", fmt.Errorf("failed to marshal picks: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = r.store.Execute(ctx,
		`INSERT INTO predictions (user_id, predictions, submitted_at, last_updated)
		 VALUES ($1, $2, $3, $4)`,
		userID, string(payload), now, now)
	if err != nil {
		return "", err
	}

	log.Info().Str("user_id", userID).Msg("Prediction saved")
	return now, nil
}

// Latest returns the authoritative (most recent) prediction set for
// userID, or nil when the user has never submitted.
func (r *Repository) Latest(ctx context.Context, userID string) (*models.PredictionSet, error) {
	row, err := r.store.QueryOne(ctx,
		`SELECT user_id, predictions, submitted_at, last_updated
		 FROM predictions
		 WHERE user_id = $1
		 ORDER BY last_updated DESC, id DESC
		 LIMIT 1`, userID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return rowToSet(row)
}

// All returns the latest prediction set per user, the join input for
// leaderboard consumers.
func (r *Repository) All(ctx context.Context) ([]models.PredictionSet, error) {
	rows, err := r.store.QueryAll(ctx,
		`SELECT user_id, predictions, submitted_at, last_updated
		 FROM predictions
		 ORDER BY last_updated DESC, id DESC`)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	sets := make([]models.PredictionSet, 0, len(rows))
	for _, row := range rows {
		userID := row.String("user_id")
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		set, err := rowToSet(row)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Skipping corrupt prediction row")
			continue
		}
		sets = append(sets, *set)
	}

	return sets, nil
}

func rowToSet(row storage.Row) (*models.PredictionSet, error) {
	var picks []models.Pick
	if err := json.Unmarshal([]byte(row.String("predictions")), &picks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal picks: %w", err)
	}

	return &models.PredictionSet{
		UserID:      row.String("user_id"),
		Picks:       picks,
		SubmittedAt: row.String("submitted_at"),
		LastUpdated: row.String("last_updated"),
	}, nil
}
