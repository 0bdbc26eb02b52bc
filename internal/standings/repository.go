// Package standings owns persistence of division standings: the
// idempotent per-team upsert engine and the ordered, de-duplicated
// read side.
package standings

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"nhl_pool/sync/internal/cache"
	"nhl_pool/sync/internal/metrics"
	"nhl_pool/sync/internal/models"
	"nhl_pool/sync/internal/storage"
)

const (
	cacheKeyCurrent     = "standings:current"
	cacheKeyLastUpdated = "standings:last_updated"
)

// Repository handles standings database operations
type Repository struct {
	store storage.Store
	cache *cache.RedisCache
}

// NewRepository creates a standings repository. cache may be nil.
func NewRepository(store storage.Store, c *cache.RedisCache) *Repository {
	return &Repository{store: store, cache: c}
}

// ApplyStandings upserts a batch of per-team records, keyed by team
// identity. The whole batch is validated before any write; each team's
// row is then an independent unit of work, so a cycle that fails
// partway leaves already-applied teams correctly updated and the rest
// unchanged. Re-applying the same batch only refreshes last_updated.
func (r *Repository) ApplyStandings(ctx context.Context, records []models.StandingRecord) (int, error) {
	if err := validateBatch(records); err != nil {
		return 0, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	updated := 0

	for _, rec := range records {
		existing, err := r.store.QueryOne(ctx,
			`SELECT team FROM standings WHERE team = $1`, rec.Team)
		if err != nil {
			return updated, err
		}

		if existing != nil {
			_, err = r.store.Execute(ctx,
				`UPDATE standings
				 SET gp = $1, w = $2, l = $3, otl = $4, pts = $5, last_updated = $6
				 WHERE team = $7`,
				rec.GamesPlayed, rec.Wins, rec.Losses, rec.OTLosses, rec.Points, now, rec.Team)
		} else {
			_, err = r.store.Execute(ctx,
				`INSERT INTO standings (team, gp, w, l, otl, pts, last_updated)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				rec.Team, rec.GamesPlayed, rec.Wins, rec.Losses, rec.OTLosses, rec.Points, now)
		}
		if err != nil {
			return updated, err
		}

		updated++
		metrics.StandingsRowsUpserted.Inc()
	}

	r.cache.Delete(ctx, cacheKeyCurrent, cacheKeyLastUpdated)

	log.Info().Int("updated", updated).Msg("Standings applied")
	return updated, nil
}

// validateBatch rejects a malformed batch before any write.
func validateBatch(records []models.StandingRecord) error {
	if len(records) == 0 {
		return models.NewValidationError("standings batch is empty")
	}

	for i, rec := range records {
		if rec.Team == "" {
			return models.NewValidationError(fmt.Sprintf("record %d has no team identity", i+1))
		}
		if rec.GamesPlayed < 0 || rec.Wins < 0 || rec.Losses < 0 || rec.OTLosses < 0 || rec.Points < 0 {
			return models.NewValidationError(fmt.Sprintf("record %d (%s) has a negative stat", i+1, rec.Team))
		}
	}

	return nil
}

// CurrentStandings returns the live standings ordered by points then
// wins. Legacy tables may hold duplicate rows per team; the first
// occurrence in sort order wins.
func (r *Repository) CurrentStandings(ctx context.Context) ([]models.StandingRecord, error) {
	var cached []models.StandingRecord
	if r.cache.GetJSON(ctx, cacheKeyCurrent, &cached) {
		return cached, nil
	}

	rows, err := r.store.QueryAll(ctx,
		`SELECT team, gp, w, l, otl, pts, last_updated
		 FROM standings
		 ORDER BY pts DESC, w DESC`)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rows))
	records := make([]models.StandingRecord, 0, len(rows))
	for _, row := range rows {
		team := row.String("team")
		if _, dup := seen[team]; dup {
			continue
		}
		seen[team] = struct{}{}

		records = append(records, models.StandingRecord{
			Team:        team,
			GamesPlayed: row.Int("gp"),
			Wins:        row.Int("w"),
			Losses:      row.Int("l"),
			OTLosses:    row.Int("otl"),
			Points:      row.Int("pts"),
			LastUpdated: row.String("last_updated"),
		})
	}

	r.cache.SetJSON(ctx, cacheKeyCurrent, records)
	return records, nil
}

// LastUpdated answers "when were standings last refreshed". Empty
// string when no standings have been stored yet.
func (r *Repository) LastUpdated(ctx context.Context) (string, error) {
	var cached string
	if r.cache.GetJSON(ctx, cacheKeyLastUpdated, &cached) {
		return cached, nil
	}

	row, err := r.store.QueryOne(ctx, `SELECT MAX(last_updated) AS last_updated FROM standings`)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", nil
	}

	ts := row.String("last_updated")
	if ts != "" {
		r.cache.SetJSON(ctx, cacheKeyLastUpdated, ts)
	}
	return ts, nil
}
