package standings

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"nhl_pool/sync/internal/metrics"
	"nhl_pool/sync/internal/models"
)

// Fetcher acquires a normalized standings batch from external sources.
type Fetcher interface {
	FetchStandings(ctx context.Context) ([]models.StandingRecord, error)
}

// Service orchestrates one standings sync cycle: acquire (unless the
// caller supplied a batch), then apply. It is the single entry point
// shared by the cron endpoint, the admin trigger, the automation
// ingest, and the in-process scheduler.
type Service struct {
	repo    *Repository
	fetcher Fetcher
}

// NewService creates the sync service.
func NewService(repo *Repository, fetcher Fetcher) *Service {
	return &Service{repo: repo, fetcher: fetcher}
}

// Update applies records to storage. When records is nil the service
// fetches from the provider chain first. trigger labels the caller for
// logs and metrics ("cron", "admin", "ingest", "scheduler").
func (s *Service) Update(ctx context.Context, records []models.StandingRecord, trigger string) (*models.UpdateResult, error) {
	start := time.Now()
	log.Info().Str("trigger", trigger).Msg("Starting standings update")

	if records == nil {
		fetched, err := s.fetcher.FetchStandings(ctx)
		if err != nil {
			metrics.RecordSync(trigger, "error", time.Since(start).Seconds())
			return nil, err
		}
		records = fetched
	}

	updated, err := s.repo.ApplyStandings(ctx, records)
	if err != nil {
		metrics.RecordSync(trigger, "error", time.Since(start).Seconds())
		return nil, err
	}

	duration := time.Since(start)
	metrics.RecordSync(trigger, "success", duration.Seconds())
	log.Info().
		Str("trigger", trigger).
		Int("updated", updated).
		Dur("duration", duration).
		Msg("Standings update completed")

	return &models.UpdateResult{
		Updated:   updated,
		Duration:  fmt.Sprintf("%.2fs", duration.Seconds()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
