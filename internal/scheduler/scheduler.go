// Package scheduler runs the daily standings sync on a cron schedule.
// It calls the same service entry point the HTTP triggers use; there is
// no scheduler-only code path.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"nhl_pool/sync/internal/standings"
)

// Scheduler manages the background standings refresh.
type Scheduler struct {
	service  *standings.Service
	schedule string
	cron     *cron.Cron
}

// NewScheduler creates a scheduler with the given cron expression.
func NewScheduler(service *standings.Service, schedule string) *Scheduler {
	return &Scheduler{
		service:  service,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start registers and starts the sync job.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		log.Info().Msg("Scheduled standings update triggered")
		if _, err := s.service.Update(ctx, nil, "scheduler"); err != nil {
			log.Error().Err(err).Msg("Scheduled standings update failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule standings update: %w", err)
	}

	s.cron.Start()
	log.Info().Str("schedule", s.schedule).Msg("Standings scheduler started")
	return nil
}

// Stop stops the scheduler, waiting for an in-flight run to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	log.Info().Msg("Standings scheduler stopped")
}
