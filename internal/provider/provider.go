// Package provider acquires normalized division standings from a
// prioritized list of external NHL data sources. No single provider is
// reachable from every deployment network, so the fetcher falls back
// from one to the next until it has a complete division.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"nhl_pool/sync/internal/metrics"
	"nhl_pool/sync/internal/models"
)

// AtlanticTeams is the allow-list of team identities this pool tracks.
// Provider responses are filtered down to exactly these teams.
var AtlanticTeams = map[string]struct{}{
	"Boston Bruins":       {},
	"Buffalo Sabres":      {},
	"Detroit Red Wings":   {},
	"Florida Panthers":    {},
	"Montreal Canadiens":  {},
	"Ottawa Senators":     {},
	"Tampa Bay Lightning": {},
	"Toronto Maple Leafs": {},
}

// Provider is one external standings source with its own response shape.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) ([]models.StandingRecord, error)
}

// AcquisitionError reports that every provider was exhausted without a
// complete result. The last underlying cause is retained for
// diagnostics.
type AcquisitionError struct {
	Attempted int
	LastErr   error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("all %d standings providers failed: %v", e.Attempted, e.LastErr)
}

func (e *AcquisitionError) Unwrap() error {
	return e.LastErr
}

// Fetcher tries each configured provider in priority order and accepts
// the first complete, normalized result.
type Fetcher struct {
	providers []Provider
	expected  int
	timeout   time.Duration
}

// Config holds fetcher construction parameters.
type Config struct {
	NHLWebAPIURL string
	StatsAPIURL  string
	Timeout      time.Duration
}

// NewFetcher builds the default provider chain:
//  1. the current NHL web API,
//  2. the legacy stats API (with per-call retry, it is known flaky),
//  3. the stats API through two public CORS proxies.
func NewFetcher(cfg Config) *Fetcher {
	client := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 4,
		},
	}

	providers := []Provider{
		newWebAPIProvider(cfg.NHLWebAPIURL, client),
		newStatsAPIProvider("statsapi", cfg.StatsAPIURL, client, 3),
		newStatsAPIProvider("corsproxy", corsProxyURL(cfg.StatsAPIURL), client, 0),
		newStatsAPIProvider("allorigins", allOriginsURL(cfg.StatsAPIURL), client, 0),
	}

	return &Fetcher{
		providers: providers,
		expected:  models.AtlanticTeamCount,
		timeout:   cfg.Timeout,
	}
}

// NewFetcherWithProviders builds a fetcher over an explicit provider
// list. Used by tests and by deployments with custom mirrors.
func NewFetcherWithProviders(timeout time.Duration, expected int, providers ...Provider) *Fetcher {
	return &Fetcher{providers: providers, expected: expected, timeout: timeout}
}

// FetchStandings returns a complete normalized division, or an
// AcquisitionError when every source is exhausted. A provider returning
// fewer than the expected team count (including zero) is a provider
// failure, not a partial success.
func (f *Fetcher) FetchStandings(ctx context.Context) ([]models.StandingRecord, error) {
	start := time.Now()
	defer func() {
		metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for _, p := range f.providers {
		// A dead parent context means the caller is gone; stop instead
		// of cycling through the remaining providers.
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}

		callCtx, cancel := context.WithTimeout(ctx, f.timeout)
		records, err := p.Fetch(callCtx)
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("provider %s: %w", p.Name(), err)
			metrics.RecordProviderAttempt(p.Name(), "error")
			log.Warn().
				Err(err).
				Str("provider", p.Name()).
				Msg("Standings provider failed, trying next")
			continue
		}

		if len(records) < f.expected {
			lastErr = fmt.Errorf("provider %s: incomplete standings: got %d of %d teams",
				p.Name(), len(records), f.expected)
			metrics.RecordProviderAttempt(p.Name(), "incomplete")
			log.Warn().
				Str("provider", p.Name()).
				Int("got", len(records)).
				Int("expected", f.expected).
				Msg("Incomplete standings, trying next provider")
			continue
		}

		metrics.RecordProviderAttempt(p.Name(), "success")
		log.Info().
			Str("provider", p.Name()).
			Int("teams", len(records)).
			Msg("Standings fetched")
		return records, nil
	}

	return nil, &AcquisitionError{Attempted: len(f.providers), LastErr: lastErr}
}
