package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"nhl_pool/sync/internal/models"
)

// statsAPIProvider reads the legacy NHL stats API shape
// (records -> teamRecords), either directly or through a CORS proxy.
// The direct endpoint is transiently flaky from some networks, so it
// gets a bounded exponential backoff; the proxied variants are
// one-shot, the fetcher's provider-to-provider fallback covers them.
type statsAPIProvider struct {
	name       string
	url        string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
}

func newStatsAPIProvider(name, url string, client *http.Client, maxRetries int) *statsAPIProvider {
	return &statsAPIProvider{
		name:       name,
		url:        url,
		client:     client,
		maxRetries: maxRetries,
		retryDelay: time.Second,
	}
}

func (p *statsAPIProvider) Name() string {
	return p.name
}

// statsAPIResponse mirrors the statsapi.web.nhl.com response shape:
// one record per division, each carrying its teamRecords.
type statsAPIResponse struct {
	Records []struct {
		TeamRecords []struct {
			Team struct {
				Name string `json:"name"`
			} `json:"team"`
			LeagueRecord struct {
				Wins   int `json:"wins"`
				Losses int `json:"losses"`
				OT     int `json:"ot"`
			} `json:"leagueRecord"`
			GamesPlayed int `json:"gamesPlayed"`
			Points      int `json:"points"`
		} `json:"teamRecords"`
	} `json:"records"`
}

func (p *statsAPIProvider) Fetch(ctx context.Context) ([]models.StandingRecord, error) {
	var (
		body    []byte
		lastErr error
	)

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := p.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("provider", p.name).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying provider after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		var err error
		body, err = getJSON(ctx, p.client, p.url)
		if err == nil {
			lastErr = nil
			break
		}

		lastErr = err
		if !isRetryable(err) || attempt == p.maxRetries {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}

	var resp statsAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal standings: %w", err)
	}
	if len(resp.Records) == 0 {
		return nil, fmt.Errorf("response contains no records")
	}

	var records []models.StandingRecord
	for _, record := range resp.Records {
		for _, tr := range record.TeamRecords {
			name := tr.Team.Name
			if _, ok := AtlanticTeams[name]; !ok {
				continue
			}

			gp := tr.GamesPlayed
			if gp == 0 {
				gp = tr.LeagueRecord.Wins + tr.LeagueRecord.Losses + tr.LeagueRecord.OT
			}

			records = append(records, models.StandingRecord{
				Team:        name,
				GamesPlayed: gp,
				Wins:        tr.LeagueRecord.Wins,
				Losses:      tr.LeagueRecord.Losses,
				OTLosses:    tr.LeagueRecord.OT,
				Points:      tr.Points,
			})
		}
	}

	return records, nil
}

// corsProxyURL wraps a target URL in the corsproxy.io relay.
func corsProxyURL(target string) string {
	return "https://corsproxy.io/?" + url.QueryEscape(target)
}

// allOriginsURL wraps a target URL in the allorigins raw relay.
func allOriginsURL(target string) string {
	return "https://api.allorigins.win/raw?url=" + url.QueryEscape(target)
}
