package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"nhl_pool/sync/internal/models"
)

// webAPIProvider reads the current NHL web API
// (api-web.nhle.com/v1/standings/now), which returns a flat standings
// array covering the whole league.
type webAPIProvider struct {
	url    string
	client *http.Client
}

func newWebAPIProvider(url string, client *http.Client) *webAPIProvider {
	return &webAPIProvider{url: url, client: client}
}

func (p *webAPIProvider) Name() string {
	return "nhl-web-api"
}

// webStandingsResponse mirrors the api-web.nhle.com response shape.
type webStandingsResponse struct {
	Standings []struct {
		TeamName struct {
			Default string `json:"default"`
		} `json:"teamName"`
		GamesPlayed int `json:"gamesPlayed"`
		Wins        int `json:"wins"`
		Losses      int `json:"losses"`
		OTLosses    int `json:"otLosses"`
		Points      int `json:"points"`
	} `json:"standings"`
}

func (p *webAPIProvider) Fetch(ctx context.Context) ([]models.StandingRecord, error) {
	body, err := getJSON(ctx, p.client, p.url)
	if err != nil {
		return nil, err
	}

	var resp webStandingsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal standings: %w", err)
	}
	if len(resp.Standings) == 0 {
		return nil, fmt.Errorf("response contains no standings")
	}

	var records []models.StandingRecord
	for _, s := range resp.Standings {
		name := s.TeamName.Default
		if _, ok := AtlanticTeams[name]; !ok {
			continue
		}
		records = append(records, models.StandingRecord{
			Team:        name,
			GamesPlayed: s.GamesPlayed,
			Wins:        s.Wins,
			Losses:      s.Losses,
			OTLosses:    s.OTLosses,
			Points:      s.Points,
		})
	}

	return records, nil
}
