package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nhl_pool/sync/internal/auth"
	"nhl_pool/sync/internal/models"
	"nhl_pool/sync/internal/predictions"
	"nhl_pool/sync/internal/provider"
	"nhl_pool/sync/internal/standings"
	"nhl_pool/sync/internal/storage"
)

const (
	testCronSecret    = "cron-secret"
	testAdminPassword = "admin-password"
	testIngestSecret  = "ingest-secret"
)

// spyFetcher counts calls so tests can prove no fetch happens before
// authorization succeeds.
type spyFetcher struct {
	calls   int
	records []models.StandingRecord
	err     error
}

func (f *spyFetcher) FetchStandings(ctx context.Context) ([]models.StandingRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func atlanticBatch() []models.StandingRecord {
	teams := []string{
		"Boston Bruins", "Buffalo Sabres", "Detroit Red Wings", "Florida Panthers",
		"Montreal Canadiens", "Ottawa Senators", "Tampa Bay Lightning", "Toronto Maple Leafs",
	}
	records := make([]models.StandingRecord, len(teams))
	for i, team := range teams {
		records[i] = models.StandingRecord{
			Team:        team,
			GamesPlayed: 20,
			Wins:        15 - i,
			Losses:      3 + i,
			OTLosses:    2,
			Points:      (15 - i) * 2,
		}
	}
	return records
}

type testEnv struct {
	handler http.Handler
	store   storage.Store
	fetcher *spyFetcher
}

func setupTestServer(t *testing.T) *testEnv {
	ctx := context.Background()

	store, err := storage.Open(ctx, "", ":memory:")
	require.NoError(t, err, "Should open in-memory store")
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, storage.Migrate(ctx, store))

	fetcher := &spyFetcher{records: atlanticBatch()}
	repo := standings.NewRepository(store, nil)
	service := standings.NewService(repo, fetcher)
	preds := predictions.NewRepository(store)
	gate := auth.NewGate(testCronSecret, testAdminPassword, testIngestSecret)

	srv := New(gate, service, repo, preds)
	return &testEnv{handler: srv.Routes(), store: store, fetcher: fetcher}
}

func (e *testEnv) request(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) standingsRowCount(t *testing.T) int {
	t.Helper()
	rows, err := e.store.QueryAll(context.Background(), `SELECT id FROM standings`)
	require.NoError(t, err)
	return len(rows)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) updateEnvelope {
	t.Helper()
	var env updateEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestCronUpdateAuthorized(t *testing.T) {
	env := setupTestServer(t)

	rec := env.request(t, http.MethodGet, "/api/cron/standings", nil,
		map[string]string{"Authorization": "Bearer " + testCronSecret})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	envl := decodeEnvelope(t, rec)
	assert.True(t, envl.Success)
	assert.Equal(t, models.AtlanticTeamCount, envl.Updated)
	assert.NotEmpty(t, envl.Timestamp)
	assert.Equal(t, 1, env.fetcher.calls, "Cron trigger should fetch from providers")
	assert.Equal(t, models.AtlanticTeamCount, env.standingsRowCount(t))
}

func TestCronUpdateUnauthorized(t *testing.T) {
	env := setupTestServer(t)

	rec := env.request(t, http.MethodGet, "/api/cron/standings", nil,
		map[string]string{"Authorization": "Bearer wrong"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	envl := decodeEnvelope(t, rec)
	assert.False(t, envl.Success)
	assert.NotEmpty(t, envl.Error)

	assert.Zero(t, env.fetcher.calls, "No fetch may happen before authorization")
	assert.Zero(t, env.standingsRowCount(t), "No write may happen before authorization")
}

func TestCronUpdateMisconfigured(t *testing.T) {
	env := setupTestServer(t)

	// Rebuild with an empty cron secret.
	repo := standings.NewRepository(env.store, nil)
	service := standings.NewService(repo, env.fetcher)
	srv := New(auth.NewGate("", testAdminPassword, testIngestSecret),
		service, repo, predictions.NewRepository(env.store))
	env.handler = srv.Routes()

	rec := env.request(t, http.MethodGet, "/api/cron/standings", nil,
		map[string]string{"Authorization": "Bearer " + testCronSecret})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code,
		"Missing server credential is an operator problem, not a caller problem")
	assert.Zero(t, env.fetcher.calls)
}

func TestAdminUpdateHeaderAuth(t *testing.T) {
	env := setupTestServer(t)

	rec := env.request(t, http.MethodPost, "/api/standings/update-now", nil,
		map[string]string{"X-Admin-Password": testAdminPassword})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, env.fetcher.calls, "Admin trigger without a body fetches")
	assert.Equal(t, models.AtlanticTeamCount, env.standingsRowCount(t))
}

func TestAdminUpdateBodyPasswordAndInlineStandings(t *testing.T) {
	env := setupTestServer(t)

	body := map[string]any{
		"password":  testAdminPassword,
		"standings": atlanticBatch(),
	}
	rec := env.request(t, http.MethodPost, "/api/standings/update-now", body, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Zero(t, env.fetcher.calls, "A supplied batch bypasses the provider chain")
	assert.Equal(t, models.AtlanticTeamCount, env.standingsRowCount(t))
}

func TestAdminUpdateWrongPassword(t *testing.T) {
	env := setupTestServer(t)

	rec := env.request(t, http.MethodPost, "/api/standings/update-now",
		map[string]any{"password": "wrong"}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, env.fetcher.calls)
	assert.Zero(t, env.standingsRowCount(t))
}

func TestIngestRequiresBody(t *testing.T) {
	env := setupTestServer(t)

	rec := env.request(t, http.MethodPost, "/api/standings/ingest", nil,
		map[string]string{"Authorization": "Bearer " + testIngestSecret})

	assert.Equal(t, http.StatusBadRequest, rec.Code,
		"Ingest has no fetch path; an empty body is invalid")
	assert.Zero(t, env.fetcher.calls)
}

func TestIngestAppliesBatch(t *testing.T) {
	env := setupTestServer(t)

	rec := env.request(t, http.MethodPost, "/api/standings/ingest",
		map[string]any{"standings": atlanticBatch()},
		map[string]string{"Authorization": "Bearer " + testIngestSecret})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	envl := decodeEnvelope(t, rec)
	assert.True(t, envl.Success)
	assert.Equal(t, models.AtlanticTeamCount, envl.Updated)
	assert.Zero(t, env.fetcher.calls, "Ingest never fetches server-side")
}

func TestIngestRejectsCronSecret(t *testing.T) {
	env := setupTestServer(t)

	rec := env.request(t, http.MethodPost, "/api/standings/ingest",
		map[string]any{"standings": atlanticBatch()},
		map[string]string{"Authorization": "Bearer " + testCronSecret})

	assert.Equal(t, http.StatusUnauthorized, rec.Code,
		"Cron and ingest secrets are not interchangeable")
	assert.Zero(t, env.standingsRowCount(t))
}

func TestAcquisitionFailureMapsToBadGateway(t *testing.T) {
	env := setupTestServer(t)
	env.fetcher.err = &provider.AcquisitionError{Attempted: 4, LastErr: fmt.Errorf("boom")}

	rec := env.request(t, http.MethodGet, "/api/cron/standings", nil,
		map[string]string{"Authorization": "Bearer " + testCronSecret})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	envl := decodeEnvelope(t, rec)
	assert.False(t, envl.Success)
	assert.Contains(t, envl.Error, "boom")
	assert.Zero(t, env.standingsRowCount(t))
}

func TestCurrentStandingsOrdered(t *testing.T) {
	env := setupTestServer(t)

	rec := env.request(t, http.MethodPost, "/api/standings/ingest",
		map[string]any{"standings": atlanticBatch()},
		map[string]string{"Authorization": "Bearer " + testIngestSecret})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/standings", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var records []models.StandingRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, models.AtlanticTeamCount)
	assert.Equal(t, "Boston Bruins", records[0].Team, "Highest points first")
	for i := 1; i < len(records); i++ {
		assert.GreaterOrEqual(t, records[i-1].Points, records[i].Points)
	}
}

func TestLastUpdatedEmptyThenSet(t *testing.T) {
	env := setupTestServer(t)

	rec := env.request(t, http.MethodGet, "/api/standings/last-updated", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Empty(t, payload["lastUpdated"])
	assert.NotEmpty(t, payload["currentTime"])

	env.request(t, http.MethodPost, "/api/standings/ingest",
		map[string]any{"standings": atlanticBatch()},
		map[string]string{"Authorization": "Bearer " + testIngestSecret})

	rec = env.request(t, http.MethodGet, "/api/standings/last-updated", nil, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload["lastUpdated"])
}

func TestPredictionsRoundTrip(t *testing.T) {
	env := setupTestServer(t)
	setTestDeadline(t, env.store, time.Now().Add(time.Hour))

	picks := make([]models.Pick, 0, models.AtlanticTeamCount)
	for i, rec := range atlanticBatch() {
		picks = append(picks, models.Pick{Rank: i + 1, Team: rec.Team})
	}

	rec := env.request(t, http.MethodPost, "/api/predictions/alice",
		map[string]any{"predictions": picks}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.request(t, http.MethodGet, "/api/predictions/alice", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Predictions []models.Pick `json:"predictions"`
		SubmittedAt string        `json:"submittedAt"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Len(t, payload.Predictions, models.AtlanticTeamCount)
	assert.NotEmpty(t, payload.SubmittedAt)
}

func TestPredictionsUnknownUser(t *testing.T) {
	env := setupTestServer(t)

	rec := env.request(t, http.MethodGet, "/api/predictions/nobody", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"predictions": null}`, rec.Body.String())
}

func TestPredictionsAfterDeadlineForbidden(t *testing.T) {
	env := setupTestServer(t)
	setTestDeadline(t, env.store, time.Now().Add(-time.Hour))

	picks := make([]models.Pick, 0, models.AtlanticTeamCount)
	for i, rec := range atlanticBatch() {
		picks = append(picks, models.Pick{Rank: i + 1, Team: rec.Team})
	}

	rec := env.request(t, http.MethodPost, "/api/predictions/late",
		map[string]any{"predictions": picks}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPredictionsInvalidSetRejected(t *testing.T) {
	env := setupTestServer(t)
	setTestDeadline(t, env.store, time.Now().Add(time.Hour))

	rec := env.request(t, http.MethodPost, "/api/predictions/short",
		map[string]any{"predictions": []models.Pick{{Rank: 1, Team: "Boston Bruins"}}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoresLeaderboard(t *testing.T) {
	env := setupTestServer(t)
	setTestDeadline(t, env.store, time.Now().Add(time.Hour))

	rec := env.request(t, http.MethodPost, "/api/standings/ingest",
		map[string]any{"standings": atlanticBatch()},
		map[string]string{"Authorization": "Bearer " + testIngestSecret})
	require.Equal(t, http.StatusOK, rec.Code)

	perfect := make([]models.Pick, 0, models.AtlanticTeamCount)
	for i, r := range atlanticBatch() {
		perfect = append(perfect, models.Pick{Rank: i + 1, Team: r.Team})
	}
	swapped := make([]models.Pick, len(perfect))
	copy(swapped, perfect)
	swapped[0].Team, swapped[1].Team = swapped[1].Team, swapped[0].Team

	rec = env.request(t, http.MethodPost, "/api/predictions/alice",
		map[string]any{"predictions": perfect}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.request(t, http.MethodPost, "/api/predictions/bob",
		map[string]any{"predictions": swapped}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.request(t, http.MethodGet, "/api/scores", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []leaderboardEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)

	assert.Equal(t, "alice", entries[0].UserID)
	assert.Equal(t, 3*models.AtlanticTeamCount, entries[0].Total, "All exact picks")
	assert.Equal(t, "bob", entries[1].UserID)
	assert.Equal(t, 3*(models.AtlanticTeamCount-2)+2, entries[1].Total,
		"Two swapped picks are each off by one")
}

func TestDeadlineEndpoint(t *testing.T) {
	env := setupTestServer(t)
	setTestDeadline(t, env.store, time.Now().Add(45*time.Minute))

	rec := env.request(t, http.MethodGet, "/api/deadline", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status predictions.DeadlineStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.IsActive)
	assert.Greater(t, status.TimeRemaining, int64(0))
}

func TestHealth(t *testing.T) {
	env := setupTestServer(t)

	rec := env.request(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "OK"}`, rec.Body.String())
}

func setTestDeadline(t *testing.T, store storage.Store, deadline time.Time) {
	t.Helper()
	_, err := store.Execute(context.Background(),
		`INSERT INTO config (key, value) VALUES ($1, $2)`,
		"deadline", deadline.UTC().Format(time.RFC3339))
	require.NoError(t, err)
}
