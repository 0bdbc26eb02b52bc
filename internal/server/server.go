// Package server exposes the sync engine over HTTP: gated ingestion
// entry points, standings reads, and prediction CRUD for the pool.
package server

import (
	"net/http"

	"nhl_pool/sync/internal/auth"
	"nhl_pool/sync/internal/predictions"
	"nhl_pool/sync/internal/standings"
)

// Server wires handlers to their collaborators.
type Server struct {
	gate        *auth.Gate
	service     *standings.Service
	standings   *standings.Repository
	predictions *predictions.Repository
}

// New creates the HTTP server facade.
func New(gate *auth.Gate, service *standings.Service, repo *standings.Repository, preds *predictions.Repository) *Server {
	return &Server{
		gate:        gate,
		service:     service,
		standings:   repo,
		predictions: preds,
	}
}

// Routes builds the request mux. All handlers are wrapped with request
// logging.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Ingestion entry points, one per trust context.
	mux.HandleFunc("GET /api/cron/standings", withLogging(s.handleCronUpdate))
	mux.HandleFunc("POST /api/standings/update-now", withLogging(s.handleAdminUpdate))
	mux.HandleFunc("POST /api/standings/ingest", withLogging(s.handleIngest))

	// Read side.
	mux.HandleFunc("GET /api/standings", withLogging(s.handleCurrentStandings))
	mux.HandleFunc("GET /api/standings/last-updated", withLogging(s.handleLastUpdated))

	// Predictions.
	mux.HandleFunc("GET /api/predictions/all", withLogging(s.handleAllPredictions))
	mux.HandleFunc("GET /api/predictions/{userID}", withLogging(s.handleGetPredictions))
	mux.HandleFunc("POST /api/predictions/{userID}", withLogging(s.handleSavePredictions))
	mux.HandleFunc("GET /api/scores", withLogging(s.handleScores))
	mux.HandleFunc("GET /api/deadline", withLogging(s.handleDeadline))

	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
