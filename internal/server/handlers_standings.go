package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"nhl_pool/sync/internal/auth"
	"nhl_pool/sync/internal/models"
)

// updateRequest is the body accepted by the ingestion entry points.
// Standings may be omitted on the admin path to trigger an in-process
// fetch; Password is the admin body-field alternative to the header.
type updateRequest struct {
	Standings []models.StandingRecord `json:"standings"`
	Password  string                  `json:"password"`
}

// decodeUpdateRequest reads the optional JSON body. An empty body is
// a valid request with no standings.
func decodeUpdateRequest(r *http.Request) (*updateRequest, error) {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, models.NewValidationError("failed to read request body")
	}
	if len(body) == 0 {
		return &updateRequest{}, nil
	}

	var req updateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, models.NewValidationError("request body is not valid JSON")
	}
	return &req, nil
}

// handleCronUpdate serves the scheduled trigger: fetch from providers,
// then apply. Secured by the cron bearer secret.
func (s *Server) handleCronUpdate(w http.ResponseWriter, r *http.Request) {
	if _, err := s.gate.AuthorizeCron(r); err != nil {
		writeUpdateError(w, err)
		return
	}

	result, err := s.service.Update(r.Context(), nil, string(auth.KindCronJob))
	if err != nil {
		writeUpdateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updateEnvelope{
		Success:   true,
		Updated:   result.Updated,
		Duration:  result.Duration,
		Timestamp: result.Timestamp,
	})
}

// handleAdminUpdate serves the admin trigger. A body with standings is
// applied directly; without one the service fetches first.
func (s *Server) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUpdateRequest(r)
	if err != nil {
		writeUpdateError(w, err)
		return
	}

	if _, err := s.gate.AuthorizeAdmin(r, req.Password); err != nil {
		writeUpdateError(w, err)
		return
	}

	result, err := s.service.Update(r.Context(), req.Standings, string(auth.KindAdmin))
	if err != nil {
		writeUpdateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updateEnvelope{
		Success:   true,
		Updated:   result.Updated,
		Duration:  result.Duration,
		Timestamp: result.Timestamp,
	})
}

// handleIngest serves external automation pushing pre-fetched data.
// There is no server-side fetch path here: the body is mandatory.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if _, err := s.gate.AuthorizeAutomation(r); err != nil {
		writeUpdateError(w, err)
		return
	}

	req, err := decodeUpdateRequest(r)
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	if len(req.Standings) == 0 {
		writeUpdateError(w, models.NewValidationError("standings are required"))
		return
	}

	result, err := s.service.Update(r.Context(), req.Standings, string(auth.KindAutomation))
	if err != nil {
		writeUpdateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updateEnvelope{
		Success:   true,
		Updated:   result.Updated,
		Duration:  result.Duration,
		Timestamp: result.Timestamp,
	})
}

func (s *Server) handleCurrentStandings(w http.ResponseWriter, r *http.Request) {
	records, err := s.standings.CurrentStandings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleLastUpdated(w http.ResponseWriter, r *http.Request) {
	ts, err := s.standings.LastUpdated(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"lastUpdated": ts,
		"currentTime": time.Now().UTC().Format(time.RFC3339),
	})
}
