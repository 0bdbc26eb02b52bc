package server

import (
	"encoding/json"
	"net/http"

	"nhl_pool/sync/internal/models"
)

type savePredictionsRequest struct {
	Predictions []models.Pick `json:"predictions"`
}

func (s *Server) handleGetPredictions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	set, err := s.predictions.Latest(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if set == nil {
		writeJSON(w, http.StatusOK, map[string]any{"predictions": nil})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"predictions": set.Picks,
		"submittedAt": set.SubmittedAt,
		"lastUpdated": set.LastUpdated,
	})
}

func (s *Server) handleSavePredictions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	defer r.Body.Close()
	var req savePredictionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.NewValidationError("request body is not valid JSON"))
		return
	}

	submittedAt, err := s.predictions.Save(r.Context(), userID, req.Predictions)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Predictions saved successfully",
		"submittedAt": submittedAt,
	})
}

func (s *Server) handleAllPredictions(w http.ResponseWriter, r *http.Request) {
	sets, err := s.predictions.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleDeadline(w http.ResponseWriter, r *http.Request) {
	status, err := s.predictions.DeadlineStatus(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
