package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"nhl_pool/sync/internal/auth"
	"nhl_pool/sync/internal/models"
	"nhl_pool/sync/internal/predictions"
	"nhl_pool/sync/internal/provider"
	"nhl_pool/sync/internal/storage"
)

// updateEnvelope is the response shape of every ingestion entry point.
type updateEnvelope struct {
	Success   bool   `json:"success"`
	Updated   int    `json:"updated,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func writeUpdateError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), updateEnvelope{
		Success:   false,
		Error:     err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// statusFor maps the error taxonomy onto HTTP statuses so callers can
// tell "nobody configured this" (503) from "wrong credential" (401)
// from "bad input" (400) from "providers exhausted" (502).
func statusFor(err error) int {
	var (
		configErr      *auth.ConfigurationError
		authErr        *auth.AuthorizationError
		validationErr  *models.ValidationError
		acquisitionErr *provider.AcquisitionError
		storageErr     *storage.StorageError
	)

	switch {
	case errors.As(err, &configErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &acquisitionErr):
		return http.StatusBadGateway
	case errors.Is(err, predictions.ErrDeadlinePassed):
		return http.StatusForbidden
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
