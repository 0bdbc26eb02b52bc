package server

import (
	"net/http"
	"sort"

	"nhl_pool/sync/internal/models"
	"nhl_pool/sync/internal/scoring"
)

// leaderboardEntry is one user's scored prediction set.
type leaderboardEntry struct {
	UserID      string                  `json:"userId"`
	Total       int                     `json:"total"`
	MaxPossible int                     `json:"maxPossible"`
	Breakdown   []models.BreakdownEntry `json:"breakdown"`
}

// handleScores scores every user's latest prediction set against the
// current standings and returns the leaderboard, best total first.
func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	records, err := s.standings.CurrentStandings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	sets, err := s.predictions.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	entries := make([]leaderboardEntry, 0, len(sets))
	for _, set := range sets {
		result := scoring.Score(set.Picks, records)
		entries = append(entries, leaderboardEntry{
			UserID:      set.UserID,
			Total:       result.Total,
			MaxPossible: result.MaxPossible,
			Breakdown:   result.Breakdown,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].UserID < entries[j].UserID
	})

	writeJSON(w, http.StatusOK, entries)
}
