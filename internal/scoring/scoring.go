// Package scoring computes pool scores from predictions and standings.
// Score is a pure function: identical inputs always yield an identical
// breakdown, which keeps leaderboards reproducible.
package scoring

import (
	"sort"

	"nhl_pool/sync/internal/models"
)

// Points awarded by distance between predicted and actual rank.
const (
	PointsExact    = 3
	PointsOffByOne = 1
)

// Rank orders standings the same way they are displayed: points
// descending, ties broken by wins. The sort is stable so equal records
// keep their input order.
func Rank(standings []models.StandingRecord) []models.StandingRecord {
	ranked := make([]models.StandingRecord, len(standings))
	copy(ranked, standings)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		return ranked[i].Wins > ranked[j].Wins
	})

	return ranked
}

// Score maps a prediction set and the current standings to a total and
// a per-pick breakdown. A pick whose team cannot be resolved in the
// standings gets actualRank 0 and scores 0; it never fails.
func Score(picks []models.Pick, standings []models.StandingRecord) models.ScoreResult {
	ranked := Rank(standings)

	actualRank := make(map[string]int, len(ranked))
	for i, rec := range ranked {
		// First occurrence wins, matching the display-side de-dup.
		if _, ok := actualRank[rec.Team]; !ok {
			actualRank[rec.Team] = i + 1
		}
	}

	result := models.ScoreResult{
		Breakdown:   make([]models.BreakdownEntry, 0, len(picks)),
		MaxPossible: PointsExact * len(picks),
	}

	for _, pick := range picks {
		rank := actualRank[pick.Team] // 0 when the team is unknown

		points := 0
		status := "off-by-two-or-more"
		switch {
		case rank == 0:
			status = "unranked"
		case rank == pick.Rank:
			points = PointsExact
			status = "exact"
		case rank-pick.Rank == 1 || pick.Rank-rank == 1:
			points = PointsOffByOne
			status = "off-by-one"
		}

		result.Total += points
		result.Breakdown = append(result.Breakdown, models.BreakdownEntry{
			Team:          pick.Team,
			PredictedRank: pick.Rank,
			ActualRank:    rank,
			Points:        points,
			Status:        status,
		})
	}

	return result
}
