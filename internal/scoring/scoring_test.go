package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nhl_pool/sync/internal/models"
)

func standingsFixture() []models.StandingRecord {
	return []models.StandingRecord{
		{Team: "Boston Bruins", Wins: 14, Points: 30},
		{Team: "Toronto Maple Leafs", Wins: 12, Points: 26},
		{Team: "Tampa Bay Lightning", Wins: 11, Points: 23},
		{Team: "Florida Panthers", Wins: 10, Points: 22},
	}
}

func TestRankOrdersByPointsThenWins(t *testing.T) {
	standings := []models.StandingRecord{
		{Team: "Ottawa Senators", Wins: 9, Points: 20},
		{Team: "Detroit Red Wings", Wins: 11, Points: 20},
		{Team: "Buffalo Sabres", Wins: 12, Points: 24},
	}

	ranked := Rank(standings)
	assert.Equal(t, "Buffalo Sabres", ranked[0].Team)
	assert.Equal(t, "Detroit Red Wings", ranked[1].Team, "Tie on points broken by wins")
	assert.Equal(t, "Ottawa Senators", ranked[2].Team)

	// Input must not be reordered.
	assert.Equal(t, "Ottawa Senators", standings[0].Team)
}

func TestScoreExactOffByOneAndMiss(t *testing.T) {
	standings := standingsFixture()

	exact := Score([]models.Pick{{Rank: 1, Team: "Boston Bruins"}}, standings)
	assert.Equal(t, 3, exact.Total, "Exact position match scores 3")

	offByOne := Score([]models.Pick{{Rank: 2, Team: "Boston Bruins"}}, standings)
	assert.Equal(t, 1, offByOne.Total, "Off-by-one scores 1")

	miss := Score([]models.Pick{{Rank: 3, Team: "Boston Bruins"}}, standings)
	assert.Equal(t, 0, miss.Total, "Off by two or more scores 0")
}

func TestScoreUnknownTeamScoresZero(t *testing.T) {
	result := Score([]models.Pick{{Rank: 1, Team: "Hartford Whalers"}}, standingsFixture())

	require.Len(t, result.Breakdown, 1)
	assert.Equal(t, 0, result.Total, "Unresolvable team scores 0, even at predicted rank 1")
	assert.Equal(t, 0, result.Breakdown[0].ActualRank, "Unresolvable team has actual rank 0")
	assert.Equal(t, "unranked", result.Breakdown[0].Status)
}

func TestScoreConcreteScenario(t *testing.T) {
	standings := []models.StandingRecord{
		{Team: "A", Points: 10},
		{Team: "B", Points: 8},
	}
	picks := []models.Pick{
		{Rank: 1, Team: "B"},
		{Rank: 2, Team: "A"},
	}

	result := Score(picks, standings)

	assert.Equal(t, 2, result.Total)
	require.Len(t, result.Breakdown, 2)

	assert.Equal(t, models.BreakdownEntry{
		Team: "B", PredictedRank: 1, ActualRank: 2, Points: 1, Status: "off-by-one",
	}, result.Breakdown[0])
	assert.Equal(t, models.BreakdownEntry{
		Team: "A", PredictedRank: 2, ActualRank: 1, Points: 1, Status: "off-by-one",
	}, result.Breakdown[1])
}

func TestScoreIsDeterministic(t *testing.T) {
	picks := []models.Pick{
		{Rank: 1, Team: "Toronto Maple Leafs"},
		{Rank: 2, Team: "Boston Bruins"},
		{Rank: 3, Team: "Tampa Bay Lightning"},
		{Rank: 4, Team: "Florida Panthers"},
	}
	standings := standingsFixture()

	first := Score(picks, standings)
	second := Score(picks, standings)

	assert.Equal(t, first, second, "Identical inputs must yield identical output")
	assert.Equal(t, 12, first.MaxPossible, "Max is 3 points per pick")
}

func TestScoreMaxPossible(t *testing.T) {
	standings := standingsFixture()
	picks := []models.Pick{
		{Rank: 1, Team: "Boston Bruins"},
		{Rank: 2, Team: "Toronto Maple Leafs"},
		{Rank: 3, Team: "Tampa Bay Lightning"},
		{Rank: 4, Team: "Florida Panthers"},
	}

	result := Score(picks, standings)
	assert.Equal(t, result.MaxPossible, result.Total, "Perfect prediction hits the maximum")
}
