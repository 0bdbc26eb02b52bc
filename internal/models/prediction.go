package models

// Pick is a single (rank, team) entry in a user's prediction.
type Pick struct {
	Rank int    `json:"rank"`
	Team string `json:"team"`
}

// PredictionSet is a user's full ranking of the division. Each save
// inserts a new timestamped row; only the most recent row per user is
// authoritative.
type PredictionSet struct {
	UserID      string `json:"user_id"`
	Picks       []Pick `json:"predictions"`
	SubmittedAt string `json:"submitted_at"`
	LastUpdated string `json:"last_updated"`
}

// BreakdownEntry is the per-pick scoring detail behind a total score.
// ActualRank is 0 when the predicted team cannot be resolved in the
// standings.
type BreakdownEntry struct {
	Team          string `json:"team"`
	PredictedRank int    `json:"predictedRank"`
	ActualRank    int    `json:"actualRank"`
	Points        int    `json:"points"`
	Status        string `json:"status"`
}

// ScoreResult is the deterministic output of scoring a prediction set
// against the current standings.
type ScoreResult struct {
	Total       int              `json:"totalScore"`
	Breakdown   []BreakdownEntry `json:"breakdown"`
	MaxPossible int              `json:"maxPossible"`
}
