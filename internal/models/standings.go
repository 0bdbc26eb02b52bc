package models

// AtlanticTeamCount is the number of teams in the division. A standings
// fetch is only complete when all of them are present, and a prediction
// set must rank every one of them.
const AtlanticTeamCount = 8

// StandingRecord represents one team's aggregate record in the division
// standings. Exactly one live row exists per team; the upsert engine
// replaces all mutable fields together.
type StandingRecord struct {
	Team        string `json:"team"`
	GamesPlayed int    `json:"gp"`
	Wins        int    `json:"w"`
	Losses      int    `json:"l"`
	OTLosses    int    `json:"otl"`
	Points      int    `json:"pts"`
	LastUpdated string `json:"last_updated,omitempty"`
}

// UpdateResult is the outcome of a successful standings sync cycle.
type UpdateResult struct {
	Updated   int    `json:"updated"`
	Duration  string `json:"duration"`
	Timestamp string `json:"timestamp"`
}
