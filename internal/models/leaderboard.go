package models

type LeaderboardEntry struct {
	Rank             int       `json:"rank"`
	ParticipantName  string    `json:"participant_name"`
	TotalScore       int       `json:"total_score"`
	ChallengesSolved int       `json:"challenges_solved"`
	LastSubmission   Timestamp `json:"last_submission"`
}

// Leaderboard is the GET /api/leaderboard payload.
type Leaderboard struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
