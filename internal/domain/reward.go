package domain

// ClaimableReward is a winner's share of a resolved market's pool. Claiming
// only flips the flag; no funds move.
type ClaimableReward struct {
	UserID   string  `json:"userId"`
	MarketID string  `json:"marketId"`
	Amount   float64 `json:"amount"`
	Claimed  bool    `json:"claimed"`
}

// ScoreEntry is one row of the sonic score leaderboard.
type ScoreEntry struct {
	UserID string `json:"userId"`
	Score  int    `json:"score"`
}
