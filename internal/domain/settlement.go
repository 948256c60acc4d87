package domain

import "time"

// Settlement records the outcome of resolving a market: what was declared,
// how large the pool was, and how it was split.
type Settlement struct {
	MarketID    string    `json:"marketId"`
	Result      BetSide   `json:"result"`
	TotalPool   float64   `json:"totalPool"`
	WinnerStake float64   `json:"winnerStake"`
	WinningBets int       `json:"winningBets"`
	ResolvedAt  time.Time `json:"resolvedAt"`
}
