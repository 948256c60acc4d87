package domain

import "time"

// Bet is a single wager on a market. Signature, Message, and TreasuryTxHash
// come from the wallet collaborator and are stored opaquely; the ledger never
// validates them.
type Bet struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	MarketID       string    `json:"marketId"`
	Amount         float64   `json:"amount"`      // stake in S
	Fee            float64   `json:"fee"`         // treasury fee in S
	TotalAmount    float64   `json:"totalAmount"` // Amount + Fee
	Side           BetSide   `json:"side"`
	Timestamp      time.Time `json:"timestamp"`
	Signature      string    `json:"signature,omitempty"`
	Message        string    `json:"message,omitempty"`
	TreasuryTxHash string    `json:"treasuryTxHash,omitempty"`
}
