package domain

import "time"

// MarketStatus represents the lifecycle state of a market.
type MarketStatus string

const (
	MarketStatusOpen     MarketStatus = "open"
	MarketStatusClosed   MarketStatus = "closed"
	MarketStatusResolved MarketStatus = "resolved"
)

// BetSide is the outcome a bettor backs.
type BetSide string

const (
	BetSideYes BetSide = "yes"
	BetSideNo  BetSide = "no"
)

// Valid reports whether s is one of the two defined sides.
func (s BetSide) Valid() bool {
	return s == BetSideYes || s == BetSideNo
}

// Market is a yes/no prediction market. The JSON field names match the
// payloads the web front-end reads and writes.
type Market struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	CreatorID   string       `json:"creatorId"`
	CreatedAt   time.Time    `json:"createdAt"`
	ClosesAt    time.Time    `json:"closesAt"`
	InitialPool float64      `json:"initialPool"`
	MinBet      float64      `json:"minBet"`
	MaxBet      float64      `json:"maxBet"`
	Status      MarketStatus `json:"status"`
	Bets        []Bet        `json:"bets"`
	Result      *BetSide     `json:"result,omitempty"`
	TxHash      string       `json:"txHash,omitempty"`
}

// Resolved reports whether the market has a declared outcome.
// Invariant: Status == MarketStatusResolved iff Result is set.
func (m *Market) Resolved() bool {
	return m.Status == MarketStatusResolved
}

// AcceptsBets reports whether new bets may be appended.
func (m *Market) AcceptsBets() bool {
	return m.Status == MarketStatusOpen
}

// TotalPool returns the initial pool plus the stake of every placed bet.
// Fees are collected by the treasury and never enter the pool.
func (m *Market) TotalPool() float64 {
	total := m.InitialPool
	for _, b := range m.Bets {
		total += b.Amount
	}
	return total
}
