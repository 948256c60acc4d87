// Package engine implements market resolution: declaring an outcome,
// splitting the pool pro rata among winning bets, and awarding sonic score
// points. Resolution is a pure function over a market's state; applying the
// result to the ledger is the caller's job.
package engine

import (
	"time"

	"github.com/sonicbet/sonicbet/internal/domain"
)

// WinScorePoints is the sonic score awarded per winning bet.
const WinScorePoints = 10

// Result carries everything a resolution produced: the updated market, the
// rewards to append, and the score deltas to apply. When AlreadyResolved is
// set the market was resolved before this call and nothing else is populated
// beyond the (unchanged) market; resolving twice is a no-op.
type Result struct {
	Market          domain.Market
	Rewards         []domain.ClaimableReward
	ScoreDeltas     map[string]int
	Settlement      domain.Settlement
	AlreadyResolved bool
}

// Resolve declares outcome as the result of m and computes the payouts.
//
// The pool is the initial pool plus every placed stake. Each bet on the
// winning side earns stake/winnerStake of the pool as a claimable reward and
// +10 sonic score for its bettor. A user with several winning bets gets one
// reward record per bet, each independently claimable. With no winning bets
// the pool is forfeited: no rewards, no refunds.
func Resolve(m domain.Market, outcome domain.BetSide, now time.Time) (Result, error) {
	if !outcome.Valid() {
		return Result{}, domain.ErrInvalidSide
	}
	if m.Resolved() {
		return Result{Market: m, AlreadyResolved: true}, nil
	}

	m.Status = domain.MarketStatusResolved
	m.Result = &outcome

	totalPool := m.TotalPool()

	var winners []domain.Bet
	var winnerStake float64
	for _, b := range m.Bets {
		if b.Side == outcome {
			winners = append(winners, b)
			winnerStake += b.Amount
		}
	}

	res := Result{
		Market:      m,
		ScoreDeltas: map[string]int{},
		Settlement: domain.Settlement{
			MarketID:    m.ID,
			Result:      outcome,
			TotalPool:   totalPool,
			WinnerStake: winnerStake,
			WinningBets: len(winners),
			ResolvedAt:  now,
		},
	}

	// No winners (including zero bets): the pool stays undistributed.
	if winnerStake <= 0 {
		return res, nil
	}

	for _, b := range winners {
		res.Rewards = append(res.Rewards, domain.ClaimableReward{
			UserID:   b.UserID,
			MarketID: m.ID,
			Amount:   (b.Amount / winnerStake) * totalPool,
		})
		res.ScoreDeltas[b.UserID] += WinScorePoints
	}

	return res, nil
}
