package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sonicbet/sonicbet/internal/domain"
)

func testMarket(initialPool float64, bets ...domain.Bet) domain.Market {
	return domain.Market{
		ID:          "mkt-1",
		Title:       "Will S flip $1?",
		Status:      domain.MarketStatusOpen,
		InitialPool: initialPool,
		MinBet:      0.1,
		MaxBet:      1000,
		Bets:        bets,
	}
}

func bet(user string, amount float64, side domain.BetSide) domain.Bet {
	return domain.Bet{ID: "bet-" + user, UserID: user, MarketID: "mkt-1", Amount: amount, Side: side}
}

func TestResolve_SoleWinnerTakesPool(t *testing.T) {
	require := require.New(t)

	m := testMarket(100,
		bet("alice", 30, domain.BetSideYes),
		bet("bob", 10, domain.BetSideNo),
	)

	now := time.Now()
	res, err := Resolve(m, domain.BetSideYes, now)
	require.NoError(err)
	require.False(res.AlreadyResolved)

	require.Equal(domain.MarketStatusResolved, res.Market.Status)
	require.NotNil(res.Market.Result)
	require.Equal(domain.BetSideYes, *res.Market.Result)

	require.Len(res.Rewards, 1)
	require.Equal("alice", res.Rewards[0].UserID)
	require.InDelta(140.0, res.Rewards[0].Amount, 1e-9)
	require.False(res.Rewards[0].Claimed)

	require.Equal(map[string]int{"alice": 10}, res.ScoreDeltas)

	require.InDelta(140.0, res.Settlement.TotalPool, 1e-9)
	require.InDelta(30.0, res.Settlement.WinnerStake, 1e-9)
	require.Equal(1, res.Settlement.WinningBets)
	require.Equal(now, res.Settlement.ResolvedAt)
}

func TestResolve_OppositeOutcome(t *testing.T) {
	require := require.New(t)

	m := testMarket(100,
		bet("alice", 30, domain.BetSideYes),
		bet("bob", 10, domain.BetSideNo),
	)

	res, err := Resolve(m, domain.BetSideNo, time.Now())
	require.NoError(err)

	require.Len(res.Rewards, 1)
	require.Equal("bob", res.Rewards[0].UserID)
	require.InDelta(140.0, res.Rewards[0].Amount, 1e-9)
	require.Equal(map[string]int{"bob": 10}, res.ScoreDeltas)
}

func TestResolve_PayoutConservation(t *testing.T) {
	require := require.New(t)

	m := testMarket(250,
		bet("alice", 30, domain.BetSideYes),
		bet("bob", 45.5, domain.BetSideYes),
		bet("carol", 12.25, domain.BetSideNo),
		bet("dave", 7, domain.BetSideYes),
		bet("erin", 100, domain.BetSideNo),
	)

	res, err := Resolve(m, domain.BetSideYes, time.Now())
	require.NoError(err)

	var sum float64
	for _, r := range res.Rewards {
		sum += r.Amount
	}
	require.InDelta(res.Settlement.TotalPool, sum, 1e-9)
	require.InDelta(m.TotalPool(), sum, 1e-9)
}

func TestResolve_NoWinnersNoRewards(t *testing.T) {
	require := require.New(t)

	m := testMarket(100, bet("alice", 30, domain.BetSideYes))

	res, err := Resolve(m, domain.BetSideNo, time.Now())
	require.NoError(err)
	require.Empty(res.Rewards)
	require.Empty(res.ScoreDeltas)
	require.InDelta(130.0, res.Settlement.TotalPool, 1e-9)
	require.Zero(res.Settlement.WinnerStake)
}

func TestResolve_ZeroBetsPoolForfeited(t *testing.T) {
	require := require.New(t)

	m := testMarket(50)

	res, err := Resolve(m, domain.BetSideYes, time.Now())
	require.NoError(err)
	require.Empty(res.Rewards)
	require.Equal(domain.MarketStatusResolved, res.Market.Status)
	require.InDelta(50.0, res.Settlement.TotalPool, 1e-9)
	require.Equal(0, res.Settlement.WinningBets)
}

func TestResolve_MultipleWinningBetsSameUser(t *testing.T) {
	require := require.New(t)

	// Two winning bets by the same user stay separate reward records, and
	// the score delta accumulates per bet.
	m := testMarket(0,
		bet("alice", 10, domain.BetSideYes),
		domain.Bet{ID: "bet-alice-2", UserID: "alice", MarketID: "mkt-1", Amount: 30, Side: domain.BetSideYes},
	)

	res, err := Resolve(m, domain.BetSideYes, time.Now())
	require.NoError(err)

	require.Len(res.Rewards, 2)
	require.InDelta(10.0, res.Rewards[0].Amount, 1e-9)
	require.InDelta(30.0, res.Rewards[1].Amount, 1e-9)
	require.Equal(map[string]int{"alice": 20}, res.ScoreDeltas)
}

func TestResolve_AlreadyResolvedIsNoOp(t *testing.T) {
	require := require.New(t)

	m := testMarket(100, bet("alice", 30, domain.BetSideYes))
	first, err := Resolve(m, domain.BetSideYes, time.Now())
	require.NoError(err)

	second, err := Resolve(first.Market, domain.BetSideNo, time.Now())
	require.NoError(err)
	require.True(second.AlreadyResolved)
	require.Empty(second.Rewards)
	require.Empty(second.ScoreDeltas)

	// The original result survives; the second outcome is ignored.
	require.Equal(domain.BetSideYes, *second.Market.Result)
}

func TestResolve_ClosedMarketCanResolve(t *testing.T) {
	require := require.New(t)

	m := testMarket(100, bet("alice", 30, domain.BetSideYes))
	m.Status = domain.MarketStatusClosed

	res, err := Resolve(m, domain.BetSideYes, time.Now())
	require.NoError(err)
	require.False(res.AlreadyResolved)
	require.Equal(domain.MarketStatusResolved, res.Market.Status)
}

func TestResolve_InvalidSide(t *testing.T) {
	require := require.New(t)

	m := testMarket(100)
	_, err := Resolve(m, domain.BetSide("maybe"), time.Now())
	require.ErrorIs(err, domain.ErrInvalidSide)
}
