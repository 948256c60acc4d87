// Package seed supplies the fixed market catalog used when no persisted
// snapshot exists and on explicit refresh.
package seed

import (
	"time"

	"github.com/sonicbet/sonicbet/internal/domain"
)

// CreatorID marks catalog markets as house-created.
const CreatorID = "sonicbet-oracle"

type entry struct {
	id          string
	title       string
	description string
	pool        float64
	closesIn    time.Duration
}

var catalog = []entry{
	{
		id:          "sonic-price-1usd",
		title:       "Will S trade above $1.00 before the market closes?",
		description: "Resolves yes if the S token price on major aggregators exceeds $1.00 at any point before close.",
		pool:        500,
		closesIn:    30 * 24 * time.Hour,
	},
	{
		id:          "sonic-tvl-500m",
		title:       "Will Sonic TVL pass $500M this quarter?",
		description: "Resolves yes if total value locked across Sonic DeFi protocols exceeds $500M.",
		pool:        250,
		closesIn:    60 * 24 * time.Hour,
	},
	{
		id:          "sonic-daily-tx-1m",
		title:       "Will Sonic process 1M+ transactions in a single day?",
		description: "Resolves yes on the first day the explorer reports over one million transactions.",
		pool:        300,
		closesIn:    45 * 24 * time.Hour,
	},
	{
		id:          "sonic-dex-volume",
		title:       "Will daily DEX volume on Sonic top $50M this month?",
		description: "Resolves yes if any single day's aggregate DEX volume exceeds $50M.",
		pool:        150,
		closesIn:    21 * 24 * time.Hour,
	},
	{
		id:          "sonic-new-dapps-100",
		title:       "Will 100+ new dapps deploy on Sonic this quarter?",
		description: "Resolves yes if the ecosystem directory lists at least 100 newly deployed dapps.",
		pool:        200,
		closesIn:    75 * 24 * time.Hour,
	},
	{
		id:          "sonic-gateway-bridge",
		title:       "Will Sonic Gateway bridge volume exceed $100M?",
		description: "Resolves yes if cumulative bridged volume through the Sonic Gateway passes $100M.",
		pool:        400,
		closesIn:    90 * 24 * time.Hour,
	},
}

// Markets returns the catalog as open markets with empty bet lists. Bet
// bounds come from the chain config so the catalog and the betting service
// always agree.
func Markets(now time.Time, minBet, maxBet float64) []domain.Market {
	markets := make([]domain.Market, 0, len(catalog))
	for _, e := range catalog {
		markets = append(markets, domain.Market{
			ID:          e.id,
			Title:       e.title,
			Description: e.description,
			CreatorID:   CreatorID,
			CreatedAt:   now,
			ClosesAt:    now.Add(e.closesIn),
			InitialPool: e.pool,
			MinBet:      minBet,
			MaxBet:      maxBet,
			Status:      domain.MarketStatusOpen,
			Bets:        []domain.Bet{},
		})
	}
	return markets
}
