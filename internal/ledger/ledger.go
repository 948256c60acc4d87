// Package ledger holds the authoritative in-memory state of the betting
// system: markets with their bets, claimable rewards, per-user bet history,
// and sonic scores. Every mutation is followed by a synchronous best-effort
// snapshot save; a failed save is logged and the in-memory state stays
// authoritative for the rest of the session.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sonicbet/sonicbet/internal/domain"
	"github.com/sonicbet/sonicbet/internal/engine"
)

// Ledger is an explicit store object; callers construct isolated instances
// instead of sharing a process-wide singleton.
type Ledger struct {
	mu       sync.Mutex
	markets  []domain.Market
	index    map[string]int // market id -> position in markets
	userBets map[string][]domain.Bet
	rewards  []domain.ClaimableReward
	scores   map[string]int

	snapshots domain.SnapshotStore
	logger    *slog.Logger
}

// New creates a Ledger, restoring state from the snapshot store when a
// snapshot exists and falling back to the seed markets otherwise. A snapshot
// that fails to load for any reason other than absence is an error: silently
// reseeding would discard recorded bets.
func New(ctx context.Context, snapshots domain.SnapshotStore, seedMarkets []domain.Market, logger *slog.Logger) (*Ledger, error) {
	l := &Ledger{
		index:     map[string]int{},
		userBets:  map[string][]domain.Bet{},
		scores:    map[string]int{},
		snapshots: snapshots,
		logger:    logger.With(slog.String("component", "ledger")),
	}

	snap, err := snapshots.Load(ctx)
	switch {
	case err == nil && len(snap.Markets) > 0:
		l.restore(snap)
		l.logger.InfoContext(ctx, "ledger restored from snapshot",
			slog.Int("markets", len(snap.Markets)),
			slog.Int("rewards", len(snap.Rewards)),
		)
	case err == nil || errors.Is(err, domain.ErrNotFound):
		l.setMarketsLocked(seedMarkets)
		l.persist(ctx)
		l.logger.InfoContext(ctx, "ledger seeded from catalog",
			slog.Int("markets", len(seedMarkets)),
		)
	default:
		return nil, err
	}

	return l, nil
}

func (l *Ledger) restore(snap domain.Snapshot) {
	l.setMarketsLocked(snap.Markets)
	if snap.UserBets != nil {
		l.userBets = snap.UserBets
	}
	l.rewards = snap.Rewards
	if snap.Scores != nil {
		l.scores = snap.Scores
	}
}

// setMarketsLocked replaces the market list and rebuilds the id index.
// Callers must hold l.mu (or be inside the constructor).
func (l *Ledger) setMarketsLocked(markets []domain.Market) {
	l.markets = make([]domain.Market, len(markets))
	copy(l.markets, markets)
	l.index = make(map[string]int, len(markets))
	for i, m := range l.markets {
		l.index[m.ID] = i
	}
}

// persist writes the current state through the snapshot store. Failures are
// logged, never propagated: in-memory state remains the source of truth even
// if it diverges from the persisted copy.
func (l *Ledger) persist(ctx context.Context) {
	snap := domain.Snapshot{
		Version:  domain.SnapshotVersion,
		Markets:  l.markets,
		UserBets: l.userBets,
		Rewards:  l.rewards,
		Scores:   l.scores,
		SavedAt:  time.Now(),
	}
	if err := l.snapshots.Save(ctx, snap); err != nil {
		l.logger.WarnContext(ctx, "snapshot save failed, in-memory state retained",
			slog.String("error", err.Error()),
		)
	}
}

// AddMarket prepends a new market, matching the front-end's newest-first
// ordering.
func (l *Ledger) AddMarket(ctx context.Context, m domain.Market) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[m.ID]; ok {
		return domain.ErrAlreadyExists
	}
	if m.Bets == nil {
		m.Bets = []domain.Bet{}
	}

	l.markets = append([]domain.Market{m}, l.markets...)
	l.index = make(map[string]int, len(l.markets))
	for i, mk := range l.markets {
		l.index[mk.ID] = i
	}

	l.persist(ctx)
	return nil
}

// SetMarkets replaces the entire market list.
func (l *Ledger) SetMarkets(ctx context.Context, markets []domain.Market) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.setMarketsLocked(markets)
	l.persist(ctx)
}

// RefreshMarkets re-seeds market metadata from the given catalog while
// preserving previously recorded bets, matched by market id. Catalog entries
// without a recorded counterpart start with an empty bet list.
func (l *Ledger) RefreshMarkets(ctx context.Context, catalog []domain.Market) {
	l.mu.Lock()
	defer l.mu.Unlock()

	refreshed := make([]domain.Market, len(catalog))
	copy(refreshed, catalog)
	for i := range refreshed {
		if pos, ok := l.index[refreshed[i].ID]; ok && l.markets[pos].Bets != nil {
			refreshed[i].Bets = l.markets[pos].Bets
		} else if refreshed[i].Bets == nil {
			refreshed[i].Bets = []domain.Bet{}
		}
	}

	l.setMarketsLocked(refreshed)
	l.persist(ctx)
}

// AddBet appends a bet to its target market and to the bettor's history.
// The market must exist and be open. Bets keep insertion order.
func (l *Ledger) AddBet(ctx context.Context, bet domain.Bet) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.index[bet.MarketID]
	if !ok {
		l.logger.WarnContext(ctx, "bet for unknown market dropped",
			slog.String("market_id", bet.MarketID),
			slog.String("user_id", bet.UserID),
		)
		return domain.ErrNotFound
	}

	m := &l.markets[pos]
	switch m.Status {
	case domain.MarketStatusResolved:
		return domain.ErrMarketResolved
	case domain.MarketStatusClosed:
		return domain.ErrMarketClosed
	}

	m.Bets = append(m.Bets, bet)
	l.userBets[bet.UserID] = append(l.userBets[bet.UserID], bet)

	l.persist(ctx)
	return nil
}

// Resolve declares the outcome of a market and applies the resulting rewards
// and score deltas. Resolving an already-resolved market is a no-op that
// returns the existing result.
func (l *Ledger) Resolve(ctx context.Context, marketID string, outcome domain.BetSide, now time.Time) (engine.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.index[marketID]
	if !ok {
		return engine.Result{}, domain.ErrNotFound
	}

	res, err := engine.Resolve(l.markets[pos], outcome, now)
	if err != nil {
		return engine.Result{}, err
	}
	if res.AlreadyResolved {
		return res, nil
	}

	l.markets[pos] = res.Market
	l.rewards = append(l.rewards, res.Rewards...)
	for user, delta := range res.ScoreDeltas {
		l.scores[user] += delta
	}

	l.persist(ctx)
	return res, nil
}

// Claim marks the unclaimed reward for (userID, marketID) as claimed and
// returns the updated record. An absent or already-claimed reward yields
// ErrNotFound with state unchanged.
func (l *Ledger) Claim(ctx context.Context, userID, marketID string) (domain.ClaimableReward, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.rewards {
		r := &l.rewards[i]
		if r.UserID == userID && r.MarketID == marketID && !r.Claimed {
			r.Claimed = true
			l.persist(ctx)
			return *r, nil
		}
	}
	return domain.ClaimableReward{}, domain.ErrNotFound
}

// RewardsByUser returns every reward record, claimed or not, for a user.
func (l *Ledger) RewardsByUser(userID string) []domain.ClaimableReward {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []domain.ClaimableReward
	for _, r := range l.rewards {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// BetsByUser returns the user's bet history in placement order.
func (l *Ledger) BetsByUser(userID string) []domain.Bet {
	l.mu.Lock()
	defer l.mu.Unlock()

	bets := l.userBets[userID]
	out := make([]domain.Bet, len(bets))
	copy(out, bets)
	return out
}

// Market returns a copy of the market with the given id.
func (l *Ledger) Market(id string) (domain.Market, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.index[id]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return copyMarket(l.markets[pos]), nil
}

// Markets returns a copy of every market in list order.
func (l *Ledger) Markets() []domain.Market {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Market, len(l.markets))
	for i, m := range l.markets {
		out[i] = copyMarket(m)
	}
	return out
}

// Score returns the user's sonic score, zero if the user has none.
func (l *Ledger) Score(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scores[userID]
}

// SetScore assigns an absolute score, used when the wallet layer grants a
// newly connected address its initial score.
func (l *Ledger) SetScore(ctx context.Context, userID string, score int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.scores[userID] = score
	l.persist(ctx)
}

// Scores returns a copy of the full score map.
func (l *Ledger) Scores() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]int, len(l.scores))
	for k, v := range l.scores {
		out[k] = v
	}
	return out
}

func copyMarket(m domain.Market) domain.Market {
	bets := make([]domain.Bet, len(m.Bets))
	copy(bets, m.Bets)
	m.Bets = bets
	return m
}
