package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sonicbet/sonicbet/internal/domain"
	"github.com/sonicbet/sonicbet/internal/ledger"
)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type nopSnapshots struct{}

func (nopSnapshots) Load(context.Context) (domain.Snapshot, error) {
	return domain.Snapshot{}, domain.ErrNotFound
}
func (nopSnapshots) Save(context.Context, domain.Snapshot) error { return nil }

type fakeBus struct {
	published map[string][][]byte
	err       error
}

func newFakeBus() *fakeBus { return &fakeBus{published: map[string][][]byte{}} }

func (b *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	if b.err != nil {
		return b.err
	}
	b.published[channel] = append(b.published[channel], payload)
	return nil
}

func (b *fakeBus) Subscribe(context.Context, ...string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

type fakeBetHistory struct {
	inserted []domain.Bet
	err      error
}

func (h *fakeBetHistory) Insert(_ context.Context, b domain.Bet) error {
	if h.err != nil {
		return h.err
	}
	h.inserted = append(h.inserted, b)
	return nil
}
func (h *fakeBetHistory) ListByMarket(context.Context, string, domain.ListOpts) ([]domain.Bet, error) {
	return nil, nil
}
func (h *fakeBetHistory) ListByUser(context.Context, string, domain.ListOpts) ([]domain.Bet, error) {
	return nil, nil
}

type fakeRewardHistory struct {
	inserted []domain.ClaimableReward
	claimed  []string
}

func (h *fakeRewardHistory) Insert(_ context.Context, r domain.ClaimableReward) error {
	h.inserted = append(h.inserted, r)
	return nil
}
func (h *fakeRewardHistory) MarkClaimed(_ context.Context, userID, marketID string) error {
	h.claimed = append(h.claimed, userID+"/"+marketID)
	return nil
}
func (h *fakeRewardHistory) ListByUser(context.Context, string) ([]domain.ClaimableReward, error) {
	return nil, nil
}

type fakeSettlements struct {
	inserted []domain.Settlement
}

func (s *fakeSettlements) Insert(_ context.Context, st domain.Settlement) error {
	s.inserted = append(s.inserted, st)
	return nil
}
func (s *fakeSettlements) GetByMarket(context.Context, string) (domain.Settlement, error) {
	return domain.Settlement{}, domain.ErrNotFound
}
func (s *fakeSettlements) ListRecent(context.Context, int) ([]domain.Settlement, error) {
	return s.inserted, nil
}

type fakeLeaderboard struct {
	scores map[string]int
	err    error
}

func newFakeLeaderboard() *fakeLeaderboard { return &fakeLeaderboard{scores: map[string]int{}} }

func (l *fakeLeaderboard) IncrScore(_ context.Context, userID string, delta int) error {
	if l.err != nil {
		return l.err
	}
	l.scores[userID] += delta
	return nil
}
func (l *fakeLeaderboard) SetScore(_ context.Context, userID string, score int) error {
	if l.err != nil {
		return l.err
	}
	l.scores[userID] = score
	return nil
}
func (l *fakeLeaderboard) Score(_ context.Context, userID string) (int, error) {
	return l.scores[userID], nil
}
func (l *fakeLeaderboard) Top(context.Context, int) ([]domain.ScoreEntry, error) {
	if l.err != nil {
		return nil, l.err
	}
	return []domain.ScoreEntry{{UserID: "from-redis", Score: 999}}, nil
}

type fakeArchiver struct {
	archived []domain.Settlement
}

func (a *fakeArchiver) ArchiveSettlement(_ context.Context, st domain.Settlement, _ []domain.ClaimableReward) error {
	a.archived = append(a.archived, st)
	return nil
}

type fakePayer struct {
	paid []float64
	err  error
}

func (p *fakePayer) PayTreasury(_ context.Context, amount float64) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.paid = append(p.paid, amount)
	return "0xtxhash", nil
}

type fakeSigner struct{}

func (fakeSigner) SignText(string) (string, error) { return "0xsignature", nil }

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func openMarket(id string) domain.Market {
	return domain.Market{
		ID:          id,
		Title:       "Will it happen?",
		CreatorID:   "oracle",
		CreatedAt:   time.Now(),
		ClosesAt:    time.Now().Add(24 * time.Hour),
		InitialPool: 100,
		MinBet:      0.1,
		MaxBet:      1000,
		Status:      domain.MarketStatusOpen,
		Bets:        []domain.Bet{},
	}
}

func newLedger(t *testing.T, markets ...domain.Market) *ledger.Ledger {
	t.Helper()
	l, err := ledger.New(context.Background(), nopSnapshots{}, markets, discard())
	require.NoError(t, err)
	return l
}

// ---------------------------------------------------------------------------
// BettingService
// ---------------------------------------------------------------------------

func TestPlaceBetComputesFeeAndMirrors(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l := newLedger(t, openMarket("m1"))
	history := &fakeBetHistory{}
	payer := &fakePayer{}
	bus := newFakeBus()

	svc := NewBettingService(l, history, payer, fakeSigner{}, bus,
		BettingConfig{FeePct: 0.005, MinBet: 0.1, MaxBet: 1000}, discard())

	bet, err := svc.PlaceBet(ctx, PlaceBetParams{
		UserID: "0xAlice", MarketID: "m1", Amount: 100, Side: domain.BetSideYes,
	})
	require.NoError(err)
	require.NotEmpty(bet.ID)
	require.InDelta(0.5, bet.Fee, 1e-9)
	require.InDelta(100.5, bet.TotalAmount, 1e-9)
	require.Equal("0xsignature", bet.Signature)
	require.NotEmpty(bet.Message)
	require.Equal("0xtxhash", bet.TreasuryTxHash)

	// Payment covers stake plus fee.
	require.Len(payer.paid, 1)
	require.InDelta(100.5, payer.paid[0], 1e-9)

	// Ledger, mirror, and bus all saw the bet.
	m, err := l.Market("m1")
	require.NoError(err)
	require.Len(m.Bets, 1)
	require.Len(history.inserted, 1)
	require.Len(bus.published[ChannelBets], 1)
}

func TestPlaceBetValidation(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l := newLedger(t, openMarket("m1"))
	svc := NewBettingService(l, nil, nil, nil, nil,
		BettingConfig{FeePct: 0, MinBet: 0.1, MaxBet: 1000}, discard())

	_, err := svc.PlaceBet(ctx, PlaceBetParams{UserID: "u", MarketID: "m1", Amount: 1, Side: "maybe"})
	require.ErrorIs(err, domain.ErrInvalidSide)

	_, err = svc.PlaceBet(ctx, PlaceBetParams{UserID: "u", MarketID: "m1", Amount: 0.01, Side: domain.BetSideYes})
	require.ErrorIs(err, domain.ErrBetOutOfBounds)

	_, err = svc.PlaceBet(ctx, PlaceBetParams{UserID: "u", MarketID: "m1", Amount: 5000, Side: domain.BetSideYes})
	require.ErrorIs(err, domain.ErrBetOutOfBounds)

	_, err = svc.PlaceBet(ctx, PlaceBetParams{UserID: "u", MarketID: "nope", Amount: 1, Side: domain.BetSideYes})
	require.ErrorIs(err, domain.ErrNotFound)
}

func TestPlaceBetPaymentFailureAborts(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l := newLedger(t, openMarket("m1"))
	payer := &fakePayer{err: domain.ErrPaymentFailed}
	svc := NewBettingService(l, nil, payer, nil, nil,
		BettingConfig{FeePct: 0.005, MinBet: 0.1, MaxBet: 1000}, discard())

	_, err := svc.PlaceBet(ctx, PlaceBetParams{UserID: "u", MarketID: "m1", Amount: 10, Side: domain.BetSideNo})
	require.ErrorIs(err, domain.ErrPaymentFailed)

	// Nothing recorded when the payment bounced.
	m, err := l.Market("m1")
	require.NoError(err)
	require.Empty(m.Bets)
}

func TestPlaceBetMirrorFailureIsNonFatal(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l := newLedger(t, openMarket("m1"))
	history := &fakeBetHistory{err: errors.New("pg down")}
	svc := NewBettingService(l, history, nil, nil, nil,
		BettingConfig{FeePct: 0, MinBet: 0.1, MaxBet: 1000}, discard())

	bet, err := svc.PlaceBet(ctx, PlaceBetParams{UserID: "u", MarketID: "m1", Amount: 10, Side: domain.BetSideYes})
	require.NoError(err)
	require.Equal([]domain.Bet{bet}, svc.BetsByUser(ctx, "u"))
}

// ---------------------------------------------------------------------------
// SettlementService
// ---------------------------------------------------------------------------

func TestResolveFansOutToCollaborators(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	m := openMarket("m1")
	m.Bets = []domain.Bet{
		{ID: "b1", UserID: "alice", MarketID: "m1", Amount: 30, Side: domain.BetSideYes},
		{ID: "b2", UserID: "bob", MarketID: "m1", Amount: 10, Side: domain.BetSideNo},
	}
	l := newLedger(t, m)

	settlements := &fakeSettlements{}
	rewards := &fakeRewardHistory{}
	board := newFakeLeaderboard()
	archiver := &fakeArchiver{}
	bus := newFakeBus()

	svc := NewSettlementService(l, settlements, rewards, board, archiver, nil, bus, discard())

	res, err := svc.Resolve(ctx, "m1", domain.BetSideYes)
	require.NoError(err)
	require.False(res.AlreadyResolved)

	// Sole winner takes the whole pool: 100 + 30 + 10.
	require.Len(res.Rewards, 1)
	require.InDelta(140, res.Rewards[0].Amount, 1e-9)

	require.Len(settlements.inserted, 1)
	require.Len(rewards.inserted, 1)
	require.Equal(10, board.scores["alice"])
	require.Len(archiver.archived, 1)
	require.Len(bus.published[ChannelSettlements], 1)
}

func TestResolveTwiceIsNoOp(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l := newLedger(t, openMarket("m1"))
	settlements := &fakeSettlements{}
	svc := NewSettlementService(l, settlements, nil, nil, nil, nil, nil, discard())

	_, err := svc.Resolve(ctx, "m1", domain.BetSideNo)
	require.NoError(err)

	res, err := svc.Resolve(ctx, "m1", domain.BetSideYes)
	require.NoError(err)
	require.True(res.AlreadyResolved)
	require.Equal(domain.BetSideNo, *res.Market.Result)

	// The mirror only saw the first resolution.
	require.Len(settlements.inserted, 1)
}

func TestResolveUnknownMarket(t *testing.T) {
	l := newLedger(t)
	svc := NewSettlementService(l, nil, nil, nil, nil, nil, nil, discard())

	_, err := svc.Resolve(context.Background(), "ghost", domain.BetSideYes)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// ---------------------------------------------------------------------------
// RewardService
// ---------------------------------------------------------------------------

func TestClaimIsIdempotentAndMirrors(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	m := openMarket("m1")
	m.Bets = []domain.Bet{
		{ID: "b1", UserID: "alice", MarketID: "m1", Amount: 10, Side: domain.BetSideYes},
	}
	l := newLedger(t, m)

	settle := NewSettlementService(l, nil, nil, nil, nil, nil, nil, discard())
	_, err := settle.Resolve(ctx, "m1", domain.BetSideYes)
	require.NoError(err)

	history := &fakeRewardHistory{}
	bus := newFakeBus()
	svc := NewRewardService(l, history, nil, bus, discard())

	reward, err := svc.Claim(ctx, "alice", "m1")
	require.NoError(err)
	require.True(reward.Claimed)
	require.Equal([]string{"alice/m1"}, history.claimed)
	require.Len(bus.published[ChannelRewards], 1)

	_, err = svc.Claim(ctx, "alice", "m1")
	require.ErrorIs(err, domain.ErrNotFound)

	records := svc.RewardsByUser(ctx, "alice")
	require.Len(records, 1)
	require.True(records[0].Claimed)
}

// ---------------------------------------------------------------------------
// MarketService
// ---------------------------------------------------------------------------

func TestCreateMarketValidatesAndPrepends(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l := newLedger(t, openMarket("old"))
	bus := newFakeBus()
	svc := NewMarketService(l, bus, nil, discard())

	_, err := svc.Create(ctx, CreateMarketParams{Title: "  "})
	require.Error(err)

	_, err = svc.Create(ctx, CreateMarketParams{
		Title: "t", ClosesAt: time.Now().Add(-time.Hour), MinBet: 1, MaxBet: 2,
	})
	require.Error(err)

	m, err := svc.Create(ctx, CreateMarketParams{
		Title:       "Will Sonic hit $1?",
		CreatorID:   "oracle",
		ClosesAt:    time.Now().Add(time.Hour),
		InitialPool: 50,
		MinBet:      0.1,
		MaxBet:      100,
	})
	require.NoError(err)
	require.NotEmpty(m.ID)
	require.Equal(domain.MarketStatusOpen, m.Status)

	markets := svc.List(ctx, domain.ListOpts{})
	require.Len(markets, 2)
	require.Equal(m.ID, markets[0].ID)
	require.Len(bus.published[ChannelMarkets], 1)
}

func TestListPagination(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l := newLedger(t, openMarket("a"), openMarket("b"), openMarket("c"))
	svc := NewMarketService(l, nil, nil, discard())

	page := svc.List(ctx, domain.ListOpts{Limit: 2})
	require.Len(page, 2)

	page = svc.List(ctx, domain.ListOpts{Offset: 2})
	require.Len(page, 1)
	require.Equal("c", page[0].ID)

	page = svc.List(ctx, domain.ListOpts{Offset: 10})
	require.Empty(page)
}

func TestRefreshPreservesBets(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	m := openMarket("m1")
	m.Bets = []domain.Bet{{ID: "b1", UserID: "u", MarketID: "m1", Amount: 5, Side: domain.BetSideYes}}
	l := newLedger(t, m)
	svc := NewMarketService(l, nil, nil, discard())

	catalog := []domain.Market{openMarket("m1"), openMarket("m2")}
	refreshed := svc.Refresh(ctx, catalog)

	require.Len(refreshed, 2)
	require.Len(refreshed[0].Bets, 1)
	require.Equal("b1", refreshed[0].Bets[0].ID)
	require.Empty(refreshed[1].Bets)
}

func TestRefreshFromCatalog(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l := newLedger(t)
	svc := NewMarketService(l, nil, nil, discard())
	_, err := svc.RefreshFromCatalog(ctx)
	require.Error(err)

	svc = NewMarketService(l, nil, func(time.Time) []domain.Market {
		return []domain.Market{openMarket("m1"), openMarket("m2")}
	}, discard())
	markets, err := svc.RefreshFromCatalog(ctx)
	require.NoError(err)
	require.Len(markets, 2)
}

// ---------------------------------------------------------------------------
// ScoreService
// ---------------------------------------------------------------------------

func TestTopPrefersLeaderboard(t *testing.T) {
	require := require.New(t)

	l := newLedger(t)
	svc := NewScoreService(l, newFakeLeaderboard(), discard())

	entries, err := svc.Top(context.Background(), 5)
	require.NoError(err)
	require.Equal("from-redis", entries[0].UserID)
}

func TestTopFallsBackToLedger(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l := newLedger(t)
	l.SetScore(ctx, "alice", 30)
	l.SetScore(ctx, "bob", 10)
	l.SetScore(ctx, "carol", 30)

	board := newFakeLeaderboard()
	board.err = errors.New("redis down")
	svc := NewScoreService(l, board, discard())

	entries, err := svc.Top(ctx, 2)
	require.NoError(err)
	require.Len(entries, 2)
	// Ties break by user id.
	require.Equal("alice", entries[0].UserID)
	require.Equal("carol", entries[1].UserID)
}

func TestInitScore(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l := newLedger(t)
	board := newFakeLeaderboard()
	svc := NewScoreService(l, board, discard())

	svc.InitScore(ctx, "dave", 100)
	require.Equal(100, svc.Score(ctx, "dave"))
	require.Equal(100, board.scores["dave"])
}
