package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sonicbet/sonicbet/internal/domain"
	"github.com/sonicbet/sonicbet/internal/engine"
	"github.com/sonicbet/sonicbet/internal/service"
)

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type fakeMarkets struct {
	markets map[string]domain.Market
}

func (f *fakeMarkets) List(context.Context, domain.ListOpts) []domain.Market {
	out := make([]domain.Market, 0, len(f.markets))
	for _, m := range f.markets {
		out = append(out, m)
	}
	return out
}

func (f *fakeMarkets) Get(_ context.Context, id string) (domain.Market, error) {
	m, ok := f.markets[id]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeMarkets) Create(_ context.Context, p service.CreateMarketParams) (domain.Market, error) {
	m := domain.Market{ID: "new", Title: p.Title, Status: domain.MarketStatusOpen, Bets: []domain.Bet{}}
	f.markets[m.ID] = m
	return m, nil
}

func (f *fakeMarkets) RefreshFromCatalog(context.Context) ([]domain.Market, error) {
	return f.List(context.Background(), domain.ListOpts{}), nil
}

type fakeBets struct {
	err  error
	bets map[string][]domain.Bet
}

func (f *fakeBets) PlaceBet(_ context.Context, p service.PlaceBetParams) (domain.Bet, error) {
	if f.err != nil {
		return domain.Bet{}, f.err
	}
	bet := domain.Bet{ID: "b1", UserID: p.UserID, MarketID: p.MarketID, Amount: p.Amount, Side: p.Side}
	return bet, nil
}

func (f *fakeBets) BetsByUser(_ context.Context, userID string) []domain.Bet {
	return f.bets[userID]
}

type fakeSettlements struct {
	err error
}

func (f *fakeSettlements) Resolve(_ context.Context, marketID string, outcome domain.BetSide) (engine.Result, error) {
	if f.err != nil {
		return engine.Result{}, f.err
	}
	result := outcome
	return engine.Result{
		Market: domain.Market{ID: marketID, Status: domain.MarketStatusResolved, Result: &result},
		Settlement: domain.Settlement{
			MarketID: marketID, Result: outcome, TotalPool: 140, WinningBets: 1, ResolvedAt: time.Now(),
		},
		Rewards: []domain.ClaimableReward{{UserID: "alice", MarketID: marketID, Amount: 140}},
	}, nil
}

func (f *fakeSettlements) RecentSettlements(context.Context, int) ([]domain.Settlement, error) {
	return nil, nil
}

type fakeRewards struct {
	claimed map[string]bool
}

func (f *fakeRewards) Claim(_ context.Context, userID, marketID string) (domain.ClaimableReward, error) {
	key := userID + "/" + marketID
	if f.claimed[key] {
		return domain.ClaimableReward{}, domain.ErrNotFound
	}
	f.claimed[key] = true
	return domain.ClaimableReward{UserID: userID, MarketID: marketID, Amount: 42, Claimed: true}, nil
}

func (f *fakeRewards) RewardsByUser(context.Context, string) []domain.ClaimableReward {
	return nil
}

type fakeScores struct{}

func (fakeScores) Top(context.Context, int) ([]domain.ScoreEntry, error) {
	return []domain.ScoreEntry{{UserID: "alice", Score: 30}}, nil
}
func (fakeScores) Score(context.Context, string) int { return 30 }

// ---------------------------------------------------------------------------
// tests
// ---------------------------------------------------------------------------

func TestGetMarket(t *testing.T) {
	require := require.New(t)

	h := NewMarketHandler(&fakeMarkets{markets: map[string]domain.Market{
		"m1": {ID: "m1", Title: "t", Status: domain.MarketStatusOpen},
	}}, discard())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/markets/{id}", h.GetMarket)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/m1", nil))
	require.Equal(http.StatusOK, rec.Code)

	var m domain.Market
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &m))
	require.Equal("m1", m.ID)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/ghost", nil))
	require.Equal(http.StatusNotFound, rec.Code)
}

func TestPlaceBetStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		svcErr error
		body   string
		want   int
	}{
		{"created", nil, `{"userId":"u","marketId":"m1","amount":10,"side":"yes"}`, http.StatusCreated},
		{"bad body", nil, `{not json`, http.StatusBadRequest},
		{"missing ids", nil, `{"amount":10,"side":"yes"}`, http.StatusBadRequest},
		{"invalid side", domain.ErrInvalidSide, `{"userId":"u","marketId":"m1","amount":10,"side":"maybe"}`, http.StatusBadRequest},
		{"out of bounds", domain.ErrBetOutOfBounds, `{"userId":"u","marketId":"m1","amount":1e6,"side":"yes"}`, http.StatusUnprocessableEntity},
		{"market resolved", domain.ErrMarketResolved, `{"userId":"u","marketId":"m1","amount":10,"side":"yes"}`, http.StatusUnprocessableEntity},
		{"unknown market", domain.ErrNotFound, `{"userId":"u","marketId":"x","amount":10,"side":"yes"}`, http.StatusNotFound},
		{"payment failed", domain.ErrPaymentFailed, `{"userId":"u","marketId":"m1","amount":10,"side":"yes"}`, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewBetHandler(&fakeBets{err: tc.svcErr}, discard())

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/bets", strings.NewReader(tc.body))
			h.PlaceBet(rec, req)
			require.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestListBetsRequiresUser(t *testing.T) {
	require := require.New(t)

	h := NewBetHandler(&fakeBets{bets: map[string][]domain.Bet{
		"u": {{ID: "b1", UserID: "u"}},
	}}, discard())

	rec := httptest.NewRecorder()
	h.ListBets(rec, httptest.NewRequest(http.MethodGet, "/api/bets", nil))
	require.Equal(http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ListBets(rec, httptest.NewRequest(http.MethodGet, "/api/bets?user=u", nil))
	require.Equal(http.StatusOK, rec.Code)

	var resp struct {
		Bets []domain.Bet `json:"bets"`
	}
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(resp.Bets, 1)

	// Unknown user yields an empty list, not null.
	rec = httptest.NewRecorder()
	h.ListBets(rec, httptest.NewRequest(http.MethodGet, "/api/bets?user=nobody", nil))
	require.Equal(http.StatusOK, rec.Code)
	require.Contains(rec.Body.String(), `"bets":[]`)
}

func TestResolveMarket(t *testing.T) {
	require := require.New(t)

	h := NewSettlementHandler(&fakeSettlements{}, discard())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/markets/{id}/resolve", h.ResolveMarket)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/markets/m1/resolve",
		strings.NewReader(`{"outcome":"yes"}`))
	mux.ServeHTTP(rec, req)
	require.Equal(http.StatusOK, rec.Code)

	var resp struct {
		Settlement      domain.Settlement        `json:"settlement"`
		Rewards         []domain.ClaimableReward `json:"rewards"`
		AlreadyResolved bool                     `json:"alreadyResolved"`
	}
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal("m1", resp.Settlement.MarketID)
	require.Len(resp.Rewards, 1)
	require.False(resp.AlreadyResolved)
}

func TestResolveUnknownMarket(t *testing.T) {
	h := NewSettlementHandler(&fakeSettlements{err: domain.ErrNotFound}, discard())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/markets/{id}/resolve", h.ResolveMarket)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/markets/ghost/resolve",
		strings.NewReader(`{"outcome":"no"}`))
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClaimRewardOnceOnly(t *testing.T) {
	require := require.New(t)

	h := NewRewardHandler(&fakeRewards{claimed: map[string]bool{}}, discard())
	body := `{"userId":"alice","marketId":"m1"}`

	rec := httptest.NewRecorder()
	h.ClaimReward(rec, httptest.NewRequest(http.MethodPost, "/api/rewards/claim", strings.NewReader(body)))
	require.Equal(http.StatusOK, rec.Code)

	var reward domain.ClaimableReward
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &reward))
	require.True(reward.Claimed)

	rec = httptest.NewRecorder()
	h.ClaimReward(rec, httptest.NewRequest(http.MethodPost, "/api/rewards/claim", strings.NewReader(body)))
	require.Equal(http.StatusNotFound, rec.Code)
}

func TestLeaderboard(t *testing.T) {
	require := require.New(t)

	h := NewLeaderboardHandler(fakeScores{}, discard())

	rec := httptest.NewRecorder()
	h.Leaderboard(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard?limit=10", nil))
	require.Equal(http.StatusOK, rec.Code)
	require.Contains(rec.Body.String(), `"alice"`)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/scores/{user}", h.GetScore)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scores/alice", nil))
	require.Equal(http.StatusOK, rec.Code)
	require.Contains(rec.Body.String(), `"score":30`)
}

func TestCreateMarket(t *testing.T) {
	require := require.New(t)

	h := NewMarketHandler(&fakeMarkets{markets: map[string]domain.Market{}}, discard())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/markets",
		strings.NewReader(`{"title":"Will Sonic hit $1?","minBet":0.1,"maxBet":100,"closesAt":"2027-01-01T00:00:00Z"}`))
	h.CreateMarket(rec, req)
	require.Equal(http.StatusCreated, rec.Code)

	var m domain.Market
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &m))
	require.Equal("Will Sonic hit $1?", m.Title)
}

func TestHealth(t *testing.T) {
	require := require.New(t)

	h := NewHealthHandler("test")
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(http.StatusOK, rec.Code)
	require.Contains(rec.Body.String(), `"status":"ok"`)
}
