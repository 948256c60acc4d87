package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sonicbet/sonicbet/internal/domain"
	"github.com/sonicbet/sonicbet/internal/seed"
	"github.com/sonicbet/sonicbet/internal/server"
	"github.com/sonicbet/sonicbet/internal/server/handler"
	"github.com/sonicbet/sonicbet/internal/server/ws"
	"github.com/sonicbet/sonicbet/internal/service"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// Version is stamped at build time via -ldflags.
var Version = "dev"

// ServerMode runs the HTTP API and the websocket hub until the context is
// cancelled.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	marketSvc := service.NewMarketService(deps.Ledger, deps.SignalBus,
		func(now time.Time) []domain.Market {
			return seed.Markets(now, a.cfg.Sonic.MinBet, a.cfg.Sonic.MaxBet)
		}, a.logger)

	var payments service.PaymentSender
	var signer service.BetSigner
	if deps.Wallet != nil {
		payments = deps.Wallet
		signer = deps.Wallet
	}
	bettingSvc := service.NewBettingService(deps.Ledger, deps.BetHistory, payments, signer,
		deps.SignalBus, service.BettingConfig{
			FeePct: a.cfg.Sonic.BetFeePct,
			MinBet: a.cfg.Sonic.MinBet,
			MaxBet: a.cfg.Sonic.MaxBet,
		}, a.logger)

	settlementSvc := service.NewSettlementService(deps.Ledger, deps.SettlementStore,
		deps.RewardHistory, deps.Leaderboard, deps.Archiver, deps.Notifier,
		deps.SignalBus, a.logger)

	rewardSvc := service.NewRewardService(deps.Ledger, deps.RewardHistory,
		deps.Notifier, deps.SignalBus, a.logger)

	scoreSvc := service.NewScoreService(deps.Ledger, deps.Leaderboard, a.logger)

	hub := ws.NewHub(deps.SignalBus, a.logger)

	srv := server.NewServer(server.Config{
		Port:            a.cfg.Server.Port,
		CORSOrigins:     a.cfg.Server.CORSOrigins,
		APIKey:          a.cfg.Server.APIKey,
		RateLimitPerMin: a.cfg.Server.RateLimitPerMin,
	}, server.Handlers{
		Health:      handler.NewHealthHandler(Version),
		Markets:     handler.NewMarketHandler(marketSvc, a.logger),
		Bets:        handler.NewBetHandler(bettingSvc, a.logger),
		Settlements: handler.NewSettlementHandler(settlementSvc, a.logger),
		Rewards:     handler.NewRewardHandler(rewardSvc, a.logger),
		Leaderboard: handler.NewLeaderboardHandler(scoreSvc, a.logger),
	}, hub, deps.RateLimiter, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := hub.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// SeedMode refreshes the market catalog, preserving recorded bets, and
// exits. Used to reset a demo deployment without dropping history.
func (a *App) SeedMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting seed mode")

	catalog := seed.Markets(time.Now(), a.cfg.Sonic.MinBet, a.cfg.Sonic.MaxBet)
	marketSvc := service.NewMarketService(deps.Ledger, deps.SignalBus, nil, a.logger)
	markets := marketSvc.Refresh(ctx, catalog)

	a.logger.InfoContext(ctx, "seed complete", slog.Int("markets", len(markets)))
	return nil
}
