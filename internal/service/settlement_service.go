package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sonicbet/sonicbet/internal/domain"
	"github.com/sonicbet/sonicbet/internal/engine"
	"github.com/sonicbet/sonicbet/internal/ledger"
	"github.com/sonicbet/sonicbet/internal/notify"
)

// SettlementService resolves markets and fans the outcome out to the durable
// mirrors, the leaderboard, the archive, the bus, and operator channels.
// Only the ledger mutation can fail the call; everything downstream is
// best-effort.
type SettlementService struct {
	ledger      *ledger.Ledger
	settlements domain.SettlementStore
	rewards     domain.RewardHistoryStore
	leaderboard domain.Leaderboard
	archiver    domain.SettlementArchiver
	notifier    *notify.Notifier
	bus         domain.SignalBus
	logger      *slog.Logger
}

// NewSettlementService creates a SettlementService. Every collaborator
// except the ledger may be nil.
func NewSettlementService(
	l *ledger.Ledger,
	settlements domain.SettlementStore,
	rewards domain.RewardHistoryStore,
	leaderboard domain.Leaderboard,
	archiver domain.SettlementArchiver,
	notifier *notify.Notifier,
	bus domain.SignalBus,
	logger *slog.Logger,
) *SettlementService {
	return &SettlementService{
		ledger:      l,
		settlements: settlements,
		rewards:     rewards,
		leaderboard: leaderboard,
		archiver:    archiver,
		notifier:    notifier,
		bus:         bus,
		logger:      logger.With(slog.String("component", "settlement_service")),
	}
}

// Resolve declares the outcome of a market. Resolving a market that already
// has a result is a no-op returning the recorded outcome.
func (s *SettlementService) Resolve(ctx context.Context, marketID string, outcome domain.BetSide) (engine.Result, error) {
	res, err := s.ledger.Resolve(ctx, marketID, outcome, time.Now())
	if err != nil {
		return engine.Result{}, fmt.Errorf("settlement_service: resolve %s: %w", marketID, err)
	}
	if res.AlreadyResolved {
		s.logger.InfoContext(ctx, "market already resolved",
			slog.String("market_id", marketID),
		)
		return res, nil
	}

	s.logger.InfoContext(ctx, "market resolved",
		slog.String("market_id", marketID),
		slog.String("result", string(outcome)),
		slog.Float64("total_pool", res.Settlement.TotalPool),
		slog.Int("winning_bets", res.Settlement.WinningBets),
	)

	s.mirror(ctx, res)
	publishEvent(ctx, s.bus, s.logger, ChannelSettlements,
		Event{Type: notify.EventMarketResolved, Settlement: &res.Settlement})

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, notify.EventMarketResolved,
			"Market resolved", notify.SettlementMessage(res.Settlement)); err != nil {
			s.logger.WarnContext(ctx, "settlement notification failed",
				slog.String("market_id", marketID),
				slog.String("error", err.Error()),
			)
		}
	}

	return res, nil
}

// mirror pushes the settlement, its rewards, and the score deltas into the
// durable collaborators. Each failure is logged and skipped.
func (s *SettlementService) mirror(ctx context.Context, res engine.Result) {
	if s.settlements != nil {
		if err := s.settlements.Insert(ctx, res.Settlement); err != nil {
			s.logger.WarnContext(ctx, "settlement mirror failed",
				slog.String("market_id", res.Settlement.MarketID),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.rewards != nil {
		for _, r := range res.Rewards {
			if err := s.rewards.Insert(ctx, r); err != nil {
				s.logger.WarnContext(ctx, "reward mirror failed",
					slog.String("user_id", r.UserID),
					slog.String("market_id", r.MarketID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if s.leaderboard != nil {
		for user, delta := range res.ScoreDeltas {
			if err := s.leaderboard.IncrScore(ctx, user, delta); err != nil {
				s.logger.WarnContext(ctx, "leaderboard update failed",
					slog.String("user_id", user),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if s.archiver != nil {
		if err := s.archiver.ArchiveSettlement(ctx, res.Settlement, res.Rewards); err != nil {
			s.logger.WarnContext(ctx, "settlement archive failed",
				slog.String("market_id", res.Settlement.MarketID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// RecentSettlements returns the latest settlements from the durable mirror.
// Without a mirror configured there is no settlement history to serve.
func (s *SettlementService) RecentSettlements(ctx context.Context, limit int) ([]domain.Settlement, error) {
	if s.settlements == nil {
		return []domain.Settlement{}, nil
	}
	settlements, err := s.settlements.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("settlement_service: list recent: %w", err)
	}
	return settlements, nil
}
