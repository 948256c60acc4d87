package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sonicbet/sonicbet/internal/domain"
	"github.com/sonicbet/sonicbet/internal/ledger"
	"github.com/sonicbet/sonicbet/internal/notify"
)

// RewardService claims rewards and serves reward history.
type RewardService struct {
	ledger   *ledger.Ledger
	history  domain.RewardHistoryStore
	notifier *notify.Notifier
	bus      domain.SignalBus
	logger   *slog.Logger
}

// NewRewardService creates a RewardService. history, notifier, and bus may
// be nil.
func NewRewardService(
	l *ledger.Ledger,
	history domain.RewardHistoryStore,
	notifier *notify.Notifier,
	bus domain.SignalBus,
	logger *slog.Logger,
) *RewardService {
	return &RewardService{
		ledger:   l,
		history:  history,
		notifier: notifier,
		bus:      bus,
		logger:   logger.With(slog.String("component", "reward_service")),
	}
}

// Claim marks the first unclaimed reward for (userID, marketID) as claimed.
// Claiming twice, or claiming a reward that was never won, returns
// domain.ErrNotFound.
func (s *RewardService) Claim(ctx context.Context, userID, marketID string) (domain.ClaimableReward, error) {
	reward, err := s.ledger.Claim(ctx, userID, marketID)
	if err != nil {
		return domain.ClaimableReward{}, fmt.Errorf("reward_service: claim %s/%s: %w", userID, marketID, err)
	}

	if s.history != nil {
		if err := s.history.MarkClaimed(ctx, userID, marketID); err != nil {
			s.logger.WarnContext(ctx, "reward claim mirror failed",
				slog.String("user_id", userID),
				slog.String("market_id", marketID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "reward claimed",
		slog.String("user_id", userID),
		slog.String("market_id", marketID),
		slog.Float64("amount", reward.Amount),
	)
	publishEvent(ctx, s.bus, s.logger, ChannelRewards,
		Event{Type: notify.EventRewardClaimed, Reward: &reward})

	if s.notifier != nil {
		msg := fmt.Sprintf("%s claimed %.2f S from market %s", userID, reward.Amount, marketID)
		if err := s.notifier.Notify(ctx, notify.EventRewardClaimed, "Reward claimed", msg); err != nil {
			s.logger.WarnContext(ctx, "claim notification failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	return reward, nil
}

// RewardsByUser returns every reward record for a user, claimed or not.
func (s *RewardService) RewardsByUser(ctx context.Context, userID string) []domain.ClaimableReward {
	return s.ledger.RewardsByUser(userID)
}
