package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sonicbet/sonicbet/internal/domain"
	"github.com/sonicbet/sonicbet/internal/ledger"
	"github.com/sonicbet/sonicbet/internal/wallet"
)

// PaymentSender submits the treasury transfer backing a bet. Implemented by
// wallet.Client.
type PaymentSender interface {
	PayTreasury(ctx context.Context, amount float64) (string, error)
}

// BetSigner signs the canonical bet message. Implemented by wallet.Client.
type BetSigner interface {
	SignText(message string) (string, error)
}

// BettingConfig carries the betting bounds and fee rate.
type BettingConfig struct {
	FeePct float64 // fraction of stake collected by the treasury
	MinBet float64
	MaxBet float64
}

// BettingService validates and places bets, collecting the treasury fee on
// top of the stake. Payments and signatures are optional collaborators:
// when absent the bet is recorded unsigned and unpaid, matching a local
// demo setup.
type BettingService struct {
	ledger   *ledger.Ledger
	history  domain.BetHistoryStore
	payments PaymentSender
	signer   BetSigner
	bus      domain.SignalBus
	cfg      BettingConfig
	logger   *slog.Logger
}

// NewBettingService creates a BettingService. history, payments, signer, and
// bus may be nil.
func NewBettingService(
	l *ledger.Ledger,
	history domain.BetHistoryStore,
	payments PaymentSender,
	signer BetSigner,
	bus domain.SignalBus,
	cfg BettingConfig,
	logger *slog.Logger,
) *BettingService {
	return &BettingService{
		ledger:   l,
		history:  history,
		payments: payments,
		signer:   signer,
		bus:      bus,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "betting_service")),
	}
}

// PlaceBetParams are the caller-supplied fields of a new bet.
type PlaceBetParams struct {
	UserID   string
	MarketID string
	Amount   float64
	Side     domain.BetSide
}

// PlaceBet validates the stake, computes the fee, optionally pays the
// treasury and signs the bet message, then records the bet in the ledger.
// The durable history mirror is best-effort.
func (s *BettingService) PlaceBet(ctx context.Context, p PlaceBetParams) (domain.Bet, error) {
	if !p.Side.Valid() {
		return domain.Bet{}, fmt.Errorf("betting_service: side %q: %w", p.Side, domain.ErrInvalidSide)
	}
	if p.UserID == "" {
		return domain.Bet{}, fmt.Errorf("betting_service: user id must not be empty")
	}

	m, err := s.ledger.Market(p.MarketID)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("betting_service: market %s: %w", p.MarketID, err)
	}
	minBet, maxBet := s.bounds(m)
	if p.Amount < minBet || p.Amount > maxBet {
		return domain.Bet{}, fmt.Errorf("betting_service: stake %g outside [%g, %g]: %w",
			p.Amount, minBet, maxBet, domain.ErrBetOutOfBounds)
	}

	fee := p.Amount * s.cfg.FeePct
	bet := domain.Bet{
		ID:          uuid.NewString(),
		UserID:      p.UserID,
		MarketID:    p.MarketID,
		Amount:      p.Amount,
		Fee:         fee,
		TotalAmount: p.Amount + fee,
		Side:        p.Side,
		Timestamp:   time.Now(),
	}

	if s.signer != nil {
		bet.Message = wallet.BetMessage(bet.UserID, bet.MarketID, bet.Amount, bet.Side, bet.Timestamp)
		sig, err := s.signer.SignText(bet.Message)
		if err != nil {
			return domain.Bet{}, fmt.Errorf("betting_service: sign bet: %w", err)
		}
		bet.Signature = sig
	}

	if s.payments != nil {
		txHash, err := s.payments.PayTreasury(ctx, bet.TotalAmount)
		if err != nil {
			return domain.Bet{}, fmt.Errorf("betting_service: treasury payment: %w", err)
		}
		bet.TreasuryTxHash = txHash
	}

	if err := s.ledger.AddBet(ctx, bet); err != nil {
		return domain.Bet{}, fmt.Errorf("betting_service: record bet: %w", err)
	}

	if s.history != nil {
		if err := s.history.Insert(ctx, bet); err != nil {
			s.logger.WarnContext(ctx, "bet history mirror failed",
				slog.String("bet_id", bet.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "bet placed",
		slog.String("bet_id", bet.ID),
		slog.String("market_id", bet.MarketID),
		slog.String("user_id", bet.UserID),
		slog.Float64("amount", bet.Amount),
		slog.String("side", string(bet.Side)),
	)
	publishEvent(ctx, s.bus, s.logger, ChannelBets, Event{Type: "bet.placed", Bet: &bet})

	return bet, nil
}

// BetsByUser returns the user's bet history in placement order.
func (s *BettingService) BetsByUser(ctx context.Context, userID string) []domain.Bet {
	return s.ledger.BetsByUser(userID)
}

// bounds returns the effective bet bounds for a market: per-market bounds
// when set, otherwise the configured defaults.
func (s *BettingService) bounds(m domain.Market) (float64, float64) {
	minBet, maxBet := s.cfg.MinBet, s.cfg.MaxBet
	if m.MinBet > 0 {
		minBet = m.MinBet
	}
	if m.MaxBet > 0 {
		maxBet = m.MaxBet
	}
	return minBet, maxBet
}
