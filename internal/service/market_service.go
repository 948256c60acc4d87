package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sonicbet/sonicbet/internal/domain"
	"github.com/sonicbet/sonicbet/internal/ledger"
)

// CatalogFunc supplies the current seed catalog for a refresh.
type CatalogFunc func(now time.Time) []domain.Market

// MarketService handles market listing, creation, and catalog refresh.
type MarketService struct {
	ledger  *ledger.Ledger
	bus     domain.SignalBus
	catalog CatalogFunc
	logger  *slog.Logger
}

// NewMarketService creates a MarketService. catalog may be nil when refresh
// is not offered.
func NewMarketService(l *ledger.Ledger, bus domain.SignalBus, catalog CatalogFunc, logger *slog.Logger) *MarketService {
	return &MarketService{
		ledger:  l,
		bus:     bus,
		catalog: catalog,
		logger:  logger.With(slog.String("component", "market_service")),
	}
}

// List returns markets in ledger order (newest first), paginated.
func (s *MarketService) List(ctx context.Context, opts domain.ListOpts) []domain.Market {
	markets := s.ledger.Markets()

	if opts.Offset > 0 {
		if opts.Offset >= len(markets) {
			return []domain.Market{}
		}
		markets = markets[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(markets) {
		markets = markets[:opts.Limit]
	}
	return markets
}

// Get returns a single market by id.
func (s *MarketService) Get(ctx context.Context, id string) (domain.Market, error) {
	return s.ledger.Market(id)
}

// CreateMarketParams are the caller-supplied fields of a new market.
type CreateMarketParams struct {
	Title       string
	Description string
	CreatorID   string
	ClosesAt    time.Time
	InitialPool float64
	MinBet      float64
	MaxBet      float64
}

// Create validates the parameters, builds an open market with a fresh id,
// and prepends it to the ledger.
func (s *MarketService) Create(ctx context.Context, p CreateMarketParams) (domain.Market, error) {
	if strings.TrimSpace(p.Title) == "" {
		return domain.Market{}, fmt.Errorf("market_service: title must not be empty")
	}
	now := time.Now()
	if !p.ClosesAt.After(now) {
		return domain.Market{}, fmt.Errorf("market_service: closes_at must be in the future")
	}
	if p.InitialPool < 0 {
		return domain.Market{}, fmt.Errorf("market_service: initial pool must not be negative")
	}
	if p.MinBet <= 0 || p.MaxBet < p.MinBet {
		return domain.Market{}, fmt.Errorf("market_service: bet bounds must satisfy 0 < min <= max")
	}

	m := domain.Market{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(p.Title),
		Description: p.Description,
		CreatorID:   p.CreatorID,
		CreatedAt:   now,
		ClosesAt:    p.ClosesAt,
		InitialPool: p.InitialPool,
		MinBet:      p.MinBet,
		MaxBet:      p.MaxBet,
		Status:      domain.MarketStatusOpen,
		Bets:        []domain.Bet{},
	}

	if err := s.ledger.AddMarket(ctx, m); err != nil {
		return domain.Market{}, fmt.Errorf("market_service: add market: %w", err)
	}

	s.logger.InfoContext(ctx, "market created",
		slog.String("market_id", m.ID),
		slog.String("title", m.Title),
	)
	publishEvent(ctx, s.bus, s.logger, ChannelMarkets, Event{Type: "market.created", Market: &m})

	return m, nil
}

// Refresh re-seeds market metadata from the catalog while keeping every
// recorded bet, matched by market id.
func (s *MarketService) Refresh(ctx context.Context, catalog []domain.Market) []domain.Market {
	s.ledger.RefreshMarkets(ctx, catalog)
	markets := s.ledger.Markets()

	s.logger.InfoContext(ctx, "markets refreshed from catalog",
		slog.Int("count", len(markets)),
	)
	publishEvent(ctx, s.bus, s.logger, ChannelMarkets, Event{Type: "markets.refreshed"})

	return markets
}

// RefreshFromCatalog refreshes using the configured catalog provider.
func (s *MarketService) RefreshFromCatalog(ctx context.Context) ([]domain.Market, error) {
	if s.catalog == nil {
		return nil, fmt.Errorf("market_service: no catalog configured")
	}
	return s.Refresh(ctx, s.catalog(time.Now())), nil
}
