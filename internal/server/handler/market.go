package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sonicbet/sonicbet/internal/domain"
	"github.com/sonicbet/sonicbet/internal/service"
)

// MarketService is what the market handler needs from the service layer.
type MarketService interface {
	List(ctx context.Context, opts domain.ListOpts) []domain.Market
	Get(ctx context.Context, id string) (domain.Market, error)
	Create(ctx context.Context, p service.CreateMarketParams) (domain.Market, error)
	RefreshFromCatalog(ctx context.Context) ([]domain.Market, error)
}

// MarketHandler serves market endpoints.
type MarketHandler struct {
	markets MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(markets MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{markets: markets, logger: logger}
}

// listMarketsResponse wraps the list endpoint output with pagination echo.
type listMarketsResponse struct {
	Markets []domain.Market `json:"markets"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// ListMarkets returns markets newest first.
// GET /api/markets?limit=50&offset=0
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)
	writeJSON(w, http.StatusOK, listMarketsResponse{
		Markets: h.markets.List(r.Context(), opts),
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	})
}

// GetMarket returns a single market by id.
// GET /api/markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	market, err := h.markets.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, market)
}

// createMarketRequest mirrors the front-end's market creation payload.
type createMarketRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatorID   string    `json:"creatorId"`
	ClosesAt    time.Time `json:"closesAt"`
	InitialPool float64   `json:"initialPool"`
	MinBet      float64   `json:"minBet"`
	MaxBet      float64   `json:"maxBet"`
}

// CreateMarket opens a new market.
// POST /api/markets
func (h *MarketHandler) CreateMarket(w http.ResponseWriter, r *http.Request) {
	var req createMarketRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	market, err := h.markets.Create(r.Context(), service.CreateMarketParams{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   req.CreatorID,
		ClosesAt:    req.ClosesAt,
		InitialPool: req.InitialPool,
		MinBet:      req.MinBet,
		MaxBet:      req.MaxBet,
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "handler: create market rejected",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, market)
}

// RefreshMarkets re-seeds market metadata from the catalog, keeping bets.
// POST /api/markets/refresh
func (h *MarketHandler) RefreshMarkets(w http.ResponseWriter, r *http.Request) {
	markets, err := h.markets.RefreshFromCatalog(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: refresh markets failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to refresh markets")
		return
	}
	writeJSON(w, http.StatusOK, listMarketsResponse{Markets: markets, Limit: len(markets)})
}
