package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sonicbet/sonicbet/internal/domain"
	"github.com/sonicbet/sonicbet/internal/service"
)

// BettingService is what the bet handler needs from the service layer.
type BettingService interface {
	PlaceBet(ctx context.Context, p service.PlaceBetParams) (domain.Bet, error)
	BetsByUser(ctx context.Context, userID string) []domain.Bet
}

// BetHandler serves bet endpoints.
type BetHandler struct {
	bets   BettingService
	logger *slog.Logger
}

// NewBetHandler creates a BetHandler.
func NewBetHandler(bets BettingService, logger *slog.Logger) *BetHandler {
	return &BetHandler{bets: bets, logger: logger}
}

// placeBetRequest mirrors the front-end's bet payload.
type placeBetRequest struct {
	UserID   string  `json:"userId"`
	MarketID string  `json:"marketId"`
	Amount   float64 `json:"amount"`
	Side     string  `json:"side"`
}

// PlaceBet records a new bet.
// POST /api/bets
func (h *BetHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	var req placeBetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.MarketID == "" {
		writeError(w, http.StatusBadRequest, "userId and marketId are required")
		return
	}

	bet, err := h.bets.PlaceBet(r.Context(), service.PlaceBetParams{
		UserID:   req.UserID,
		MarketID: req.MarketID,
		Amount:   req.Amount,
		Side:     domain.BetSide(req.Side),
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "handler: bet rejected",
			slog.String("market_id", req.MarketID),
			slog.String("user_id", req.UserID),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, bet)
}

// ListBets returns a user's bet history.
// GET /api/bets?user=0x...
func (h *BetHandler) ListBets(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		writeError(w, http.StatusBadRequest, "missing user query parameter")
		return
	}

	bets := h.bets.BetsByUser(r.Context(), user)
	if bets == nil {
		bets = []domain.Bet{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bets": bets})
}
