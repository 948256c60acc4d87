package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sonicbet/sonicbet/internal/domain"
	"github.com/sonicbet/sonicbet/internal/engine"
)

// SettlementService is what the settlement handler needs from the service
// layer.
type SettlementService interface {
	Resolve(ctx context.Context, marketID string, outcome domain.BetSide) (engine.Result, error)
	RecentSettlements(ctx context.Context, limit int) ([]domain.Settlement, error)
}

// SettlementHandler serves market resolution and settlement history.
type SettlementHandler struct {
	settlements SettlementService
	logger      *slog.Logger
}

// NewSettlementHandler creates a SettlementHandler.
func NewSettlementHandler(settlements SettlementService, logger *slog.Logger) *SettlementHandler {
	return &SettlementHandler{settlements: settlements, logger: logger}
}

// resolveRequest carries the declared outcome.
type resolveRequest struct {
	Outcome string `json:"outcome"`
}

// resolveResponse reports the settlement and rewards; alreadyResolved marks
// the idempotent no-op case.
type resolveResponse struct {
	Market          domain.Market            `json:"market"`
	Settlement      domain.Settlement        `json:"settlement"`
	Rewards         []domain.ClaimableReward `json:"rewards"`
	AlreadyResolved bool                     `json:"alreadyResolved"`
}

// ResolveMarket declares the outcome of a market.
// POST /api/markets/{id}/resolve
func (h *SettlementHandler) ResolveMarket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var req resolveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.settlements.Resolve(r.Context(), id, domain.BetSide(req.Outcome))
	if err != nil {
		h.logger.WarnContext(r.Context(), "handler: resolve rejected",
			slog.String("market_id", id),
			slog.String("outcome", req.Outcome),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	rewards := res.Rewards
	if rewards == nil {
		rewards = []domain.ClaimableReward{}
	}
	writeJSON(w, http.StatusOK, resolveResponse{
		Market:          res.Market,
		Settlement:      res.Settlement,
		Rewards:         rewards,
		AlreadyResolved: res.AlreadyResolved,
	})
}

// ListSettlements returns recent settlements from the history mirror.
// GET /api/settlements?limit=20
func (h *SettlementHandler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	settlements, err := h.settlements.RecentSettlements(r.Context(), opts.Limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list settlements failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list settlements")
		return
	}
	if settlements == nil {
		settlements = []domain.Settlement{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"settlements": settlements})
}
