package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sonicbet/sonicbet/internal/domain"
)

// RewardService is what the reward handler needs from the service layer.
type RewardService interface {
	Claim(ctx context.Context, userID, marketID string) (domain.ClaimableReward, error)
	RewardsByUser(ctx context.Context, userID string) []domain.ClaimableReward
}

// RewardHandler serves reward endpoints.
type RewardHandler struct {
	rewards RewardService
	logger  *slog.Logger
}

// NewRewardHandler creates a RewardHandler.
func NewRewardHandler(rewards RewardService, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{rewards: rewards, logger: logger}
}

// ListRewards returns a user's rewards, claimed and unclaimed.
// GET /api/rewards?user=0x...
func (h *RewardHandler) ListRewards(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		writeError(w, http.StatusBadRequest, "missing user query parameter")
		return
	}

	rewards := h.rewards.RewardsByUser(r.Context(), user)
	if rewards == nil {
		rewards = []domain.ClaimableReward{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rewards": rewards})
}

// claimRequest identifies the reward to claim.
type claimRequest struct {
	UserID   string `json:"userId"`
	MarketID string `json:"marketId"`
}

// ClaimReward marks a reward as claimed. Claiming twice yields 404.
// POST /api/rewards/claim
func (h *RewardHandler) ClaimReward(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.MarketID == "" {
		writeError(w, http.StatusBadRequest, "userId and marketId are required")
		return
	}

	reward, err := h.rewards.Claim(r.Context(), req.UserID, req.MarketID)
	if err != nil {
		h.logger.WarnContext(r.Context(), "handler: claim rejected",
			slog.String("user_id", req.UserID),
			slog.String("market_id", req.MarketID),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reward)
}
