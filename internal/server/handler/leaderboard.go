package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sonicbet/sonicbet/internal/domain"
)

// ScoreService is what the leaderboard handler needs from the service layer.
type ScoreService interface {
	Top(ctx context.Context, n int) ([]domain.ScoreEntry, error)
	Score(ctx context.Context, userID string) int
}

// LeaderboardHandler serves sonic score rankings.
type LeaderboardHandler struct {
	scores ScoreService
	logger *slog.Logger
}

// NewLeaderboardHandler creates a LeaderboardHandler.
func NewLeaderboardHandler(scores ScoreService, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{scores: scores, logger: logger}
}

// Leaderboard returns the highest-scoring users.
// GET /api/leaderboard?limit=25
func (h *LeaderboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	entries, err := h.scores.Top(r.Context(), opts.Limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: leaderboard failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	if entries == nil {
		entries = []domain.ScoreEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

// GetScore returns one user's sonic score.
// GET /api/scores/{user}
func (h *LeaderboardHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")
	if user == "" {
		writeError(w, http.StatusBadRequest, "missing user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"userId": user,
		"score":  h.scores.Score(r.Context(), user),
	})
}
