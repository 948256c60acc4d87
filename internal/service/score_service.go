package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/sonicbet/sonicbet/internal/domain"
	"github.com/sonicbet/sonicbet/internal/ledger"
)

// defaultLeaderboardSize caps the leaderboard when the caller asks for
// everything.
const defaultLeaderboardSize = 25

// ScoreService serves sonic scores and the leaderboard. The ledger holds
// the authoritative score map; the Redis sorted set, when configured, serves
// ranked reads.
type ScoreService struct {
	ledger      *ledger.Ledger
	leaderboard domain.Leaderboard
	logger      *slog.Logger
}

// NewScoreService creates a ScoreService. leaderboard may be nil, in which
// case rankings are computed from the ledger's score map.
func NewScoreService(l *ledger.Ledger, leaderboard domain.Leaderboard, logger *slog.Logger) *ScoreService {
	return &ScoreService{
		ledger:      l,
		leaderboard: leaderboard,
		logger:      logger.With(slog.String("component", "score_service")),
	}
}

// Score returns a user's sonic score, zero for unknown users.
func (s *ScoreService) Score(ctx context.Context, userID string) int {
	return s.ledger.Score(userID)
}

// InitScore assigns a starting score to a newly connected address, keeping
// the leaderboard in step.
func (s *ScoreService) InitScore(ctx context.Context, userID string, score int) {
	s.ledger.SetScore(ctx, userID, score)

	if s.leaderboard != nil {
		if err := s.leaderboard.SetScore(ctx, userID, score); err != nil {
			s.logger.WarnContext(ctx, "leaderboard init failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Top returns the n highest-scoring users. The Redis sorted set is
// preferred; the ledger's score map is the fallback.
func (s *ScoreService) Top(ctx context.Context, n int) ([]domain.ScoreEntry, error) {
	if n <= 0 {
		n = defaultLeaderboardSize
	}

	if s.leaderboard != nil {
		entries, err := s.leaderboard.Top(ctx, n)
		if err == nil {
			return entries, nil
		}
		s.logger.WarnContext(ctx, "leaderboard read failed, falling back to ledger",
			slog.String("error", err.Error()),
		)
	}

	scores := s.ledger.Scores()
	entries := make([]domain.ScoreEntry, 0, len(scores))
	for user, score := range scores {
		entries = append(entries, domain.ScoreEntry{UserID: user, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}
