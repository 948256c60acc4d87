package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sonicbet/sonicbet/internal/domain"
)

// scoresKey is the sorted set mapping user id to sonic score.
const scoresKey = "sonicbet:scores"

// Leaderboard implements domain.Leaderboard using a Redis sorted set.
type Leaderboard struct {
	rdb *redis.Client
}

// NewLeaderboard creates a Leaderboard backed by the given Client.
func NewLeaderboard(c *Client) *Leaderboard {
	return &Leaderboard{rdb: c.Underlying()}
}

// IncrScore adds delta to the user's score, creating the member at delta if
// absent.
func (l *Leaderboard) IncrScore(ctx context.Context, userID string, delta int) error {
	if err := l.rdb.ZIncrBy(ctx, scoresKey, float64(delta), userID).Err(); err != nil {
		return fmt.Errorf("redis: incr score %s: %w", userID, err)
	}
	return nil
}

// SetScore assigns an absolute score.
func (l *Leaderboard) SetScore(ctx context.Context, userID string, score int) error {
	member := redis.Z{Score: float64(score), Member: userID}
	if err := l.rdb.ZAdd(ctx, scoresKey, member).Err(); err != nil {
		return fmt.Errorf("redis: set score %s: %w", userID, err)
	}
	return nil
}

// Score returns the user's score, zero when the user is not on the board.
func (l *Leaderboard) Score(ctx context.Context, userID string) (int, error) {
	score, err := l.rdb.ZScore(ctx, scoresKey, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis: get score %s: %w", userID, err)
	}
	return int(score), nil
}

// Top returns the n highest-scored users in descending order.
func (l *Leaderboard) Top(ctx context.Context, n int) ([]domain.ScoreEntry, error) {
	if n <= 0 {
		n = 10
	}
	members, err := l.rdb.ZRevRangeWithScores(ctx, scoresKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: leaderboard top %d: %w", n, err)
	}

	entries := make([]domain.ScoreEntry, 0, len(members))
	for _, m := range members {
		user, ok := m.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, domain.ScoreEntry{UserID: user, Score: int(m.Score)})
	}
	return entries, nil
}

// Compile-time interface check.
var _ domain.Leaderboard = (*Leaderboard)(nil)
