package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sonicbet/sonicbet/internal/domain"
)

// RewardStore implements domain.RewardHistoryStore using PostgreSQL.
type RewardStore struct {
	pool *pgxpool.Pool
}

// NewRewardStore creates a RewardStore backed by the given connection pool.
func NewRewardStore(pool *pgxpool.Pool) *RewardStore {
	return &RewardStore{pool: pool}
}

// Insert records a claimable reward emitted at resolution time.
func (s *RewardStore) Insert(ctx context.Context, r domain.ClaimableReward) error {
	const query = `
		INSERT INTO rewards (user_id, market_id, amount, claimed)
		VALUES ($1, $2, $3, $4)`

	_, err := s.pool.Exec(ctx, query, r.UserID, r.MarketID, r.Amount, r.Claimed)
	if err != nil {
		return fmt.Errorf("postgres: insert reward %s/%s: %w", r.UserID, r.MarketID, err)
	}
	return nil
}

// MarkClaimed flips the first unclaimed reward for (userID, marketID).
// Claiming a reward that does not exist or is already claimed returns
// domain.ErrNotFound.
func (s *RewardStore) MarkClaimed(ctx context.Context, userID, marketID string) error {
	const query = `
		UPDATE rewards SET claimed = TRUE, claimed_at = NOW()
		WHERE id = (
			SELECT id FROM rewards
			WHERE user_id = $1 AND market_id = $2 AND NOT claimed
			ORDER BY id
			LIMIT 1
		)`

	tag, err := s.pool.Exec(ctx, query, userID, marketID)
	if err != nil {
		return fmt.Errorf("postgres: claim reward %s/%s: %w", userID, marketID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByUser returns every reward record for a user, claimed or not.
func (s *RewardStore) ListByUser(ctx context.Context, userID string) ([]domain.ClaimableReward, error) {
	const query = `
		SELECT user_id, market_id, amount, claimed
		FROM rewards WHERE user_id = $1 ORDER BY id`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list rewards for %s: %w", userID, err)
	}
	defer rows.Close()

	var rewards []domain.ClaimableReward
	for rows.Next() {
		var r domain.ClaimableReward
		if err := rows.Scan(&r.UserID, &r.MarketID, &r.Amount, &r.Claimed); err != nil {
			return nil, fmt.Errorf("postgres: scan reward: %w", err)
		}
		rewards = append(rewards, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list rewards rows: %w", err)
	}
	return rewards, nil
}

// Compile-time interface check.
var _ domain.RewardHistoryStore = (*RewardStore)(nil)
