package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sonicbet/sonicbet/internal/domain"
)

// SettlementStore implements domain.SettlementStore using PostgreSQL.
type SettlementStore struct {
	pool *pgxpool.Pool
}

// NewSettlementStore creates a SettlementStore backed by the given pool.
func NewSettlementStore(pool *pgxpool.Pool) *SettlementStore {
	return &SettlementStore{pool: pool}
}

// Insert records a market settlement. A market settles at most once, so a
// conflicting insert is ignored rather than overwritten.
func (s *SettlementStore) Insert(ctx context.Context, st domain.Settlement) error {
	const query = `
		INSERT INTO settlements (
			market_id, result, total_pool, winner_stake, winning_bets, resolved_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (market_id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		st.MarketID, string(st.Result), st.TotalPool,
		st.WinnerStake, st.WinningBets, st.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert settlement %s: %w", st.MarketID, err)
	}
	return nil
}

// GetByMarket retrieves the settlement for a market.
func (s *SettlementStore) GetByMarket(ctx context.Context, marketID string) (domain.Settlement, error) {
	const query = `
		SELECT market_id, result, total_pool, winner_stake, winning_bets, resolved_at
		FROM settlements WHERE market_id = $1`

	var st domain.Settlement
	var result string
	err := s.pool.QueryRow(ctx, query, marketID).Scan(
		&st.MarketID, &result, &st.TotalPool,
		&st.WinnerStake, &st.WinningBets, &st.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Settlement{}, domain.ErrNotFound
		}
		return domain.Settlement{}, fmt.Errorf("postgres: get settlement %s: %w", marketID, err)
	}
	st.Result = domain.BetSide(result)
	return st, nil
}

// ListRecent returns the most recently resolved settlements, newest first.
func (s *SettlementStore) ListRecent(ctx context.Context, limit int) ([]domain.Settlement, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
		SELECT market_id, result, total_pool, winner_stake, winning_bets, resolved_at
		FROM settlements ORDER BY resolved_at DESC LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []domain.Settlement
	for rows.Next() {
		var st domain.Settlement
		var result string
		if err := rows.Scan(
			&st.MarketID, &result, &st.TotalPool,
			&st.WinnerStake, &st.WinningBets, &st.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan settlement: %w", err)
		}
		st.Result = domain.BetSide(result)
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list settlements rows: %w", err)
	}
	return settlements, nil
}

// Compile-time interface check.
var _ domain.SettlementStore = (*SettlementStore)(nil)
