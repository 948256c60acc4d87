package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sonicbet/sonicbet/internal/domain"
)

// BetStore implements domain.BetHistoryStore using PostgreSQL.
type BetStore struct {
	pool *pgxpool.Pool
}

// NewBetStore creates a BetStore backed by the given connection pool.
func NewBetStore(pool *pgxpool.Pool) *BetStore {
	return &BetStore{pool: pool}
}

const betCols = `id, user_id, market_id, amount, fee, total_amount,
	side, placed_at, signature, message, treasury_tx_hash`

// Insert records a placed bet. Re-inserting the same bet id is a no-op so a
// replayed mirror write cannot duplicate history.
func (s *BetStore) Insert(ctx context.Context, b domain.Bet) error {
	const query = `
		INSERT INTO bets (
			id, user_id, market_id, amount, fee, total_amount,
			side, placed_at, signature, message, treasury_tx_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		b.ID, b.UserID, b.MarketID, b.Amount, b.Fee, b.TotalAmount,
		string(b.Side), b.Timestamp, b.Signature, b.Message, b.TreasuryTxHash,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert bet %s: %w", b.ID, err)
	}
	return nil
}

// ListByMarket returns a market's bets in placement order.
func (s *BetStore) ListByMarket(ctx context.Context, marketID string, opts domain.ListOpts) ([]domain.Bet, error) {
	query := `SELECT ` + betCols + ` FROM bets WHERE market_id = $1 ORDER BY placed_at ASC`
	args := []any{marketID}
	query, args = applyListOpts(query, args, opts)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list bets for market %s: %w", marketID, err)
	}
	defer rows.Close()

	return collectBets(rows)
}

// ListByUser returns a user's bets in placement order.
func (s *BetStore) ListByUser(ctx context.Context, userID string, opts domain.ListOpts) ([]domain.Bet, error) {
	query := `SELECT ` + betCols + ` FROM bets WHERE user_id = $1 ORDER BY placed_at ASC`
	args := []any{userID}
	query, args = applyListOpts(query, args, opts)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list bets for user %s: %w", userID, err)
	}
	defer rows.Close()

	return collectBets(rows)
}

func collectBets(rows pgx.Rows) ([]domain.Bet, error) {
	var bets []domain.Bet
	for rows.Next() {
		var b domain.Bet
		var side string
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.MarketID, &b.Amount, &b.Fee, &b.TotalAmount,
			&side, &b.Timestamp, &b.Signature, &b.Message, &b.TreasuryTxHash,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan bet: %w", err)
		}
		b.Side = domain.BetSide(side)
		bets = append(bets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list bets rows: %w", err)
	}
	return bets, nil
}

// applyListOpts appends LIMIT/OFFSET clauses for non-zero options.
func applyListOpts(query string, args []any, opts domain.ListOpts) (string, []any) {
	idx := len(args) + 1
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, opts.Limit)
		idx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", idx)
		args = append(args, opts.Offset)
	}
	return query, args
}

// Compile-time interface check.
var _ domain.BetHistoryStore = (*BetStore)(nil)
