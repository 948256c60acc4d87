package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// SnapshotStore persists the full ledger snapshot. Load returns ErrNotFound
// when no snapshot has been saved yet.
type SnapshotStore interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// BetHistoryStore mirrors placed bets into durable storage.
type BetHistoryStore interface {
	Insert(ctx context.Context, bet Bet) error
	ListByMarket(ctx context.Context, marketID string, opts ListOpts) ([]Bet, error)
	ListByUser(ctx context.Context, userID string, opts ListOpts) ([]Bet, error)
}

// RewardHistoryStore mirrors claimable rewards into durable storage.
type RewardHistoryStore interface {
	Insert(ctx context.Context, reward ClaimableReward) error
	MarkClaimed(ctx context.Context, userID, marketID string) error
	ListByUser(ctx context.Context, userID string) ([]ClaimableReward, error)
}

// SettlementStore mirrors market settlements into durable storage.
type SettlementStore interface {
	Insert(ctx context.Context, s Settlement) error
	GetByMarket(ctx context.Context, marketID string) (Settlement, error)
	ListRecent(ctx context.Context, limit int) ([]Settlement, error)
}

// Leaderboard ranks users by sonic score.
type Leaderboard interface {
	IncrScore(ctx context.Context, userID string, delta int) error
	SetScore(ctx context.Context, userID string, score int) error
	Score(ctx context.Context, userID string) (int, error)
	Top(ctx context.Context, n int) ([]ScoreEntry, error)
}

// SignalBus is a lightweight publish/subscribe fabric for ledger events.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channels ...string) (<-chan []byte, error)
}

// RateLimiter enforces a fixed-window request budget per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SettlementArchiver writes settlement records to long-term object storage.
type SettlementArchiver interface {
	ArchiveSettlement(ctx context.Context, s Settlement, rewards []ClaimableReward) error
}
