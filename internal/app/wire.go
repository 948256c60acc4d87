package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	s3blob "github.com/sonicbet/sonicbet/internal/blob/s3"
	"github.com/sonicbet/sonicbet/internal/cache/redis"
	"github.com/sonicbet/sonicbet/internal/config"
	"github.com/sonicbet/sonicbet/internal/domain"
	"github.com/sonicbet/sonicbet/internal/ledger"
	"github.com/sonicbet/sonicbet/internal/notify"
	"github.com/sonicbet/sonicbet/internal/seed"
	"github.com/sonicbet/sonicbet/internal/store/postgres"
	"github.com/sonicbet/sonicbet/internal/wallet"
)

// Dependencies bundles everything the application modes need. Optional
// collaborators (history mirror, archive, wallet) are nil when their config
// section is disabled.
type Dependencies struct {
	Ledger *ledger.Ledger

	// Durable history mirrors (nil without Postgres).
	BetHistory      domain.BetHistoryStore
	RewardHistory   domain.RewardHistoryStore
	SettlementStore domain.SettlementStore

	// Redis-backed collaborators.
	Leaderboard domain.Leaderboard
	RateLimiter domain.RateLimiter
	SignalBus   domain.SignalBus

	// Settlement archive (nil without S3).
	Archiver domain.SettlementArchiver

	// Chain wallet (nil when payments are disabled).
	Wallet *wallet.Client

	Notifier *notify.Notifier
}

// Wire constructs all concrete dependencies from configuration and returns
// them with a cleanup function for shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Redis: snapshot store, leaderboard, rate limiter, signal bus ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.Leaderboard = redis.NewLeaderboard(redisClient)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient)

	// --- Ledger, restored from the Redis snapshot or seeded fresh ---
	snapshots := redis.NewSnapshotStore(redisClient)
	catalog := seed.Markets(time.Now(), cfg.Sonic.MinBet, cfg.Sonic.MaxBet)
	led, err := ledger.New(ctx, snapshots, catalog, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: ledger: %w", err)
	}
	deps.Ledger = led

	// --- Postgres history mirror (optional) ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.BetHistory = postgres.NewBetStore(pool)
		deps.RewardHistory = postgres.NewRewardStore(pool)
		deps.SettlementStore = postgres.NewSettlementStore(pool)
	}

	// --- S3 settlement archive (optional) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewArchiver(s3Client)
	}

	// --- Wallet (optional, required for treasury payments) ---
	if cfg.Sonic.PaymentsEnabled {
		key, err := wallet.LoadKey(wallet.KeyConfig{
			RawPrivateKey:    cfg.Wallet.PrivateKey,
			EncryptedKeyPath: cfg.Wallet.EncryptedKeyPath,
			KeyPassword:      cfg.Wallet.KeyPassword,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: wallet key: %w", err)
		}

		w, err := wallet.New(ctx, wallet.ClientConfig{
			RPCURL:          cfg.Sonic.RPCURL,
			ChainID:         cfg.Sonic.ChainID,
			TreasuryAddress: cfg.Sonic.TreasuryAddress,
		}, key, logger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: wallet: %w", err)
		}
		closers = append(closers, w.Close)
		deps.Wallet = w
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
