package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SONICBET_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SONICBET_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Sonic ──
	setInt64(&cfg.Sonic.ChainID, "SONICBET_SONIC_CHAIN_ID")
	setStr(&cfg.Sonic.RPCURL, "SONICBET_SONIC_RPC_URL")
	setStr(&cfg.Sonic.ExplorerURL, "SONICBET_SONIC_EXPLORER_URL")
	setStr(&cfg.Sonic.TreasuryAddress, "SONICBET_SONIC_TREASURY_ADDRESS")
	setFloat64(&cfg.Sonic.BetFeePct, "SONICBET_SONIC_BET_FEE_PCT")
	setFloat64(&cfg.Sonic.MinBet, "SONICBET_SONIC_MIN_BET")
	setFloat64(&cfg.Sonic.MaxBet, "SONICBET_SONIC_MAX_BET")
	setBool(&cfg.Sonic.PaymentsEnabled, "SONICBET_SONIC_PAYMENTS_ENABLED")

	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "SONICBET_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.EncryptedKeyPath, "SONICBET_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "SONICBET_WALLET_KEY_PASSWORD")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "SONICBET_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "SONICBET_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "SONICBET_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SONICBET_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SONICBET_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SONICBET_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SONICBET_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SONICBET_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SONICBET_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SONICBET_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SONICBET_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "SONICBET_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SONICBET_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SONICBET_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SONICBET_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SONICBET_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SONICBET_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "SONICBET_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "SONICBET_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SONICBET_S3_REGION")
	setStr(&cfg.S3.Bucket, "SONICBET_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SONICBET_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SONICBET_S3_SECRET_KEY")
	setBool(&cfg.S3.ForcePathStyle, "SONICBET_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setInt(&cfg.Server.Port, "SONICBET_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "SONICBET_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "SONICBET_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimitPerMin, "SONICBET_SERVER_RATE_LIMIT_PER_MIN")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SONICBET_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SONICBET_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SONICBET_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SONICBET_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "SONICBET_MODE")
	setStr(&cfg.LogLevel, "SONICBET_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
