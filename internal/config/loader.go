package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PKARB_* environment variable overrides, and
// returns the final Config. A missing file is not an error; defaults plus env
// overrides alone are a valid configuration. The returned Config has NOT been
// validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PKARB_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Kalshi ──
	setStr(&cfg.Kalshi.BaseURL, "PKARB_KALSHI_BASE_URL")
	setStr(&cfg.Kalshi.ApiKey, "PKARB_KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RsaPrivateKeyPath, "PKARB_KALSHI_RSA_PRIVATE_KEY_PATH")
	setInt(&cfg.Kalshi.MaxMarkets, "PKARB_KALSHI_MAX_MARKETS")
	setInt(&cfg.Kalshi.DepthTopN, "PKARB_KALSHI_DEPTH_TOP_N")

	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "PKARB_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.ClobHost, "PKARB_POLYMARKET_CLOB_HOST")
	setStr(&cfg.Polymarket.WsHost, "PKARB_POLYMARKET_WS_HOST")
	setInt(&cfg.Polymarket.MaxMarkets, "PKARB_POLYMARKET_MAX_MARKETS")
	setInt(&cfg.Polymarket.DepthTopN, "PKARB_POLYMARKET_DEPTH_TOP_N")

	// ── Matching ──
	setFloat64(&cfg.Matching.SimilarityThreshold, "PKARB_MATCHING_SIMILARITY_THRESHOLD")
	setInt(&cfg.Matching.MaxTargetsPerSource, "PKARB_MATCHING_MAX_TARGETS_PER_SOURCE")

	// ── Embedding ──
	setStr(&cfg.Embedding.BaseURL, "PKARB_EMBEDDING_BASE_URL")
	setStr(&cfg.Embedding.ApiKey, "PKARB_EMBEDDING_API_KEY")
	setStr(&cfg.Embedding.ApiKey, "OPENAI_API_KEY") // compatibility alias
	setStr(&cfg.Embedding.Model, "PKARB_EMBEDDING_MODEL")
	setFloat64(&cfg.Embedding.MinCosine, "PKARB_EMBEDDING_MIN_COSINE")
	setInt(&cfg.Embedding.MaxCandidates, "PKARB_EMBEDDING_MAX_CANDIDATES")
	setInt(&cfg.Embedding.TopK, "PKARB_EMBEDDING_TOP_K")
	setDuration(&cfg.Embedding.CacheTTL, "PKARB_EMBEDDING_CACHE_TTL")

	// ── Detector ──
	setFloat64(&cfg.Detector.MaxPriceImpact, "PKARB_DETECTOR_MAX_PRICE_IMPACT")
	setFloat64(&cfg.Detector.MaxNotionalPerLeg, "PKARB_DETECTOR_MAX_NOTIONAL_PER_LEG")
	setFloat64(&cfg.Detector.BudgetUSD, "PKARB_DETECTOR_BUDGET_USD")
	setFloat64(&cfg.Detector.MinProfitUSD, "PKARB_DETECTOR_MIN_PROFIT_USD")

	// ── Filters ──
	setBool(&cfg.Filters.RequireBothOutcomes, "PKARB_FILTERS_REQUIRE_BOTH_OUTCOMES")
	setFloat64(&cfg.Filters.MinPrice, "PKARB_FILTERS_MIN_PRICE")
	setFloat64(&cfg.Filters.MinSize, "PKARB_FILTERS_MIN_SIZE")
	setInt(&cfg.Filters.MinDays, "PKARB_FILTERS_MIN_DAYS")
	setInt(&cfg.Filters.MaxDays, "PKARB_FILTERS_MAX_DAYS")

	// ── Scan ──
	setDuration(&cfg.Scan.Interval, "PKARB_SCAN_INTERVAL")
	setBool(&cfg.Scan.PaperExecute, "PKARB_SCAN_PAPER_EXECUTE")
	setBool(&cfg.Scan.ArchiveSnapshots, "PKARB_SCAN_ARCHIVE_SNAPSHOTS")
	setInt(&cfg.Scan.NotifyTopN, "PKARB_SCAN_NOTIFY_TOP_N")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "PKARB_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "PKARB_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "PKARB_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "PKARB_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "PKARB_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "PKARB_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "PKARB_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "PKARB_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "PKARB_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "PKARB_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "PKARB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PKARB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PKARB_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PKARB_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "PKARB_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "PKARB_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "PKARB_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PKARB_S3_REGION")
	setStr(&cfg.S3.Bucket, "PKARB_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "PKARB_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PKARB_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PKARB_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PKARB_S3_FORCE_PATH_STYLE")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "PKARB_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "PKARB_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "PKARB_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "PKARB_NOTIFY_EVENTS")
	setDuration(&cfg.Notify.Cooldown, "PKARB_NOTIFY_COOLDOWN")

	// ── Top-level ──
	setStr(&cfg.Mode, "PKARB_MODE")
	setStr(&cfg.LogLevel, "PKARB_LOG_LEVEL")
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

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
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
