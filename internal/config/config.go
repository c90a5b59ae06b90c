// Package config defines the top-level configuration for the scanner and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by PKARB_* environment variables.
type Config struct {
	Kalshi     KalshiConfig     `toml:"kalshi"`
	Polymarket PolymarketConfig `toml:"polymarket"`
	Matching   MatchingConfig   `toml:"matching"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Detector   DetectorConfig   `toml:"detector"`
	Filters    FiltersConfig    `toml:"filters"`
	Scan       ScanConfig       `toml:"scan"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// KalshiConfig holds Kalshi API parameters. The RSA key is optional; market
// data works unauthenticated at a lower rate limit.
type KalshiConfig struct {
	BaseURL           string `toml:"base_url"`
	ApiKey            string `toml:"api_key"`
	RsaPrivateKeyPath string `toml:"rsa_private_key_path"`
	MaxMarkets        int    `toml:"max_markets"`
	DepthTopN         int    `toml:"depth_top_n"`
}

// PolymarketConfig holds Polymarket API endpoints.
type PolymarketConfig struct {
	GammaHost  string `toml:"gamma_host"`
	ClobHost   string `toml:"clob_host"`
	WsHost     string `toml:"ws_host"`
	MaxMarkets int    `toml:"max_markets"`
	DepthTopN  int    `toml:"depth_top_n"`
}

// MatchingConfig holds the token-similarity matcher parameters.
type MatchingConfig struct {
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	MaxTargetsPerSource int     `toml:"max_targets_per_source"`

	// Aliases maps a Kalshi event title to the Polymarket title it must pair
	// with, bypassing scoring entirely.
	Aliases map[string]string `toml:"aliases"`
}

// EmbeddingConfig holds the optional embedding refinement parameters. The
// pass is enabled by setting api_key.
type EmbeddingConfig struct {
	BaseURL       string `toml:"base_url"`
	ApiKey        string `toml:"api_key"`
	Model         string `toml:"model"`
	MinCosine     float64 `toml:"min_cosine"`
	MaxCandidates int     `toml:"max_candidates"`
	TopK          int     `toml:"top_k"`
	CacheTTL      duration `toml:"cache_ttl"`
}

// Enabled reports whether the embedding pass should run.
func (e EmbeddingConfig) Enabled() bool { return e.ApiKey != "" }

// DetectorConfig holds the opportunity sizing parameters.
type DetectorConfig struct {
	MaxPriceImpact    float64 `toml:"max_price_impact"`
	MaxNotionalPerLeg float64 `toml:"max_notional_per_leg"`
	BudgetUSD         float64 `toml:"budget_usd"`
	MinProfitUSD      float64 `toml:"min_profit_usd"`
}

// FiltersConfig holds the snapshot pre-filters.
type FiltersConfig struct {
	RequireBothOutcomes bool    `toml:"require_both_outcomes"`
	MinPrice            float64 `toml:"min_price"`
	MinSize             float64 `toml:"min_size"`

	// MinDays/MaxDays bound days until resolution; -1 leaves a side open.
	MinDays int `toml:"min_days"`
	MaxDays int `toml:"max_days"`
}

// ScanConfig holds pass scheduling and sink toggles.
type ScanConfig struct {
	Interval         duration `toml:"interval"`
	PaperExecute     bool     `toml:"paper_execute"`
	ArchiveSnapshots bool     `toml:"archive_snapshots"`
	NotifyTopN       int      `toml:"notify_top_n"`
}

// PostgresConfig holds PostgreSQL connection parameters. Persistence is
// enabled by setting dsn or host.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// Enabled reports whether a Postgres connection is configured.
func (p PostgresConfig) Enabled() bool {
	return strings.TrimSpace(p.DSN) != "" || p.Host != ""
}

// RedisConfig holds Redis connection parameters. The embedding cache and
// signal bus are enabled by setting addr.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// Enabled reports whether a Redis connection is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// S3Config holds S3-compatible object storage parameters. Archival is enabled
// by setting bucket.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// Enabled reports whether archival is configured.
func (s S3Config) Enabled() bool { return s.Bucket != "" }

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`

	// Cooldown suppresses repeat alerts for the same opportunity. Zero
	// disables suppression.
	Cooldown duration `toml:"cooldown"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Kalshi: KalshiConfig{
			BaseURL:    "https://api.elections.kalshi.com/trade-api/v2",
			MaxMarkets: 2000,
			DepthTopN:  100,
		},
		Polymarket: PolymarketConfig{
			GammaHost:  "https://gamma-api.polymarket.com",
			ClobHost:   "https://clob.polymarket.com",
			WsHost:     "wss://ws-subscriptions-clob.polymarket.com/ws/market",
			MaxMarkets: 2000,
			DepthTopN:  100,
		},
		Matching: MatchingConfig{
			SimilarityThreshold: 0.72,
			MaxTargetsPerSource: 40,
			Aliases:             map[string]string{},
		},
		Embedding: EmbeddingConfig{
			BaseURL:       "https://api.openai.com/v1",
			Model:         "text-embedding-3-small",
			MinCosine:     0.82,
			MaxCandidates: 800,
			TopK:          3,
			CacheTTL:      duration{30 * 24 * time.Hour},
		},
		Detector: DetectorConfig{
			MaxPriceImpact:    0.01,
			MaxNotionalPerLeg: 500.0,
			BudgetUSD:         1000.0,
			MinProfitUSD:      2.0,
		},
		Filters: FiltersConfig{
			RequireBothOutcomes: true,
			MinPrice:            0.0,
			MinSize:             1.0,
			MinDays:             -1,
			MaxDays:             -1,
		},
		Scan: ScanConfig{
			Interval:         duration{time.Minute},
			PaperExecute:     false,
			ArchiveSnapshots: false,
			NotifyTopN:       5,
		},
		Postgres: PostgresConfig{
			Port:          5432,
			Database:      "polykalshi",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Region:         "us-east-1",
			UseSSL:         true,
			ForcePathStyle: true,
		},
		Notify: NotifyConfig{
			Events:   []string{"opportunity"},
			Cooldown: duration{15 * time.Minute},
		},
		Mode:     "scan",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":  true,
	"watch": true,
	"demo":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, watch, demo)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Mode != "demo" {
		if c.Kalshi.BaseURL == "" {
			errs = append(errs, "kalshi: base_url must not be empty")
		}
		if c.Polymarket.GammaHost == "" {
			errs = append(errs, "polymarket: gamma_host must not be empty")
		}
	}
	if c.Kalshi.RsaPrivateKeyPath != "" && c.Kalshi.ApiKey == "" {
		errs = append(errs, "kalshi: api_key is required when rsa_private_key_path is set")
	}

	if t := c.Matching.SimilarityThreshold; t <= 0 || t >= 1 {
		errs = append(errs, fmt.Sprintf("matching: similarity_threshold must be in (0, 1), got %g", t))
	}
	if c.Matching.MaxTargetsPerSource < 1 {
		errs = append(errs, "matching: max_targets_per_source must be >= 1")
	}

	if c.Embedding.Enabled() {
		if c.Embedding.BaseURL == "" {
			errs = append(errs, "embedding: base_url must not be empty when api_key is set")
		}
		if mc := c.Embedding.MinCosine; mc <= 0 || mc >= 1 {
			errs = append(errs, fmt.Sprintf("embedding: min_cosine must be in (0, 1), got %g", mc))
		}
		if c.Embedding.TopK < 1 {
			errs = append(errs, "embedding: top_k must be >= 1")
		}
	}

	if c.Detector.MaxPriceImpact <= 0 {
		errs = append(errs, "detector: max_price_impact must be > 0")
	}
	if c.Detector.MaxNotionalPerLeg <= 0 {
		errs = append(errs, "detector: max_notional_per_leg must be > 0")
	}
	if c.Detector.BudgetUSD <= 0 {
		errs = append(errs, "detector: budget_usd must be > 0")
	}

	if c.Filters.MinDays >= 0 && c.Filters.MaxDays >= 0 && c.Filters.MinDays > c.Filters.MaxDays {
		errs = append(errs, "filters: min_days must not exceed max_days")
	}

	if c.Scan.Interval.Duration < 5*time.Second {
		errs = append(errs, "scan: interval must be at least 5s")
	}

	if c.Postgres.Enabled() {
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 || c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must be between 0 and pool_max_conns")
		}
	}
	if c.Redis.Enabled() && c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}
	if c.S3.Enabled() {
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			errs = append(errs, "s3: access_key and secret_key are required when bucket is set")
		}
	}

	tg := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tg != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}
	if c.Notify.Cooldown.Duration < 0 {
		errs = append(errs, "notify: cooldown must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
