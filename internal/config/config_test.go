package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "turbo"
	cfg.LogLevel = "verbose"
	cfg.Matching.SimilarityThreshold = 1.5
	cfg.Detector.BudgetUSD = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "unknown log_level")
	assert.Contains(t, err.Error(), "similarity_threshold")
	assert.Contains(t, err.Error(), "budget_usd")
}

func TestValidateDayBounds(t *testing.T) {
	cfg := Defaults()
	cfg.Filters.MinDays = 30
	cfg.Filters.MaxDays = 10

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_days")
}

func TestValidateTelegramPairing(t *testing.T) {
	cfg := Defaults()
	cfg.Notify.TelegramToken = "tok"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")

	cfg.Notify.TelegramChatID = "123"
	assert.NoError(t, cfg.Validate())
}

func TestLoadAppliesDefaultsAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "demo"

[matching]
similarity_threshold = 0.8
`), 0o600))

	t.Setenv("PKARB_REDIS_ADDR", "localhost:6379")
	t.Setenv("PKARB_SCAN_INTERVAL", "2m")
	t.Setenv("PKARB_FILTERS_MIN_DAYS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Mode)
	assert.InDelta(t, 0.8, cfg.Matching.SimilarityThreshold, 1e-12)
	// Untouched fields keep defaults.
	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.Polymarket.GammaHost)
	// Env overrides win over defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "2m0s", cfg.Scan.Interval.Duration.String())
	assert.Equal(t, 7, cfg.Filters.MinDays)
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Kalshi.ApiKey = "key"
	cfg.Postgres.Password = "pw"
	cfg.S3.SecretKey = "secret"
	cfg.Notify.TelegramToken = "tok"

	red := RedactedConfig(&cfg)
	assert.Equal(t, "***", red.Kalshi.ApiKey)
	assert.Equal(t, "***", red.Postgres.Password)
	assert.Equal(t, "***", red.S3.SecretKey)
	assert.Equal(t, "***", red.Notify.TelegramToken)
	// Original untouched.
	assert.Equal(t, "key", cfg.Kalshi.ApiKey)
	// Empty secrets stay empty rather than gaining a placeholder.
	assert.Empty(t, red.Embedding.ApiKey)
}
