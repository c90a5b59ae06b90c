package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/arblab/polykalshi/internal/arb"
	s3blob "github.com/arblab/polykalshi/internal/blob/s3"
	"github.com/arblab/polykalshi/internal/cache/redis"
	"github.com/arblab/polykalshi/internal/config"
	"github.com/arblab/polykalshi/internal/domain"
	"github.com/arblab/polykalshi/internal/embed"
	"github.com/arblab/polykalshi/internal/executor"
	"github.com/arblab/polykalshi/internal/matching"
	"github.com/arblab/polykalshi/internal/notify"
	"github.com/arblab/polykalshi/internal/store/postgres"
	"github.com/arblab/polykalshi/internal/venue/demo"
	"github.com/arblab/polykalshi/internal/venue/kalshi"
	"github.com/arblab/polykalshi/internal/venue/polymarket"
)

// Dependencies bundles everything the operating modes need. It is constructed
// by Wire and torn down by the returned cleanup function. Optional sinks
// (Store, Bus, Archiver, Paper) are nil when not configured.
type Dependencies struct {
	// Venue snapshots
	Kalshi     domain.QuoteSource
	Polymarket domain.QuoteSource

	// Matching and detection
	Pipeline *matching.Pipeline
	Detector *arb.Detector

	// Sinks
	Store    domain.OpportunityStore
	Bus      domain.SignalBus
	Notifier *notify.Notifier
	Archiver *s3blob.PassArchiver
	Paper    *executor.Paper

	// Gamma is kept around for watch mode, which needs token IDs for the
	// WebSocket subscription. Nil in demo mode.
	Gamma *polymarket.GammaClient

	// Lock keeps concurrent scanner instances from running overlapping
	// passes. Nil without Redis.
	Lock *redis.ScanLock
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Venue sources ---
	if cfg.Mode == "demo" {
		deps.Kalshi = demo.NewSource(domain.VenueKalshi)
		deps.Polymarket = demo.NewSource(domain.VenuePolymarket)
	} else {
		kalshiClient := kalshi.NewClient(cfg.Kalshi.BaseURL, cfg.Kalshi.ApiKey)
		if cfg.Kalshi.RsaPrivateKeyPath != "" {
			keyBytes, err := os.ReadFile(cfg.Kalshi.RsaPrivateKeyPath)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: read kalshi rsa key: %w", err)
			}
			if err := kalshiClient.SetRSAPrivateKey(keyBytes); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: parse kalshi rsa key: %w", err)
			}
		}
		deps.Kalshi = kalshi.NewSource(kalshiClient, kalshi.SourceConfig{
			MaxMarkets: cfg.Kalshi.MaxMarkets,
			DepthTopN:  cfg.Kalshi.DepthTopN,
		}, logger)

		deps.Gamma = polymarket.NewGammaClient(cfg.Polymarket.GammaHost)
		clob := polymarket.NewClobClient(cfg.Polymarket.ClobHost)
		deps.Polymarket = polymarket.NewSource(deps.Gamma, clob, polymarket.SourceConfig{
			MaxMarkets: cfg.Polymarket.MaxMarkets,
			DepthTopN:  cfg.Polymarket.DepthTopN,
		}, logger)
	}

	// --- Redis (embedding cache + signal bus) ---
	var embCache domain.EmbeddingCache
	if cfg.Mode != "demo" && cfg.Redis.Enabled() {
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

		embCache = redis.NewEmbeddingCache(redisClient, cfg.Embedding.CacheTTL.Duration)
		deps.Bus = redis.NewSignalBus(redisClient)
		deps.Lock = redis.NewScanLock(redisClient)
	}

	// --- Matching pipeline ---
	token := matching.NewTokenMatcher(matching.TokenMatcherConfig{
		SimilarityThreshold: cfg.Matching.SimilarityThreshold,
		MaxTargetsPerSource: cfg.Matching.MaxTargetsPerSource,
		ExplicitAliases:     cfg.Matching.Aliases,
	}, logger)
	embedding := matching.NewEmbeddingMatcher(matching.EmbeddingMatcherConfig{
		MinCosine:     cfg.Embedding.MinCosine,
		MaxCandidates: cfg.Embedding.MaxCandidates,
		TopK:          cfg.Embedding.TopK,
	}, logger)

	var vectors matching.VectorsFunc
	if cfg.Mode != "demo" && cfg.Embedding.Enabled() {
		embClient := embed.NewClient(
			cfg.Embedding.BaseURL,
			cfg.Embedding.ApiKey,
			cfg.Embedding.Model,
			embCache,
			logger,
		)
		vectors = embClient.Embed
	}
	deps.Pipeline = matching.NewPipeline(token, embedding, vectors, logger)

	// --- Detector ---
	deps.Detector = arb.NewDetector(arb.DetectorConfig{
		MaxPriceImpact:    cfg.Detector.MaxPriceImpact,
		MaxNotionalPerLeg: cfg.Detector.MaxNotionalPerLeg,
		Budget:            cfg.Detector.BudgetUSD,
	}, logger)

	// --- PostgreSQL (opportunity persistence) ---
	if cfg.Mode != "demo" && cfg.Postgres.Enabled() {
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
		deps.Store = postgres.NewOpportunityStore(pgClient.Pool())
	}

	// --- S3 blob storage (pass archival) ---
	if cfg.Mode != "demo" && cfg.S3.Enabled() {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		if err := s3Client.Health(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		deps.Archiver = s3blob.NewPassArchiver(s3Client)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)
	}

	// --- Paper execution ---
	if cfg.Scan.PaperExecute || cfg.Mode == "demo" {
		deps.Paper = executor.NewPaper(logger)
	}

	return deps, cleanup, nil
}
