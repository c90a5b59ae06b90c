package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/arblab/polykalshi/internal/cache/redis"
	"github.com/arblab/polykalshi/internal/domain"
	"github.com/arblab/polykalshi/internal/filter"
	"github.com/arblab/polykalshi/internal/service"
	"github.com/arblab/polykalshi/internal/venue/polymarket"
)

// watchMaxAssets caps how many outcome tokens the watch feed subscribes to.
const watchMaxAssets = 100

// watchDebounce is the quiet period after a book update before a rescan is
// triggered, so a burst of updates produces one pass.
const watchDebounce = 3 * time.Second

// ScanMode runs a scan pass immediately and then on every interval tick until
// the context is cancelled.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode",
		slog.Duration("interval", a.cfg.Scan.Interval.Duration),
	)

	svc := a.buildScanService(deps)

	a.runPass(ctx, svc, deps.Lock)

	ticker := time.NewTicker(a.cfg.Scan.Interval.Duration)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.runPass(ctx, svc, deps.Lock)
		}
	}
}

// runPass runs one scan pass, holding the shared scan lock when one is
// configured so two scanner instances never scan at once. A held lock skips
// the pass; a lock error degrades to an unlocked pass.
func (a *App) runPass(ctx context.Context, svc *service.ScanService, lock *redis.ScanLock) {
	if lock != nil {
		unlock, err := lock.Acquire(ctx, "scan", a.cfg.Scan.Interval.Duration)
		switch {
		case errors.Is(err, domain.ErrLockHeld):
			a.logger.InfoContext(ctx, "scan pass skipped, another instance holds the lock")
			return
		case err != nil:
			a.logger.WarnContext(ctx, "scan lock acquire failed, running unlocked",
				slog.String("error", err.Error()),
			)
		default:
			defer unlock()
		}
	}
	if _, err := svc.RunOnce(ctx); err != nil {
		a.logger.ErrorContext(ctx, "scan pass failed", slog.String("error", err.Error()))
	}
}

// WatchMode runs an initial pass, subscribes to the Polymarket book feed for
// the most liquid outcome tokens, and rescans whenever tracked books move.
// The scan interval still applies as a floor so stale Kalshi quotes are
// refreshed even when Polymarket is quiet.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting watch mode")

	svc := a.buildScanService(deps)

	a.runPass(ctx, svc, deps.Lock)

	trigger := make(chan struct{}, 1)
	assetIDs := a.watchAssetIDs(ctx, deps.Gamma)
	if len(assetIDs) > 0 {
		feed := polymarket.NewWSFeed(a.cfg.Polymarket.WsHost, assetIDs, a.logger)
		feed.OnBook(func(assetID string, asks []domain.PriceLevel) {
			select {
			case trigger <- struct{}{}:
			default:
			}
		})
		if err := feed.Connect(ctx); err != nil {
			a.logger.WarnContext(ctx, "watch feed connect failed, falling back to interval polling",
				slog.String("error", err.Error()),
			)
		} else {
			defer feed.Close()
		}
	} else {
		a.logger.WarnContext(ctx, "watch mode: no asset ids to subscribe, polling on interval only")
	}

	ticker := time.NewTicker(a.cfg.Scan.Interval.Duration)
	defer ticker.Stop()

	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-trigger:
			debounce.Reset(watchDebounce)
		case <-debounce.C:
			a.runPass(ctx, svc, deps.Lock)
			ticker.Reset(a.cfg.Scan.Interval.Duration)
		case <-ticker.C:
			a.runPass(ctx, svc, deps.Lock)
		}
	}
}

// DemoMode runs a single pass over the built-in fixture sources with paper
// execution and reports the outcome. No external service is touched.
func (a *App) DemoMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting demo mode")

	svc := a.buildScanService(deps)
	result, err := svc.RunOnce(ctx)
	if err != nil {
		return err
	}

	for i := range result.Opportunities {
		opp := &result.Opportunities[i]
		a.logger.InfoContext(ctx, "demo opportunity",
			slog.String("event_key", opp.EventKey),
			slog.Int("edge_bps", opp.EdgeBps),
			slog.Float64("notional", opp.ActualNotional),
			slog.Float64("profit_usd", opp.GrossProfitUSD),
		)
	}
	if deps.Paper != nil {
		a.logger.InfoContext(ctx, "demo complete",
			slog.Int("opportunities", len(result.Opportunities)),
			slog.Int("fills", len(deps.Paper.Fills())),
			slog.Float64("paper_profit_usd", deps.Paper.GrossProfit()),
		)
	}
	return nil
}

// buildScanService assembles the scan service from wired dependencies and the
// pass-level config.
func (a *App) buildScanService(deps *Dependencies) *service.ScanService {
	svc := service.NewScanService(
		deps.Kalshi,
		deps.Polymarket,
		deps.Pipeline,
		deps.Detector,
		service.ScanConfig{
			Liquidity: filter.LiquidityConfig{
				RequireBothOutcomes: a.cfg.Filters.RequireBothOutcomes,
				MinPrice:            a.cfg.Filters.MinPrice,
				MinSize:             a.cfg.Filters.MinSize,
			},
			Dates: filter.DateConfig{
				MinDays: dayBound(a.cfg.Filters.MinDays),
				MaxDays: dayBound(a.cfg.Filters.MaxDays),
			},
			MinProfitUSD:     a.cfg.Detector.MinProfitUSD,
			NotifyTopN:       a.cfg.Scan.NotifyTopN,
			NotifyCooldown:   a.cfg.Notify.Cooldown.Duration,
			ArchiveSnapshots: a.cfg.Scan.ArchiveSnapshots,
		},
		a.logger,
	)
	if deps.Store != nil {
		svc = svc.WithStore(deps.Store)
	}
	if deps.Bus != nil {
		svc = svc.WithBus(deps.Bus)
	}
	if deps.Notifier != nil {
		svc = svc.WithNotifier(deps.Notifier)
	}
	if deps.Archiver != nil {
		svc = svc.WithArchiver(deps.Archiver)
	}
	if deps.Paper != nil {
		svc = svc.WithPaperExecutor(deps.Paper)
	}
	return svc
}

// watchAssetIDs collects outcome token IDs from the most recently listed
// active Polymarket markets, up to watchMaxAssets.
func (a *App) watchAssetIDs(ctx context.Context, gamma *polymarket.GammaClient) []string {
	if gamma == nil {
		return nil
	}
	markets, err := gamma.GetMarkets(ctx, 200, 0)
	if err != nil {
		a.logger.WarnContext(ctx, "watch assets: list markets failed", slog.String("error", err.Error()))
		return nil
	}
	seen := make(map[string]bool)
	var ids []string
	for i := range markets {
		for _, tid := range markets[i].TokenIDList() {
			if tid == "" || seen[tid] {
				continue
			}
			seen[tid] = true
			ids = append(ids, tid)
			if len(ids) >= watchMaxAssets {
				return ids
			}
		}
	}
	return ids
}

// dayBound converts the config sentinel (-1 means unset) to a filter bound.
func dayBound(v int) *int {
	if v < 0 {
		return nil
	}
	return &v
}
