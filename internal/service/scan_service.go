// Package service orchestrates a scan pass: fetch both venues, validate and
// filter the snapshots, match events across venues, detect arbitrage, and fan
// the results out to the configured sinks.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arblab/polykalshi/internal/arb"
	"github.com/arblab/polykalshi/internal/domain"
	"github.com/arblab/polykalshi/internal/executor"
	"github.com/arblab/polykalshi/internal/filter"
	"github.com/arblab/polykalshi/internal/matching"
	"github.com/arblab/polykalshi/internal/notify"
	"github.com/arblab/polykalshi/internal/quotes"
)

// OpportunityChannel is the signal bus channel each detected opportunity is
// published on.
const OpportunityChannel = "polykalshi.opportunities"

// Archiver uploads the artifacts of one pass to blob storage.
type Archiver interface {
	ArchiveOpportunities(ctx context.Context, passAt time.Time, opps []domain.ArbOpportunity) (string, error)
	ArchiveSnapshot(ctx context.Context, passAt time.Time, venue domain.Venue, quotes []domain.Quote) (string, error)
}

// ScanConfig holds the pass-level tunables.
type ScanConfig struct {
	Liquidity        filter.LiquidityConfig
	Dates            filter.DateConfig
	MinProfitUSD     float64
	NotifyTopN       int
	NotifyCooldown   time.Duration
	ArchiveSnapshots bool
}

// ScanService runs matching passes over the two venues. Persistence,
// publishing, notification, archival, and paper execution are all optional:
// a nil dependency disables that sink without changing the pass itself.
type ScanService struct {
	kalshi     domain.QuoteSource
	polymarket domain.QuoteSource
	pipeline   *matching.Pipeline
	detector   *arb.Detector
	cfg        ScanConfig

	store    domain.OpportunityStore
	bus      domain.SignalBus
	notifier *notify.Notifier
	dedup    *notify.Dedup
	archiver Archiver
	paper    *executor.Paper

	logger *slog.Logger
}

// NewScanService wires a scan service. kalshi, polymarket, pipeline, and
// detector are required; the sink dependencies may be nil.
func NewScanService(
	kalshi, polymarket domain.QuoteSource,
	pipeline *matching.Pipeline,
	detector *arb.Detector,
	cfg ScanConfig,
	logger *slog.Logger,
) *ScanService {
	s := &ScanService{
		kalshi:     kalshi,
		polymarket: polymarket,
		pipeline:   pipeline,
		detector:   detector,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "scan_service")),
	}
	if cfg.NotifyCooldown > 0 {
		s.dedup = notify.NewDedup(cfg.NotifyCooldown)
	}
	return s
}

// WithStore attaches opportunity persistence.
func (s *ScanService) WithStore(store domain.OpportunityStore) *ScanService {
	s.store = store
	return s
}

// WithBus attaches signal publishing.
func (s *ScanService) WithBus(bus domain.SignalBus) *ScanService {
	s.bus = bus
	return s
}

// WithNotifier attaches operator notifications.
func (s *ScanService) WithNotifier(n *notify.Notifier) *ScanService {
	s.notifier = n
	return s
}

// WithArchiver attaches blob archival of pass artifacts.
func (s *ScanService) WithArchiver(a Archiver) *ScanService {
	s.archiver = a
	return s
}

// WithPaperExecutor attaches simulated execution.
func (s *ScanService) WithPaperExecutor(p *executor.Paper) *ScanService {
	s.paper = p
	return s
}

// PassResult summarizes one completed scan pass.
type PassResult struct {
	StartedAt     time.Time
	Duration      time.Duration
	KalshiQuotes  int
	PolyQuotes    int
	MatchedPairs  int
	Opportunities []domain.ArbOpportunity
}

// RunOnce executes a single scan pass. Sink failures (store, bus, notify,
// archive) are logged and do not fail the pass; only snapshot fetch errors
// are returned, since without quotes there is nothing to scan.
func (s *ScanService) RunOnce(ctx context.Context) (PassResult, error) {
	startedAt := time.Now().UTC()
	result := PassResult{StartedAt: startedAt}

	var kalshiRaw, polyRaw []domain.Quote
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		kalshiRaw, err = s.kalshi.Snapshot(gctx)
		if err != nil {
			return fmt.Errorf("kalshi snapshot: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		polyRaw, err = s.polymarket.Snapshot(gctx)
		if err != nil {
			return fmt.Errorf("polymarket snapshot: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("scan: %w", err)
	}

	kalshiQuotes := s.prepare(kalshiRaw, startedAt)
	polyQuotes := s.prepare(polyRaw, startedAt)
	result.KalshiQuotes = len(kalshiQuotes)
	result.PolyQuotes = len(polyQuotes)

	pairs := s.pipeline.Match(ctx, kalshiQuotes, polyQuotes)
	result.MatchedPairs = len(pairs)

	opps := s.detector.Detect(pairs)
	if s.cfg.MinProfitUSD > 0 {
		kept := opps[:0]
		for _, opp := range opps {
			if opp.GrossProfitUSD >= s.cfg.MinProfitUSD {
				kept = append(kept, opp)
			}
		}
		opps = kept
	}
	result.Opportunities = opps
	result.Duration = time.Since(startedAt)

	s.logger.Info("scan pass complete",
		slog.Int("kalshi_quotes", result.KalshiQuotes),
		slog.Int("polymarket_quotes", result.PolyQuotes),
		slog.Int("pairs", result.MatchedPairs),
		slog.Int("opportunities", len(opps)),
		slog.Duration("duration", result.Duration),
	)

	s.sink(ctx, startedAt, opps, kalshiQuotes, polyQuotes)
	return result, nil
}

// prepare validates and filters one venue's raw snapshot.
func (s *ScanService) prepare(raw []domain.Quote, now time.Time) []domain.Quote {
	cleaned := quotes.Clean(raw, s.logger)
	cleaned = filter.ByLiquidity(cleaned, s.cfg.Liquidity)
	return filter.ByDaysUntilResolution(cleaned, s.cfg.Dates, now)
}

// sink fans the pass results out to the optional dependencies.
func (s *ScanService) sink(ctx context.Context, passAt time.Time, opps []domain.ArbOpportunity, kalshiQuotes, polyQuotes []domain.Quote) {
	for i := range opps {
		opp := &opps[i]
		if s.store != nil {
			if err := s.store.Insert(ctx, *opp); err != nil {
				s.logger.Error("store insert failed",
					slog.String("opp_id", opp.ID),
					slog.String("error", err.Error()),
				)
			}
		}
		if s.bus != nil {
			payload, err := json.Marshal(opp)
			if err == nil {
				err = s.bus.Publish(ctx, OpportunityChannel, payload)
			}
			if err != nil {
				s.logger.Error("bus publish failed",
					slog.String("opp_id", opp.ID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if s.paper != nil && len(opps) > 0 {
		s.paper.Execute(opps)
	}

	if s.notifier != nil && len(opps) > 0 {
		fresh := s.freshAlerts(opps)
		if len(fresh) > 0 {
			alert := notify.OpportunityAlert(fresh, s.cfg.NotifyTopN)
			if err := s.notifier.Send(ctx, alert); err != nil {
				s.logger.Error("notify failed", slog.String("error", err.Error()))
			}
		}
	}

	if s.archiver != nil {
		if _, err := s.archiver.ArchiveOpportunities(ctx, passAt, opps); err != nil {
			s.logger.Error("archive opportunities failed", slog.String("error", err.Error()))
		}
		if s.cfg.ArchiveSnapshots {
			if _, err := s.archiver.ArchiveSnapshot(ctx, passAt, domain.VenueKalshi, kalshiQuotes); err != nil {
				s.logger.Error("archive kalshi snapshot failed", slog.String("error", err.Error()))
			}
			if _, err := s.archiver.ArchiveSnapshot(ctx, passAt, domain.VenuePolymarket, polyQuotes); err != nil {
				s.logger.Error("archive polymarket snapshot failed", slog.String("error", err.Error()))
			}
		}
	}
}

// freshAlerts drops opportunities already alerted within the notify cooldown.
// Without a cooldown every opportunity is fresh.
func (s *ScanService) freshAlerts(opps []domain.ArbOpportunity) []domain.ArbOpportunity {
	if s.dedup == nil {
		return opps
	}
	fresh := make([]domain.ArbOpportunity, 0, len(opps))
	for _, opp := range opps {
		key := opp.EventKey + "|" + string(opp.Long.Venue) + "|" + string(opp.Long.Outcome)
		if s.dedup.Fresh(key) {
			fresh = append(fresh, opp)
		}
	}
	return fresh
}
