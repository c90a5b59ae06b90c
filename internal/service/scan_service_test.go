package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arblab/polykalshi/internal/arb"
	"github.com/arblab/polykalshi/internal/domain"
	"github.com/arblab/polykalshi/internal/executor"
	"github.com/arblab/polykalshi/internal/filter"
	"github.com/arblab/polykalshi/internal/matching"
	"github.com/arblab/polykalshi/internal/notify"
	"github.com/arblab/polykalshi/internal/venue/demo"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memStore struct {
	inserted []domain.ArbOpportunity
}

func (s *memStore) Insert(_ context.Context, opp domain.ArbOpportunity) error {
	s.inserted = append(s.inserted, opp)
	return nil
}

func (s *memStore) ListRecent(_ context.Context, limit int) ([]domain.ArbOpportunity, error) {
	if limit <= 0 || limit > len(s.inserted) {
		limit = len(s.inserted)
	}
	return s.inserted[:limit], nil
}

type memBus struct {
	published [][]byte
}

func (b *memBus) Publish(_ context.Context, _ string, payload []byte) error {
	b.published = append(b.published, payload)
	return nil
}

func (b *memBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not implemented")
}

type memSender struct {
	sent []notify.Alert
}

func (m *memSender) Deliver(_ context.Context, alert notify.Alert) error {
	m.sent = append(m.sent, alert)
	return nil
}

func (m *memSender) Name() string { return "mem" }

type failingSource struct{ venue domain.Venue }

func (f *failingSource) Venue() domain.Venue { return f.venue }
func (f *failingSource) Snapshot(context.Context) ([]domain.Quote, error) {
	return nil, errors.New("venue down")
}

func newDemoScanService(t *testing.T, cfg ScanConfig) *ScanService {
	t.Helper()
	logger := testLogger()
	pipeline := matching.NewPipeline(
		matching.NewTokenMatcher(matching.TokenMatcherConfig{}, logger),
		matching.NewEmbeddingMatcher(matching.EmbeddingMatcherConfig{}, logger),
		nil,
		logger,
	)
	detector := arb.NewDetector(arb.DetectorConfig{}, logger)
	return NewScanService(
		demo.NewSource(domain.VenueKalshi),
		demo.NewSource(domain.VenuePolymarket),
		pipeline,
		detector,
		cfg,
		logger,
	)
}

func TestRunOnceFindsDemoOpportunity(t *testing.T) {
	svc := newDemoScanService(t, ScanConfig{
		Liquidity: filter.LiquidityConfig{RequireBothOutcomes: true, MinSize: 1},
	})

	result, err := svc.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Positive(t, result.KalshiQuotes)
	assert.Positive(t, result.PolyQuotes)
	// The Fed market matches across venues; the Best Actor pair is vetoed on
	// entity grounds and the Bitcoin market has no counterpart.
	assert.Equal(t, 1, result.MatchedPairs)

	require.Len(t, result.Opportunities, 1)
	opp := result.Opportunities[0]
	// Top of book prices at 0.42 + 0.45; walking the fixture depth pushes the
	// slippage-adjusted cost to 0.8787.
	assert.Equal(t, 1213, opp.EdgeBps)
	assert.Equal(t, domain.VenueKalshi, opp.Long.Venue)
	assert.Equal(t, domain.OutcomeYes, opp.Long.Outcome)
	assert.True(t, opp.DepthAdjusted)
}

func TestRunOnceSinksToStoreAndBus(t *testing.T) {
	store := &memStore{}
	bus := &memBus{}
	paper := executor.NewPaper(testLogger())

	svc := newDemoScanService(t, ScanConfig{
		Liquidity: filter.LiquidityConfig{RequireBothOutcomes: true, MinSize: 1},
	}).WithStore(store).WithBus(bus).WithPaperExecutor(paper)

	result, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Opportunities, 1)

	require.Len(t, store.inserted, 1)
	assert.Equal(t, result.Opportunities[0].ID, store.inserted[0].ID)

	require.Len(t, bus.published, 1)
	var published domain.ArbOpportunity
	require.NoError(t, json.Unmarshal(bus.published[0], &published))
	assert.Equal(t, result.Opportunities[0].EventKey, published.EventKey)

	assert.Len(t, paper.Fills(), 2)
	assert.InDelta(t, result.Opportunities[0].GrossProfitUSD, paper.GrossProfit(), 1e-9)
}

func TestRunOnceNotifyCooldown(t *testing.T) {
	sender := &memSender{}
	notifier := notify.NewNotifier([]notify.Sender{sender}, nil, testLogger())

	svc := newDemoScanService(t, ScanConfig{
		Liquidity:      filter.LiquidityConfig{RequireBothOutcomes: true, MinSize: 1},
		NotifyCooldown: time.Hour,
	}).WithNotifier(notifier)

	for i := 0; i < 3; i++ {
		_, err := svc.RunOnce(context.Background())
		require.NoError(t, err)
	}

	// Same opportunity every pass, alerted once.
	assert.Len(t, sender.sent, 1)
}

func TestRunOnceMinProfitFilter(t *testing.T) {
	svc := newDemoScanService(t, ScanConfig{
		Liquidity:    filter.LiquidityConfig{RequireBothOutcomes: true, MinSize: 1},
		MinProfitUSD: 1e6,
	})

	result, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Opportunities)
}

func TestRunOnceSnapshotFailure(t *testing.T) {
	logger := testLogger()
	pipeline := matching.NewPipeline(
		matching.NewTokenMatcher(matching.TokenMatcherConfig{}, logger),
		matching.NewEmbeddingMatcher(matching.EmbeddingMatcherConfig{}, logger),
		nil,
		logger,
	)
	svc := NewScanService(
		&failingSource{venue: domain.VenueKalshi},
		demo.NewSource(domain.VenuePolymarket),
		pipeline,
		arb.NewDetector(arb.DetectorConfig{}, logger),
		ScanConfig{},
		logger,
	)

	_, err := svc.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kalshi snapshot")
}
