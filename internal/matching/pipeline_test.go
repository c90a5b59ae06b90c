package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arblab/polykalshi/internal/domain"
)

func fedQuotes(venue domain.Venue, yes, no float64) []domain.Quote {
	title := "Will the Fed cut rates in September 2026?"
	return []domain.Quote{
		{Venue: venue, MarketID: "fed", EventTitle: title, Outcome: domain.OutcomeYes, Price: yes, Size: 100},
		{Venue: venue, MarketID: "fed", EventTitle: title, Outcome: domain.OutcomeNo, Price: no, Size: 100},
	}
}

func newTestPipeline(vectors VectorsFunc) *Pipeline {
	return NewPipeline(
		NewTokenMatcher(TokenMatcherConfig{}, testLogger()),
		NewEmbeddingMatcher(EmbeddingMatcherConfig{}, testLogger()),
		vectors,
		testLogger(),
	)
}

func TestPipelineTokenPass(t *testing.T) {
	p := newTestPipeline(nil)

	pairs := p.Match(context.Background(),
		fedQuotes(domain.VenueKalshi, 0.42, 0.60),
		fedQuotes(domain.VenuePolymarket, 0.57, 0.45),
	)

	require.Len(t, pairs, 1)
	assert.Equal(t, domain.VenueKalshi, pairs[0].A.Venue)
	assert.Equal(t, domain.VenuePolymarket, pairs[0].B.Venue)
	require.NotNil(t, pairs[0].A.Yes)
	require.NotNil(t, pairs[0].B.No)
	assert.InDelta(t, 0.42, pairs[0].A.Yes.Price, 1e-12)
	assert.InDelta(t, 0.45, pairs[0].B.No.Price, 1e-12)
}

func TestPipelineEmbeddingRecoversParaphrase(t *testing.T) {
	src := "Taylor Swift ranked #1 artist on Spotify"
	tgt := "Will Taylor Swift be the #1 Spotify artist?"

	vectors := func(ctx context.Context, titles []string) (map[string][]float64, error) {
		out := make(map[string][]float64, len(titles))
		for _, title := range titles {
			out[title] = []float64{1, 0}
		}
		return out, nil
	}
	p := newTestPipeline(vectors)

	kalshi := []domain.Quote{
		{Venue: domain.VenueKalshi, MarketID: "swift", EventTitle: src, Outcome: domain.OutcomeYes, Price: 0.30, Size: 10},
		{Venue: domain.VenueKalshi, MarketID: "swift", EventTitle: src, Outcome: domain.OutcomeNo, Price: 0.72, Size: 10},
	}
	polymarket := []domain.Quote{
		{Venue: domain.VenuePolymarket, MarketID: "0xswift", EventTitle: tgt, Outcome: domain.OutcomeYes, Price: 0.35, Size: 10},
		{Venue: domain.VenuePolymarket, MarketID: "0xswift", EventTitle: tgt, Outcome: domain.OutcomeNo, Price: 0.67, Size: 10},
	}

	pairs := p.Match(context.Background(), kalshi, polymarket)
	require.Len(t, pairs, 1)
	assert.Equal(t, src, pairs[0].A.Title)
	assert.Equal(t, tgt, pairs[0].B.Title)
}

func TestPipelineEmbeddingFailureDegradesToTokenOnly(t *testing.T) {
	vectors := func(ctx context.Context, titles []string) (map[string][]float64, error) {
		return nil, errors.New("provider down")
	}
	p := newTestPipeline(vectors)

	kalshi := fedQuotes(domain.VenueKalshi, 0.42, 0.60)
	kalshi = append(kalshi, domain.Quote{
		Venue: domain.VenueKalshi, MarketID: "x", EventTitle: "Some unmatched market",
		Outcome: domain.OutcomeYes, Price: 0.5, Size: 1,
	})

	pairs := p.Match(context.Background(), kalshi, fedQuotes(domain.VenuePolymarket, 0.57, 0.45))
	require.Len(t, pairs, 1)
	assert.Equal(t, "Will the Fed cut rates in September 2026?", pairs[0].A.Title)
}

func TestPipelineEmptySnapshots(t *testing.T) {
	p := newTestPipeline(nil)
	assert.Empty(t, p.Match(context.Background(), nil, fedQuotes(domain.VenuePolymarket, 0.5, 0.5)))
	assert.Empty(t, p.Match(context.Background(), fedQuotes(domain.VenueKalshi, 0.5, 0.5), nil))
}

func TestGroupByTitleKeepsBestPrice(t *testing.T) {
	title := "Will it rain tomorrow?"
	quotes := []domain.Quote{
		{Venue: domain.VenueKalshi, MarketID: "a", EventTitle: title, Outcome: domain.OutcomeYes, Price: 0.40, Size: 1},
		{Venue: domain.VenueKalshi, MarketID: "b", EventTitle: title, Outcome: domain.OutcomeYes, Price: 0.35, Size: 1},
		{Venue: domain.VenueKalshi, MarketID: "a", EventTitle: title, Outcome: domain.OutcomeNo, Price: 0.62, Size: 1},
	}

	events := groupByTitle(quotes)
	require.Contains(t, events, title)
	side := events[title]
	require.NotNil(t, side.Yes)
	assert.InDelta(t, 0.35, side.Yes.Price, 1e-12)
	require.NotNil(t, side.No)
	assert.InDelta(t, 0.62, side.No.Price, 1e-12)
}
