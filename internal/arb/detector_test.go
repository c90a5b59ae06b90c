package arb

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arblab/polykalshi/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func quote(venue domain.Venue, outcome domain.Outcome, price, size float64) *domain.Quote {
	return &domain.Quote{
		Venue:      venue,
		MarketID:   string(venue) + "-m",
		EventTitle: "Will the Fed cut rates in September 2026?",
		Outcome:    outcome,
		Price:      price,
		Size:       size,
	}
}

// pairWith builds a matched pair where only Kalshi YES and Polymarket NO are
// quoted, isolating a single direction.
func pairWith(yesPrice, noPrice, size float64) domain.MatchedEventPair {
	return domain.MatchedEventPair{
		A: domain.EventSide{
			Venue: domain.VenueKalshi,
			Title: "Will the Fed cut rates in September 2026?",
			Yes:   quote(domain.VenueKalshi, domain.OutcomeYes, yesPrice, size),
		},
		B: domain.EventSide{
			Venue: domain.VenuePolymarket,
			Title: "Will the Fed cut rates in September 2026?",
			No:    quote(domain.VenuePolymarket, domain.OutcomeNo, noPrice, size),
		},
		Similarity: 1.0,
	}
}

func TestDetectProfitableDirection(t *testing.T) {
	d := NewDetector(DetectorConfig{}, testLogger())

	// Cost 0.42 + 0.45 = 0.87: a 13% edge.
	opps := d.Detect([]domain.MatchedEventPair{pairWith(0.42, 0.45, 1000)})

	require.Len(t, opps, 1)
	opp := opps[0]
	assert.Equal(t, 1300, opp.EdgeBps)
	assert.Equal(t, domain.VenueKalshi, opp.Long.Venue)
	assert.Equal(t, domain.OutcomeYes, opp.Long.Outcome)
	assert.Equal(t, domain.VenuePolymarket, opp.Short.Venue)
	assert.Equal(t, domain.OutcomeNo, opp.Short.Outcome)
	assert.NotEmpty(t, opp.ID)
	assert.False(t, opp.CreatedAt.IsZero())
	assert.False(t, opp.DepthAdjusted)
}

func TestDetectNoOpportunityAtCostOne(t *testing.T) {
	d := NewDetector(DetectorConfig{}, testLogger())

	assert.Empty(t, d.Detect([]domain.MatchedEventPair{pairWith(0.55, 0.45, 1000)}))
	assert.Empty(t, d.Detect([]domain.MatchedEventPair{pairWith(0.60, 0.50, 1000)}))
}

func TestDetectSizing(t *testing.T) {
	d := NewDetector(DetectorConfig{
		MaxNotionalPerLeg: 500,
		Budget:            1000,
	}, testLogger())

	// Deep books so the per-leg cap binds before liquidity does.
	opps := d.Detect([]domain.MatchedEventPair{pairWith(0.42, 0.45, 100000)})

	require.Len(t, opps, 1)
	opp := opps[0]
	assert.InDelta(t, 500, opp.MaxNotional, 1e-9)
	assert.InDelta(t, 500, opp.ActualNotional, 1e-9)
	assert.InDelta(t, 500*(1-0.87), opp.GrossProfitUSD, 1e-9)
	assert.InDelta(t, 250, opp.StakePerLeg, 1e-9)
}

func TestDetectBudgetMathNearCertainEdge(t *testing.T) {
	d := NewDetector(DetectorConfig{
		MaxNotionalPerLeg: 500,
		Budget:            1000,
	}, testLogger())

	// Cost 0.004 + 0.005 = 0.009: edge 9910 bps.
	opps := d.Detect([]domain.MatchedEventPair{pairWith(0.004, 0.005, 1e6)})

	require.Len(t, opps, 1)
	opp := opps[0]
	assert.Equal(t, 9910, opp.EdgeBps)
	assert.InDelta(t, 500, opp.ActualNotional, 1e-9)
	assert.InDelta(t, 495.50, opp.GrossProfitUSD, 1e-9)
	assert.InDelta(t, 250, opp.StakePerLeg, 1e-9)
}

func TestDetectGrossProfitFollowsRoundedEdge(t *testing.T) {
	d := NewDetector(DetectorConfig{
		MaxNotionalPerLeg: 500,
		Budget:            1000,
	}, testLogger())

	// Cost 0.42371 + 0.45 = 0.87371: the raw edge of 1262.9 bps rounds to
	// 1263, and the gross profit is quoted off that rounded figure.
	opps := d.Detect([]domain.MatchedEventPair{pairWith(0.42371, 0.45, 1e6)})

	require.Len(t, opps, 1)
	opp := opps[0]
	assert.Equal(t, 1263, opp.EdgeBps)
	assert.InDelta(t, 500, opp.ActualNotional, 1e-9)
	assert.InDelta(t, 500*1263.0/10000, opp.GrossProfitUSD, 1e-9)
}

func TestDetectBothDirections(t *testing.T) {
	d := NewDetector(DetectorConfig{}, testLogger())

	pair := domain.MatchedEventPair{
		A: domain.EventSide{
			Venue: domain.VenueKalshi,
			Title: "evt",
			Yes:   quote(domain.VenueKalshi, domain.OutcomeYes, 0.42, 1000),
			No:    quote(domain.VenueKalshi, domain.OutcomeNo, 0.40, 1000),
		},
		B: domain.EventSide{
			Venue: domain.VenuePolymarket,
			Title: "evt",
			Yes:   quote(domain.VenuePolymarket, domain.OutcomeYes, 0.45, 1000),
			No:    quote(domain.VenuePolymarket, domain.OutcomeNo, 0.45, 1000),
		},
		Similarity: 1.0,
	}

	opps := d.Detect([]domain.MatchedEventPair{pair})

	// 0.42+0.45 = 0.87 and 0.45+0.40 = 0.85: both directions clear.
	require.Len(t, opps, 2)
	// Ranked by edge descending: the 1500 bps direction first.
	assert.Equal(t, 1500, opps[0].EdgeBps)
	assert.Equal(t, domain.VenuePolymarket, opps[0].Long.Venue)
	assert.Equal(t, 1300, opps[1].EdgeBps)
	assert.Equal(t, domain.VenueKalshi, opps[1].Long.Venue)
}

func TestDetectMissingLegs(t *testing.T) {
	d := NewDetector(DetectorConfig{}, testLogger())

	pair := domain.MatchedEventPair{
		A: domain.EventSide{
			Venue: domain.VenueKalshi,
			Title: "evt",
			Yes:   quote(domain.VenueKalshi, domain.OutcomeYes, 0.42, 1000),
		},
		B: domain.EventSide{
			Venue: domain.VenuePolymarket,
			Title: "evt",
			Yes:   quote(domain.VenuePolymarket, domain.OutcomeYes, 0.45, 1000),
		},
	}
	assert.Empty(t, d.Detect([]domain.MatchedEventPair{pair}))
}

func TestDetectDepthAdjusted(t *testing.T) {
	d := NewDetector(DetectorConfig{}, testLogger())

	pair := pairWith(0.42, 0.45, 1000)
	pair.A.Yes.Depth = []domain.PriceLevel{{Price: 0.43, Size: 500}}

	opps := d.Detect([]domain.MatchedEventPair{pair})
	require.Len(t, opps, 1)
	assert.True(t, opps[0].DepthAdjusted)
}

func TestDetectDeterministicApartFromIdentity(t *testing.T) {
	d := NewDetector(DetectorConfig{}, testLogger())
	pairs := []domain.MatchedEventPair{pairWith(0.42, 0.45, 1000)}

	a := d.Detect(pairs)
	b := d.Detect(pairs)
	require.Len(t, a, 1)
	require.Len(t, b, 1)

	assert.NotEqual(t, a[0].ID, b[0].ID)
	a[0].ID, b[0].ID = "", ""
	a[0].CreatedAt = b[0].CreatedAt
	assert.Equal(t, a[0], b[0])
}
