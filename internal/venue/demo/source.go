// Package demo provides a deterministic in-memory quote source for trying the
// scanner without venue credentials or network access. The fixture contains
// one clean cross-venue arbitrage, one pair that must be rejected on entity
// grounds, and one market with no counterpart on the other venue.
package demo

import (
	"context"
	"time"

	"github.com/arblab/polykalshi/internal/domain"
)

// Source serves a fixed snapshot for one venue.
type Source struct {
	venue domain.Venue
}

var _ domain.QuoteSource = (*Source)(nil)

// NewSource creates a demo source for the given venue.
func NewSource(venue domain.Venue) *Source {
	return &Source{venue: venue}
}

// Venue identifies the source.
func (s *Source) Venue() domain.Venue { return s.venue }

// Snapshot returns the venue's half of the fixture. The same titles come back
// on every call so repeated scans are reproducible.
func (s *Source) Snapshot(_ context.Context) ([]domain.Quote, error) {
	if s.venue == domain.VenueKalshi {
		return kalshiFixture(), nil
	}
	return polymarketFixture(), nil
}

func endIn(days int) *time.Time {
	t := time.Now().UTC().AddDate(0, 0, days).Truncate(time.Hour)
	return &t
}

func kalshiFixture() []domain.Quote {
	return []domain.Quote{
		// Clean arbitrage: YES here plus NO on the other venue costs 0.87.
		{
			Venue: domain.VenueKalshi, MarketID: "FED-CUT-SEP", EventTitle: "Will the Fed cut rates in September 2026?",
			Outcome: domain.OutcomeYes, Price: 0.42, Size: 900, EndDate: endIn(30),
			Depth: []domain.PriceLevel{{Price: 0.43, Size: 1200}, {Price: 0.45, Size: 2000}},
		},
		{
			Venue: domain.VenueKalshi, MarketID: "FED-CUT-SEP", EventTitle: "Will the Fed cut rates in September 2026?",
			Outcome: domain.OutcomeNo, Price: 0.60, Size: 800, EndDate: endIn(30),
		},
		// The other venue lists the same award market for a different actor;
		// the entity gate must keep them apart.
		{
			Venue: domain.VenueKalshi, MarketID: "OSCAR-MURPHY", EventTitle: "Will Cillian Murphy win Best Actor?",
			Outcome: domain.OutcomeYes, Price: 0.55, Size: 300, EndDate: endIn(120),
		},
		{
			Venue: domain.VenueKalshi, MarketID: "OSCAR-MURPHY", EventTitle: "Will Cillian Murphy win Best Actor?",
			Outcome: domain.OutcomeNo, Price: 0.48, Size: 300, EndDate: endIn(120),
		},
		// No counterpart on the other venue: stays unmatched.
		{
			Venue: domain.VenueKalshi, MarketID: "BTC-100K", EventTitle: "Will Bitcoin close above 100000 this year?",
			Outcome: domain.OutcomeYes, Price: 0.31, Size: 500, EndDate: endIn(200),
		},
		{
			Venue: domain.VenueKalshi, MarketID: "BTC-100K", EventTitle: "Will Bitcoin close above 100000 this year?",
			Outcome: domain.OutcomeNo, Price: 0.71, Size: 500, EndDate: endIn(200),
		},
	}
}

func polymarketFixture() []domain.Quote {
	return []domain.Quote{
		{
			Venue: domain.VenuePolymarket, MarketID: "0xfedcut", EventTitle: "Will the Fed cut rates in September 2026?",
			Outcome: domain.OutcomeYes, Price: 0.57, Size: 700, EndDate: endIn(30),
		},
		{
			Venue: domain.VenuePolymarket, MarketID: "0xfedcut", EventTitle: "Will the Fed cut rates in September 2026?",
			Outcome: domain.OutcomeNo, Price: 0.45, Size: 1100, EndDate: endIn(30),
			Depth: []domain.PriceLevel{{Price: 0.46, Size: 900}},
		},
		// Same category as the Kalshi Murphy market but a different subject.
		// The entity gate must refuse this pair.
		{
			Venue: domain.VenuePolymarket, MarketID: "0xcorenswet", EventTitle: "Will David Corenswet win Best Actor?",
			Outcome: domain.OutcomeYes, Price: 0.12, Size: 250, EndDate: endIn(120),
		},
		{
			Venue: domain.VenuePolymarket, MarketID: "0xcorenswet", EventTitle: "Will David Corenswet win Best Actor?",
			Outcome: domain.OutcomeNo, Price: 0.90, Size: 250, EndDate: endIn(120),
		},
	}
}
