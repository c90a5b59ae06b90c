package executor

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

func opportunity() domain.ArbOpportunity {
	return domain.ArbOpportunity{
		ID:       "opp-1",
		EventKey: "evt",
		Long: domain.Leg{
			Venue: domain.VenueKalshi, MarketID: "FED", Outcome: domain.OutcomeYes, Price: 0.42, Size: 1000,
		},
		Short: domain.Leg{
			Venue: domain.VenuePolymarket, MarketID: "0xfed", Outcome: domain.OutcomeNo, Price: 0.45, Size: 1000,
		},
		EdgeBps:        1300,
		ActualNotional: 500,
		GrossProfitUSD: 65,
		StakePerLeg:    250,
	}
}

func TestPaperExecuteFillsBothLegs(t *testing.T) {
	p := NewPaper(testLogger())

	fills := p.Execute([]domain.ArbOpportunity{opportunity()})

	require.Len(t, fills, 2)
	assert.Equal(t, domain.VenueKalshi, fills[0].Venue)
	assert.Equal(t, domain.OutcomeYes, fills[0].Outcome)
	assert.InDelta(t, 250.0/0.42, fills[0].Size, 1e-9)
	assert.Equal(t, domain.VenuePolymarket, fills[1].Venue)
	assert.Equal(t, domain.OutcomeNo, fills[1].Outcome)
	assert.InDelta(t, 250.0/0.45, fills[1].Size, 1e-9)
}

func TestPaperAccumulatesProfitAndFills(t *testing.T) {
	p := NewPaper(testLogger())

	p.Execute([]domain.ArbOpportunity{opportunity()})
	p.Execute([]domain.ArbOpportunity{opportunity()})

	assert.InDelta(t, 130, p.GrossProfit(), 1e-9)
	assert.Len(t, p.Fills(), 4)
}

func TestPaperZeroPriceLeg(t *testing.T) {
	p := NewPaper(testLogger())
	opp := opportunity()
	opp.Long.Price = 0

	fills := p.Execute([]domain.ArbOpportunity{opp})
	require.Len(t, fills, 2)
	assert.Zero(t, fills[0].Size)
}

func TestPaperFillsReturnsCopy(t *testing.T) {
	p := NewPaper(testLogger())
	p.Execute([]domain.ArbOpportunity{opportunity()})

	fills := p.Fills()
	fills[0].Size = -1
	assert.NotEqual(t, -1.0, p.Fills()[0].Size)
}
