package kalshi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arblab/polykalshi/internal/domain"
)

func TestMarketQuotesCentsConversion(t *testing.T) {
	m := &Market{
		Ticker:    "FED-CUT-SEP",
		Title:     "Will the Fed cut rates in September?",
		YesAsk:    42,
		NoAsk:     60,
		Liquidity: 900,
		CloseTime: "2026-09-30T14:00:00Z",
	}

	quotes := marketQuotes(m)
	require.Len(t, quotes, 2)

	yes := quotes[0]
	assert.Equal(t, domain.VenueKalshi, yes.Venue)
	assert.Equal(t, "FED-CUT-SEP", yes.MarketID)
	assert.Equal(t, domain.OutcomeYes, yes.Outcome)
	assert.InDelta(t, 0.42, yes.Price, 1e-12)
	assert.InDelta(t, 900, yes.Size, 1e-12)
	require.NotNil(t, yes.EndDate)
	assert.Equal(t, time.Date(2026, 9, 30, 14, 0, 0, 0, time.UTC), yes.EndDate.UTC())

	no := quotes[1]
	assert.Equal(t, domain.OutcomeNo, no.Outcome)
	assert.InDelta(t, 0.60, no.Price, 1e-12)
}

func TestMarketQuotesSkipsUnquotedSides(t *testing.T) {
	m := &Market{Ticker: "ONE-SIDED", Title: "t", YesAsk: 42, NoAsk: 0}

	quotes := marketQuotes(m)
	require.Len(t, quotes, 1)
	assert.Equal(t, domain.OutcomeYes, quotes[0].Outcome)
}

func TestMarketQuotesFallsBackToTicker(t *testing.T) {
	m := &Market{Ticker: "NO-TITLE", YesAsk: 10}

	quotes := marketQuotes(m)
	require.Len(t, quotes, 1)
	assert.Equal(t, "NO-TITLE", quotes[0].EventTitle)
}

func TestAskLadderDerivedFromOppositeBids(t *testing.T) {
	// NO bids at 55 and 58 cents are YES asks at 45 and 42 cents; the ladder
	// comes back price-ascending.
	ladder := askLadder([]PriceLevel{
		{Price: 55, Quantity: 100},
		{Price: 58, Quantity: 200},
	})

	require.Len(t, ladder, 2)
	assert.InDelta(t, 0.42, ladder[0].Price, 1e-12)
	assert.InDelta(t, 200, ladder[0].Size, 1e-12)
	assert.InDelta(t, 0.45, ladder[1].Price, 1e-12)
	assert.InDelta(t, 100, ladder[1].Size, 1e-12)
}

func TestAskLadderSkipsDegenerateLevels(t *testing.T) {
	ladder := askLadder([]PriceLevel{
		{Price: 0, Quantity: 10},
		{Price: 100, Quantity: 10},
		{Price: 50, Quantity: 0},
		{Price: 50, Quantity: 25},
	})

	require.Len(t, ladder, 1)
	assert.InDelta(t, 0.50, ladder[0].Price, 1e-12)
}
