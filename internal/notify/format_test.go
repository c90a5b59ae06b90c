package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arblab/polykalshi/internal/domain"
)

func opp(eventKey string, edgeBps int) domain.ArbOpportunity {
	return domain.ArbOpportunity{
		ID:       "id-" + eventKey,
		EventKey: eventKey,
		Long: domain.Leg{
			Venue: domain.VenueKalshi, MarketID: "m", Outcome: domain.OutcomeYes, Price: 0.42,
		},
		Short: domain.Leg{
			Venue: domain.VenuePolymarket, MarketID: "m2", Outcome: domain.OutcomeNo, Price: 0.45,
		},
		EdgeBps:        edgeBps,
		ActualNotional: 500,
		GrossProfitUSD: 65,
	}
}

func TestOpportunityAlertSingle(t *testing.T) {
	alert := OpportunityAlert([]domain.ArbOpportunity{opp("a <-> b", 1300)}, 5)

	assert.Equal(t, EventOpportunity, alert.Event)
	assert.Equal(t, "1 arbitrage opportunity found", alert.Title)
	assert.Contains(t, alert.Body, "a <-> b")
	assert.Contains(t, alert.Body, "edge 1300 bps")
	assert.Contains(t, alert.Body, "long kalshi YES @ 0.420")
	assert.Contains(t, alert.Body, "short polymarket NO @ 0.450")
	assert.NotContains(t, alert.Body, "more")
}

func TestOpportunityAlertOverflow(t *testing.T) {
	opps := []domain.ArbOpportunity{
		opp("a", 1300), opp("b", 1200), opp("c", 1100), opp("d", 1000),
	}

	alert := OpportunityAlert(opps, 2)

	assert.Equal(t, "4 arbitrage opportunities found", alert.Title)
	assert.Contains(t, alert.Body, "a")
	assert.Contains(t, alert.Body, "b")
	assert.Contains(t, alert.Body, "... and 2 more")
	assert.Equal(t, 1, strings.Count(alert.Body, "more"))
}

func TestOpportunityAlertZeroLimitListsAll(t *testing.T) {
	opps := []domain.ArbOpportunity{opp("a", 1300), opp("b", 1200)}

	alert := OpportunityAlert(opps, 0)
	assert.Contains(t, alert.Body, "a")
	assert.Contains(t, alert.Body, "b")
	assert.NotContains(t, alert.Body, "more")
}
