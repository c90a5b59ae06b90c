package notify

import (
	"fmt"
	"strings"

	"github.com/arblab/polykalshi/internal/domain"
)

// OpportunityAlert renders a scan pass's opportunities as one alert. Only the
// top entries are listed in the body; the title carries the total count.
func OpportunityAlert(opps []domain.ArbOpportunity, limit int) Alert {
	if limit <= 0 || limit > len(opps) {
		limit = len(opps)
	}

	var b strings.Builder
	for _, opp := range opps[:limit] {
		fmt.Fprintf(&b, "%s\n  edge %d bps, notional $%.2f, est. profit $%.2f\n  long %s %s @ %.3f / short %s %s @ %.3f\n",
			opp.EventKey,
			opp.EdgeBps, opp.ActualNotional, opp.GrossProfitUSD,
			opp.Long.Venue, opp.Long.Outcome, opp.Long.Price,
			opp.Short.Venue, opp.Short.Outcome, opp.Short.Price,
		)
	}
	if limit < len(opps) {
		fmt.Fprintf(&b, "... and %d more\n", len(opps)-limit)
	}

	return Alert{
		Event: EventOpportunity,
		Title: fmt.Sprintf("%d arbitrage opportunit%s found", len(opps), plural(len(opps))),
		Body:  b.String(),
	}
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
