// Package executor simulates taking detected opportunities. No orders reach a
// venue; the paper executor exists to track what the scanner would have made.
package executor

import (
	"log/slog"
	"sync"

	"github.com/arblab/polykalshi/internal/domain"
)

// Fill is one simulated leg of an executed opportunity.
type Fill struct {
	Venue    domain.Venue   `json:"venue"`
	MarketID string         `json:"market_id"`
	Outcome  domain.Outcome `json:"outcome"`
	Price    float64        `json:"price"`
	Size     float64        `json:"size"`
}

// Paper records simulated fills for opportunities. Both legs are buys, each
// funded with the opportunity's per-leg stake; contract counts follow from
// the leg's depth-adjusted average price.
type Paper struct {
	logger *slog.Logger

	mu          sync.Mutex
	fills       []Fill
	grossProfit float64
}

// NewPaper creates a paper executor.
func NewPaper(logger *slog.Logger) *Paper {
	return &Paper{
		logger: logger.With(slog.String("component", "paper_executor")),
	}
}

// Execute simulates both legs of each opportunity and returns the fills, in
// opportunity order. Legs with a non-positive price contribute a zero-size
// fill rather than dividing by zero.
func (p *Paper) Execute(opps []domain.ArbOpportunity) []Fill {
	fills := make([]Fill, 0, 2*len(opps))
	for i := range opps {
		opp := &opps[i]
		fills = append(fills,
			legFill(&opp.Long, opp.StakePerLeg),
			legFill(&opp.Short, opp.StakePerLeg),
		)

		p.logger.Info("executed paper trade",
			slog.String("event_key", opp.EventKey),
			slog.String("long", string(opp.Long.Venue)),
			slog.Float64("long_price", opp.Long.Price),
			slog.String("short", string(opp.Short.Venue)),
			slog.Float64("short_price", opp.Short.Price),
			slog.Float64("notional", opp.ActualNotional),
			slog.Float64("profit_usd", opp.GrossProfitUSD),
		)

		p.mu.Lock()
		p.grossProfit += opp.GrossProfitUSD
		p.mu.Unlock()
	}

	p.mu.Lock()
	p.fills = append(p.fills, fills...)
	p.mu.Unlock()
	return fills
}

// Fills returns a copy of every fill recorded so far.
func (p *Paper) Fills() []Fill {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Fill, len(p.fills))
	copy(out, p.fills)
	return out
}

// GrossProfit returns the accumulated simulated profit in USD.
func (p *Paper) GrossProfit() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.grossProfit
}

func legFill(leg *domain.Leg, stake float64) Fill {
	f := Fill{
		Venue:    leg.Venue,
		MarketID: leg.MarketID,
		Outcome:  leg.Outcome,
		Price:    leg.Price,
	}
	if leg.Price > 0 {
		f.Size = stake / leg.Price
	}
	return f
}
