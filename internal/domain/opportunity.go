package domain

import "time"

// Leg is one side of a cross-exchange arbitrage: a buy of one outcome on one
// venue. Price is the expected average fill price (slippage-adjusted when
// depth was available) and Size the liquidity-capped quantity.
type Leg struct {
	Venue    Venue   `json:"venue"`
	MarketID string  `json:"market_id"`
	Outcome  Outcome `json:"outcome"`
	Price    float64 `json:"price"`
	Size     float64 `json:"size"`
}

// ArbOpportunity is a priceable cross-exchange arbitrage between a matched
// event pair: buying Long (YES on one venue) and Short (NO on the other)
// costs less than the guaranteed $1 payoff. Opportunities are created fresh
// on each detection pass and never mutated afterwards.
type ArbOpportunity struct {
	ID       string `json:"id"`
	EventKey string `json:"event_key"`
	Long     Leg    `json:"long"`
	Short    Leg    `json:"short"`

	// EdgeBps is the profit margin in integer basis points:
	// round((1 - cost) * 10000) where cost is the summed leg prices.
	EdgeBps int `json:"edge_bps"`

	// MaxNotional is the deployable notional after liquidity capping,
	// bounded by the per-leg ceiling.
	MaxNotional float64 `json:"max_notional"`

	// ActualNotional is min(budget, MaxNotional) for the caller's budget.
	ActualNotional float64 `json:"actual_notional"`

	// GrossProfitUSD = ActualNotional * EdgeBps / 10000.
	GrossProfitUSD float64 `json:"gross_profit_usd"`

	// StakePerLeg is the 50/50 split of ActualNotional across both legs.
	StakePerLeg float64 `json:"stake_per_leg"`

	// DepthAdjusted reports whether leg prices were re-priced from
	// orderbook depth rather than taken from top of book.
	DepthAdjusted bool `json:"depth_adjusted"`

	CreatedAt time.Time `json:"created_at"`
}
