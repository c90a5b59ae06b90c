package domain

import "time"

// Venue identifies one of the two prediction-market platforms being
// reconciled. Matching and detection code is venue-symmetric: nothing outside
// the venue clients should branch on the concrete value.
type Venue string

const (
	VenueKalshi     Venue = "kalshi"
	VenuePolymarket Venue = "polymarket"
)

// Other returns the opposite venue.
func (v Venue) Other() Venue {
	if v == VenueKalshi {
		return VenuePolymarket
	}
	return VenueKalshi
}

// Outcome is the priced side of a binary market.
type Outcome string

const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

// PriceLevel is a single price+size entry in an orderbook.
type PriceLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// Quote is one venue's priced outcome for one market, taken from an immutable
// snapshot. Prices are probability-priced in [0,1]; Size is the resting
// quantity available at Price. Depth optionally lists the ask levels beyond
// the top, ascending by price. Quotes are never mutated after the venue
// client produces them.
type Quote struct {
	Venue      Venue        `json:"venue"`
	MarketID   string       `json:"market_id"`
	EventTitle string       `json:"event_title"`
	Outcome    Outcome      `json:"outcome"`
	Price      float64      `json:"price"`
	Size       float64      `json:"size"`
	Depth      []PriceLevel `json:"depth,omitempty"`
	EndDate    *time.Time   `json:"end_date,omitempty"`
}

// HasDepth reports whether the quote carries orderbook levels beyond the top.
func (q Quote) HasDepth() bool { return len(q.Depth) > 0 }

// BookLevels returns the full ascending book for the quote: the top of book
// followed by any deeper levels.
func (q Quote) BookLevels() []PriceLevel {
	levels := make([]PriceLevel, 0, 1+len(q.Depth))
	levels = append(levels, PriceLevel{Price: q.Price, Size: q.Size})
	levels = append(levels, q.Depth...)
	return levels
}
