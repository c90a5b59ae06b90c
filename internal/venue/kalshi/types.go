package kalshi

import "time"

// Market is a market row as returned by the Kalshi REST API. Prices are in
// cents (1-99).
type Market struct {
	Ticker       string  `json:"ticker"`
	EventTicker  string  `json:"event_ticker"`
	Title        string  `json:"title"`
	Subtitle     string  `json:"subtitle"`
	Status       string  `json:"status"` // "open", "closed", "settled"
	YesBid       int64   `json:"yes_bid"`
	YesAsk       int64   `json:"yes_ask"`
	NoBid        int64   `json:"no_bid"`
	NoAsk        int64   `json:"no_ask"`
	Liquidity    float64 `json:"liquidity"`
	Volume       int64   `json:"volume"`
	OpenInterest int64   `json:"open_interest"`
	CloseTime    string  `json:"close_time"` // RFC3339
}

// EndDate parses the market close time. The second return is false when the
// field is absent or malformed.
func (m *Market) EndDate() (time.Time, bool) {
	if m.CloseTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, m.CloseTime)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Orderbook is the resting book for one market. Levels are bids; the ask side
// of YES is derived from NO bids (a NO bid at c cents is a YES ask at 100-c).
type Orderbook struct {
	YesBids []PriceLevel `json:"yes"`
	NoBids  []PriceLevel `json:"no"`
}

// PriceLevel is a single price+quantity book entry, price in cents.
type PriceLevel struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
}

// ErrorResponse is the Kalshi API error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
