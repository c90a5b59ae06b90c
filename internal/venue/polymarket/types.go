package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// APIMarket is a market row from the Polymarket Gamma API. Outcome labels,
// prices, and token IDs arrive as JSON-encoded string arrays inside string
// fields.
type APIMarket struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	ConditionID   string   `json:"condition_id"`
	Slug          string   `json:"slug"`
	Active        flexBool `json:"active"`
	Closed        bool     `json:"closed"`
	Outcomes      string   `json:"outcomes"`      // e.g. "[\"Yes\",\"No\"]"
	OutcomePrices string   `json:"outcomePrices"` // e.g. "[\"0.65\",\"0.35\"]"
	ClobTokenIDs  string   `json:"clobTokenIds"`  // e.g. "[\"123\",\"456\"]"
	Volume        string   `json:"volume"`
	Liquidity     string   `json:"liquidity"`
	EndDateISO    string   `json:"end_date_iso"`
}

// OutcomePriceList decodes the outcomePrices field.
func (m *APIMarket) OutcomePriceList() []float64 {
	var raw []string
	if err := json.Unmarshal([]byte(m.OutcomePrices), &raw); err != nil {
		return nil
	}
	prices := make([]float64, 0, len(raw))
	for _, s := range raw {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		prices = append(prices, p)
	}
	return prices
}

// OutcomeList decodes the outcomes field.
func (m *APIMarket) OutcomeList() []string {
	var out []string
	if err := json.Unmarshal([]byte(m.Outcomes), &out); err != nil {
		return nil
	}
	return out
}

// TokenIDList decodes the clobTokenIds field.
func (m *APIMarket) TokenIDList() []string {
	var out []string
	if err := json.Unmarshal([]byte(m.ClobTokenIDs), &out); err != nil {
		return nil
	}
	return out
}

// LiquidityUSD parses the liquidity field, zero when absent.
func (m *APIMarket) LiquidityUSD() float64 {
	v, err := strconv.ParseFloat(m.Liquidity, 64)
	if err != nil {
		return 0
	}
	return v
}

// EndDate parses the resolution date. The second return is false when the
// field is absent or malformed.
func (m *APIMarket) EndDate() (time.Time, bool) {
	if m.EndDateISO == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, m.EndDateISO)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// APIBook is an order book snapshot from the CLOB API.
type APIBook struct {
	Market    string     `json:"market"`
	AssetID   string     `json:"asset_id"`
	Bids      []APILevel `json:"bids"`
	Asks      []APILevel `json:"asks"`
	Timestamp string     `json:"timestamp"`
}

// APILevel is a single book level; the CLOB API sends numbers as strings.
type APILevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// WSMessage is a frame from the CLOB market-data WebSocket.
type WSMessage struct {
	EventType string     `json:"event_type"` // "book", "price_change"
	AssetID   string     `json:"asset_id"`
	Market    string     `json:"market"`
	Bids      []APILevel `json:"bids"`
	Asks      []APILevel `json:"asks"`
	Timestamp string     `json:"timestamp"`
}

// WSCommand is the subscription payload sent on connect.
type WSCommand struct {
	Type   string   `json:"type"` // "subscribe"
	Assets []string `json:"assets_ids,omitempty"`
}
