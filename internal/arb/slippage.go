// Package arb evaluates matched event pairs for cross-venue arbitrage. The
// slippage estimator walks order book depth to price a fill realistically;
// the detector sizes and ranks the opportunities that survive it.
package arb

import (
	"github.com/arblab/polykalshi/internal/domain"
)

// EstimateFillPrice walks the book levels of q and returns the
// volume-weighted average price of filling size contracts, together with
// whether the book was exhausted before the full size filled.
//
// On exhaustion the average deliberately covers only the resting liquidity;
// the unfillable remainder is reported through the exhausted flag instead of
// being priced at some assumed level. Callers that must stay inside the book
// cap size with MaxSizeForPriceImpact first, which also keeps the average at
// most maxImpact above top-of-book. A quote without depth fills entirely at
// the top-of-book price.
func EstimateFillPrice(q *domain.Quote, size float64) (avg float64, exhausted bool) {
	if size <= 0 {
		return q.Price, false
	}
	remaining := size
	var filled, cost float64
	for _, lvl := range q.BookLevels() {
		if lvl.Size <= 0 {
			continue
		}
		take := lvl.Size
		if take > remaining {
			take = remaining
		}
		filled += take
		cost += take * lvl.Price
		remaining -= take
		if remaining <= 0 {
			break
		}
	}
	if filled == 0 {
		return q.Price, true
	}
	return cost / filled, remaining > 0
}

// MaxSizeForPriceImpact returns the largest size whose volume-weighted
// average fill price stays within maxImpact of the top-of-book price. The
// average is monotonically non-decreasing as size grows, so walking levels in
// order and taking a partial fill at the first level that would push the
// average past the limit yields the exact maximum. A quote without depth is
// capped at its top-of-book size.
func MaxSizeForPriceImpact(q *domain.Quote, maxImpact float64) float64 {
	levels := q.BookLevels()
	if len(levels) == 0 {
		return 0
	}
	limit := levels[0].Price * (1 + maxImpact)

	var filled, cost float64
	for _, lvl := range levels {
		if lvl.Size <= 0 {
			continue
		}
		if lvl.Price <= limit {
			filled += lvl.Size
			cost += lvl.Size * lvl.Price
			continue
		}
		// Partial take x at price p keeps the average within the limit while
		// (cost + x*p) / (filled + x) <= limit, i.e.
		// x <= (limit*filled - cost) / (p - limit).
		x := (limit*filled - cost) / (lvl.Price - limit)
		if x > 0 {
			filled += x
		}
		break
	}
	return filled
}
