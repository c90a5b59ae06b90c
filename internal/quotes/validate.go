// Package quotes validates raw venue snapshots at the boundary. Venue APIs
// return partial or malformed entries routinely; a bad quote is logged and
// skipped, never propagated as an error, so one broken market cannot stall a
// scan.
package quotes

import (
	"log/slog"
	"strings"

	"github.com/arblab/polykalshi/internal/domain"
)

// Clean returns the valid quotes from a raw snapshot. Titles are trimmed;
// quotes with an empty market ID or title, a price outside [0, 1], a negative
// size, or an unknown outcome are dropped with a debug log. Depth levels with
// non-positive size or an out-of-range price are stripped from otherwise
// valid quotes.
func Clean(raw []domain.Quote, logger *slog.Logger) []domain.Quote {
	kept := make([]domain.Quote, 0, len(raw))
	dropped := 0
	for _, q := range raw {
		q.EventTitle = strings.TrimSpace(q.EventTitle)
		if reason := validate(&q); reason != "" {
			dropped++
			logger.Debug("dropping invalid quote",
				slog.String("venue", string(q.Venue)),
				slog.String("market_id", q.MarketID),
				slog.String("reason", reason),
			)
			continue
		}
		q.Depth = cleanDepth(q.Depth)
		kept = append(kept, q)
	}
	if dropped > 0 {
		logger.Info("quote validation dropped entries",
			slog.Int("dropped", dropped),
			slog.Int("kept", len(kept)),
		)
	}
	return kept
}

func validate(q *domain.Quote) string {
	switch {
	case q.MarketID == "":
		return "empty market id"
	case q.EventTitle == "":
		return "empty event title"
	case q.Outcome != domain.OutcomeYes && q.Outcome != domain.OutcomeNo:
		return "unknown outcome"
	case q.Price < 0 || q.Price > 1:
		return "price out of range"
	case q.Size < 0:
		return "negative size"
	}
	return ""
}

func cleanDepth(levels []domain.PriceLevel) []domain.PriceLevel {
	ok := true
	for _, lvl := range levels {
		if lvl.Size <= 0 || lvl.Price < 0 || lvl.Price > 1 {
			ok = false
			break
		}
	}
	if ok {
		return levels
	}
	clean := make([]domain.PriceLevel, 0, len(levels))
	for _, lvl := range levels {
		if lvl.Size > 0 && lvl.Price >= 0 && lvl.Price <= 1 {
			clean = append(clean, lvl)
		}
	}
	return clean
}
