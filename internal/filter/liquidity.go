// Package filter narrows venue snapshots before matching: events without
// two-sided liquidity or outside the resolution-date horizon are removed so
// the matcher and detector never see them.
package filter

import (
	"github.com/arblab/polykalshi/internal/domain"
)

// LiquidityConfig controls which events survive the liquidity filter.
type LiquidityConfig struct {
	// RequireBothOutcomes drops events missing a YES or a NO quote. An
	// opportunity needs both sides, so this defaults to on.
	RequireBothOutcomes bool

	// MinPrice, when > 0, requires every quote of the event to be at or
	// above it. At zero, it only requires each side to have some quote with
	// a non-zero price.
	MinPrice float64

	// MinSize, when > 0, requires each side of the event to have at least
	// one quote of that size.
	MinSize float64
}

// ByLiquidity returns the quotes belonging to events that satisfy cfg,
// preserving input order.
func ByLiquidity(quotes []domain.Quote, cfg LiquidityConfig) []domain.Quote {
	if len(quotes) == 0 {
		return quotes
	}

	type sideStats struct {
		count   int
		hasSize bool
		hasPx   bool
		allPx   bool
	}
	type eventStats struct {
		yes sideStats
		no  sideStats
	}

	events := make(map[string]*eventStats)
	for i := range quotes {
		q := &quotes[i]
		st, ok := events[q.EventTitle]
		if !ok {
			st = &eventStats{yes: sideStats{allPx: true}, no: sideStats{allPx: true}}
			events[q.EventTitle] = st
		}
		side := &st.yes
		if q.Outcome == domain.OutcomeNo {
			side = &st.no
		}
		side.count++
		if q.Size >= cfg.MinSize {
			side.hasSize = true
		}
		if q.Price > 0 {
			side.hasPx = true
		}
		if q.Price < cfg.MinPrice {
			side.allPx = false
		}
	}

	valid := make(map[string]bool, len(events))
	for title, st := range events {
		if cfg.RequireBothOutcomes && (st.yes.count == 0 || st.no.count == 0) {
			continue
		}
		if cfg.MinPrice > 0 {
			if st.yes.count == 0 || st.no.count == 0 || !st.yes.allPx || !st.no.allPx {
				continue
			}
		} else if !st.yes.hasPx || !st.no.hasPx {
			continue
		}
		if cfg.MinSize > 0 && (!st.yes.hasSize || !st.no.hasSize) {
			continue
		}
		valid[title] = true
	}

	kept := make([]domain.Quote, 0, len(quotes))
	for _, q := range quotes {
		if valid[q.EventTitle] {
			kept = append(kept, q)
		}
	}
	return kept
}
