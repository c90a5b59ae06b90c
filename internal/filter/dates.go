package filter

import (
	"time"

	"github.com/arblab/polykalshi/internal/domain"
)

// DateConfig bounds events by days until resolution, relative to scan time.
// A nil bound is open on that side.
type DateConfig struct {
	MinDays *int
	MaxDays *int
}

// Active reports whether any bound is set.
func (c DateConfig) Active() bool {
	return c.MinDays != nil || c.MaxDays != nil
}

// ByDaysUntilResolution keeps quotes whose resolution date falls within the
// configured window around now. Quotes without a resolution date are dropped
// when the filter is active: an unknown horizon cannot satisfy a horizon
// bound.
func ByDaysUntilResolution(quotes []domain.Quote, cfg DateConfig, now time.Time) []domain.Quote {
	if len(quotes) == 0 || !cfg.Active() {
		return quotes
	}
	kept := make([]domain.Quote, 0, len(quotes))
	for _, q := range quotes {
		days, ok := DaysUntilResolution(&q, now)
		if !ok {
			continue
		}
		if cfg.MinDays != nil && days < *cfg.MinDays {
			continue
		}
		if cfg.MaxDays != nil && days > *cfg.MaxDays {
			continue
		}
		kept = append(kept, q)
	}
	return kept
}

// DaysUntilResolution returns whole days from now to the quote's resolution
// date, truncated toward zero. The second return is false when the quote has
// no resolution date.
func DaysUntilResolution(q *domain.Quote, now time.Time) (int, bool) {
	if q.EndDate == nil {
		return 0, false
	}
	return int(q.EndDate.Sub(now).Hours() / 24), true
}
