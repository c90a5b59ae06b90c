package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arblab/polykalshi/internal/domain"
)

func qEnding(title string, end *time.Time) domain.Quote {
	return domain.Quote{
		Venue:      domain.VenueKalshi,
		MarketID:   "m",
		EventTitle: title,
		Outcome:    domain.OutcomeYes,
		Price:      0.5,
		Size:       10,
		EndDate:    end,
	}
}

func intPtr(v int) *int { return &v }

func TestByDaysUntilResolutionInactivePassesThrough(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	quotes := []domain.Quote{qEnding("no date", nil)}

	kept := ByDaysUntilResolution(quotes, DateConfig{}, now)
	assert.Equal(t, quotes, kept)
}

func TestByDaysUntilResolutionWindow(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	in5 := now.AddDate(0, 0, 5)
	in50 := now.AddDate(0, 0, 50)
	in400 := now.AddDate(0, 0, 400)

	quotes := []domain.Quote{
		qEnding("soon", &in5),
		qEnding("mid", &in50),
		qEnding("far", &in400),
	}

	kept := ByDaysUntilResolution(quotes, DateConfig{MinDays: intPtr(10), MaxDays: intPtr(365)}, now)
	assert.Equal(t, []string{"mid"}, titles(kept))
}

func TestByDaysUntilResolutionDropsUndatedWhenActive(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	in50 := now.AddDate(0, 0, 50)

	quotes := []domain.Quote{
		qEnding("no date", nil),
		qEnding("dated", &in50),
	}

	kept := ByDaysUntilResolution(quotes, DateConfig{MaxDays: intPtr(365)}, now)
	assert.Equal(t, []string{"dated"}, titles(kept))
}

func TestDaysUntilResolution(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	end := now.Add(36 * time.Hour)
	days, ok := DaysUntilResolution(&domain.Quote{EndDate: &end}, now)
	assert.True(t, ok)
	assert.Equal(t, 1, days)

	_, ok = DaysUntilResolution(&domain.Quote{}, now)
	assert.False(t, ok)
}
