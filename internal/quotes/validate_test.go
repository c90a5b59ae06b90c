package quotes

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arblab/polykalshi/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func valid() domain.Quote {
	return domain.Quote{
		Venue:      domain.VenuePolymarket,
		MarketID:   "0xabc",
		EventTitle: "Will it happen?",
		Outcome:    domain.OutcomeYes,
		Price:      0.42,
		Size:       100,
	}
}

func TestCleanKeepsValidQuote(t *testing.T) {
	got := Clean([]domain.Quote{valid()}, testLogger())
	require.Len(t, got, 1)
	assert.Equal(t, "Will it happen?", got[0].EventTitle)
}

func TestCleanTrimsTitle(t *testing.T) {
	q := valid()
	q.EventTitle = "  Will it happen?  "

	got := Clean([]domain.Quote{q}, testLogger())
	require.Len(t, got, 1)
	assert.Equal(t, "Will it happen?", got[0].EventTitle)
}

func TestCleanDropsMalformed(t *testing.T) {
	cases := map[string]func(q *domain.Quote){
		"empty market id":    func(q *domain.Quote) { q.MarketID = "" },
		"blank title":        func(q *domain.Quote) { q.EventTitle = "   " },
		"unknown outcome":    func(q *domain.Quote) { q.Outcome = "MAYBE" },
		"price above one":    func(q *domain.Quote) { q.Price = 1.5 },
		"negative price":     func(q *domain.Quote) { q.Price = -0.1 },
		"negative size":      func(q *domain.Quote) { q.Size = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			q := valid()
			mutate(&q)
			assert.Empty(t, Clean([]domain.Quote{q}, testLogger()))
		})
	}
}

func TestCleanBoundaryPrices(t *testing.T) {
	zero := valid()
	zero.Price = 0
	one := valid()
	one.Price = 1

	got := Clean([]domain.Quote{zero, one}, testLogger())
	assert.Len(t, got, 2)
}

func TestCleanStripsInvalidDepthLevels(t *testing.T) {
	q := valid()
	q.Depth = []domain.PriceLevel{
		{Price: 0.43, Size: 50},
		{Price: 1.2, Size: 10}, // out of range
		{Price: 0.44, Size: 0}, // empty level
		{Price: 0.45, Size: 20},
	}

	got := Clean([]domain.Quote{q}, testLogger())
	require.Len(t, got, 1)
	assert.Equal(t, []domain.PriceLevel{
		{Price: 0.43, Size: 50},
		{Price: 0.45, Size: 20},
	}, got[0].Depth)
}
