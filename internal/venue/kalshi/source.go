package kalshi

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/arblab/polykalshi/internal/domain"
)

const (
	defaultPageLimit  = 200
	defaultMaxMarkets = 2000
)

// SourceConfig controls snapshot breadth and depth enrichment.
type SourceConfig struct {
	// MaxMarkets bounds how many open markets a snapshot pages through.
	MaxMarkets int

	// DepthTopN fetches full order books for the N most liquid markets of
	// the snapshot. Zero disables depth enrichment and quotes carry only
	// top-of-book.
	DepthTopN int
}

// Source folds Kalshi markets into normalized quotes. Each open market yields
// a YES and a NO quote priced at the ask, converted from cents to [0, 1].
type Source struct {
	client *Client
	cfg    SourceConfig
	logger *slog.Logger
}

var _ domain.QuoteSource = (*Source)(nil)

// NewSource creates a Kalshi quote source.
func NewSource(client *Client, cfg SourceConfig, logger *slog.Logger) *Source {
	if cfg.MaxMarkets <= 0 {
		cfg.MaxMarkets = defaultMaxMarkets
	}
	return &Source{
		client: client,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "kalshi_source")),
	}
}

// Venue identifies the source.
func (s *Source) Venue() domain.Venue { return domain.VenueKalshi }

// Snapshot pages through open markets and returns their quotes. Markets
// without a quoted ask on a side contribute no quote for that side.
func (s *Source) Snapshot(ctx context.Context) ([]domain.Quote, error) {
	var markets []Market
	cursor := ""
	for len(markets) < s.cfg.MaxMarkets {
		page, next, err := s.client.GetMarkets(ctx, "open", defaultPageLimit, cursor)
		if err != nil {
			return nil, err
		}
		markets = append(markets, page...)
		if next == "" || len(page) == 0 {
			break
		}
		cursor = next
	}
	if len(markets) > s.cfg.MaxMarkets {
		markets = markets[:s.cfg.MaxMarkets]
	}

	quotes := make([]domain.Quote, 0, 2*len(markets))
	for i := range markets {
		quotes = append(quotes, marketQuotes(&markets[i])...)
	}

	if s.cfg.DepthTopN > 0 {
		s.enrichDepth(ctx, markets, quotes)
	}

	s.logger.Info("snapshot complete",
		slog.Int("markets", len(markets)),
		slog.Int("quotes", len(quotes)),
	)
	return quotes, nil
}

func marketQuotes(m *Market) []domain.Quote {
	title := m.Title
	if title == "" {
		title = m.Ticker
	}
	var end *time.Time
	if t, ok := m.EndDate(); ok {
		end = &t
	}

	quotes := make([]domain.Quote, 0, 2)
	if m.YesAsk > 0 {
		quotes = append(quotes, domain.Quote{
			Venue:      domain.VenueKalshi,
			MarketID:   m.Ticker,
			EventTitle: title,
			Outcome:    domain.OutcomeYes,
			Price:      float64(m.YesAsk) / 100.0,
			Size:       m.Liquidity,
			EndDate:    end,
		})
	}
	if m.NoAsk > 0 {
		quotes = append(quotes, domain.Quote{
			Venue:      domain.VenueKalshi,
			MarketID:   m.Ticker,
			EventTitle: title,
			Outcome:    domain.OutcomeNo,
			Price:      float64(m.NoAsk) / 100.0,
			Size:       m.Liquidity,
			EndDate:    end,
		})
	}
	return quotes
}

// enrichDepth fetches order books for the most liquid markets and attaches
// ask ladders to their quotes. A failed book fetch leaves the quote at
// top-of-book only.
func (s *Source) enrichDepth(ctx context.Context, markets []Market, quotes []domain.Quote) {
	ranked := make([]*Market, 0, len(markets))
	for i := range markets {
		ranked = append(ranked, &markets[i])
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Liquidity != ranked[j].Liquidity {
			return ranked[i].Liquidity > ranked[j].Liquidity
		}
		return ranked[i].Ticker < ranked[j].Ticker
	})
	if len(ranked) > s.cfg.DepthTopN {
		ranked = ranked[:s.cfg.DepthTopN]
	}

	byMarket := make(map[string][]*domain.Quote)
	for i := range quotes {
		q := &quotes[i]
		byMarket[q.MarketID] = append(byMarket[q.MarketID], q)
	}

	for _, m := range ranked {
		book, err := s.client.GetOrderbook(ctx, m.Ticker)
		if err != nil {
			s.logger.Warn("orderbook fetch failed",
				slog.String("ticker", m.Ticker),
				slog.String("error", err.Error()),
			)
			continue
		}
		for _, q := range byMarket[m.Ticker] {
			var ladder []domain.PriceLevel
			switch q.Outcome {
			case domain.OutcomeYes:
				ladder = askLadder(book.NoBids)
			case domain.OutcomeNo:
				ladder = askLadder(book.YesBids)
			}
			if len(ladder) == 0 {
				continue
			}
			q.Price = ladder[0].Price
			q.Size = ladder[0].Size
			q.Depth = ladder[1:]
		}
	}
}

// askLadder derives an ask ladder from the opposite side's bids: a NO bid at
// c cents is a YES ask at 100-c. Levels come back sorted by price ascending.
func askLadder(bids []PriceLevel) []domain.PriceLevel {
	ladder := make([]domain.PriceLevel, 0, len(bids))
	for _, b := range bids {
		if b.Quantity <= 0 || b.Price <= 0 || b.Price >= 100 {
			continue
		}
		ladder = append(ladder, domain.PriceLevel{
			Price: float64(100-b.Price) / 100.0,
			Size:  float64(b.Quantity),
		})
	}
	sort.Slice(ladder, func(i, j int) bool { return ladder[i].Price < ladder[j].Price })
	return ladder
}
