package polymarket

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/arblab/polykalshi/internal/domain"
)

const (
	defaultPageLimit  = 500
	defaultMaxMarkets = 2000
)

// SourceConfig controls snapshot breadth and depth enrichment.
type SourceConfig struct {
	// MaxMarkets bounds how many active markets a snapshot pages through.
	MaxMarkets int

	// DepthTopN fetches CLOB books for the N most liquid markets of the
	// snapshot. Zero disables depth enrichment.
	DepthTopN int
}

// Source folds Polymarket Gamma markets into normalized quotes. Each binary
// market yields a YES and a NO quote from its outcome prices; depth comes
// from the CLOB book of the matching outcome token.
type Source struct {
	gamma  *GammaClient
	clob   *ClobClient
	cfg    SourceConfig
	logger *slog.Logger
}

var _ domain.QuoteSource = (*Source)(nil)

// NewSource creates a Polymarket quote source. clob may be nil when depth
// enrichment is disabled.
func NewSource(gamma *GammaClient, clob *ClobClient, cfg SourceConfig, logger *slog.Logger) *Source {
	if cfg.MaxMarkets <= 0 {
		cfg.MaxMarkets = defaultMaxMarkets
	}
	return &Source{
		gamma:  gamma,
		clob:   clob,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "polymarket_source")),
	}
}

// Venue identifies the source.
func (s *Source) Venue() domain.Venue { return domain.VenuePolymarket }

// Snapshot pages through active markets and returns their quotes. Non-binary
// markets and markets with unparseable outcome data contribute nothing.
func (s *Source) Snapshot(ctx context.Context) ([]domain.Quote, error) {
	var markets []APIMarket
	offset := 0
	for len(markets) < s.cfg.MaxMarkets {
		page, err := s.gamma.GetMarkets(ctx, defaultPageLimit, offset)
		if err != nil {
			return nil, err
		}
		markets = append(markets, page...)
		if len(page) < defaultPageLimit {
			break
		}
		offset += len(page)
	}
	if len(markets) > s.cfg.MaxMarkets {
		markets = markets[:s.cfg.MaxMarkets]
	}

	quotes := make([]domain.Quote, 0, 2*len(markets))
	for i := range markets {
		quotes = append(quotes, marketQuotes(&markets[i])...)
	}

	if s.cfg.DepthTopN > 0 && s.clob != nil {
		s.enrichDepth(ctx, markets, quotes)
	}

	s.logger.Info("snapshot complete",
		slog.Int("markets", len(markets)),
		slog.Int("quotes", len(quotes)),
	)
	return quotes, nil
}

func marketQuotes(m *APIMarket) []domain.Quote {
	outcomes := m.OutcomeList()
	prices := m.OutcomePriceList()
	if len(outcomes) != 2 || len(prices) != 2 {
		return nil
	}

	var end *time.Time
	if t, ok := m.EndDate(); ok {
		end = &t
	}
	size := m.LiquidityUSD()

	quotes := make([]domain.Quote, 0, 2)
	for i, label := range outcomes {
		var outcome domain.Outcome
		switch strings.ToLower(label) {
		case "yes":
			outcome = domain.OutcomeYes
		case "no":
			outcome = domain.OutcomeNo
		default:
			// Categorical market, not a binary YES/NO pair.
			return nil
		}
		quotes = append(quotes, domain.Quote{
			Venue:      domain.VenuePolymarket,
			MarketID:   m.ID,
			EventTitle: m.Question,
			Outcome:    outcome,
			Price:      prices[i],
			Size:       size,
			EndDate:    end,
		})
	}
	return quotes
}

// enrichDepth fetches CLOB books for the most liquid markets and attaches ask
// ladders to their quotes. Token IDs align positionally with the outcome
// labels of the market.
func (s *Source) enrichDepth(ctx context.Context, markets []APIMarket, quotes []domain.Quote) {
	ranked := make([]*APIMarket, 0, len(markets))
	for i := range markets {
		ranked = append(ranked, &markets[i])
	}
	sort.Slice(ranked, func(i, j int) bool {
		li, lj := ranked[i].LiquidityUSD(), ranked[j].LiquidityUSD()
		if li != lj {
			return li > lj
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > s.cfg.DepthTopN {
		ranked = ranked[:s.cfg.DepthTopN]
	}

	type sideKey struct {
		marketID string
		outcome  domain.Outcome
	}
	bySide := make(map[sideKey]*domain.Quote)
	for i := range quotes {
		q := &quotes[i]
		bySide[sideKey{q.MarketID, q.Outcome}] = q
	}

	for _, m := range ranked {
		outcomes := m.OutcomeList()
		tokens := m.TokenIDList()
		if len(outcomes) != 2 || len(tokens) != 2 {
			continue
		}
		for i, label := range outcomes {
			var outcome domain.Outcome
			switch strings.ToLower(label) {
			case "yes":
				outcome = domain.OutcomeYes
			case "no":
				outcome = domain.OutcomeNo
			default:
				continue
			}
			q, ok := bySide[sideKey{m.ID, outcome}]
			if !ok {
				continue
			}
			book, err := s.clob.GetBook(ctx, tokens[i])
			if err != nil {
				s.logger.Warn("book fetch failed",
					slog.String("market_id", m.ID),
					slog.String("token_id", tokens[i]),
					slog.String("error", err.Error()),
				)
				continue
			}
			ladder := AskLadder(&book)
			if len(ladder) == 0 {
				continue
			}
			q.Price = ladder[0].Price
			q.Size = ladder[0].Size
			q.Depth = ladder[1:]
		}
	}
}
