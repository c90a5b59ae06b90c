package arb

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/arblab/polykalshi/internal/domain"
)

const (
	// DefaultMaxPriceImpact caps the volume-weighted fill price at 1% above
	// top-of-book.
	DefaultMaxPriceImpact = 0.01

	// DefaultMaxNotionalPerLeg is the per-opportunity notional ceiling in USD.
	DefaultMaxNotionalPerLeg = 500.0

	// DefaultBudget is the total notional deployed per opportunity, split
	// evenly across the two legs.
	DefaultBudget = 1000.0
)

// DetectorConfig holds the risk tunables for opportunity sizing.
type DetectorConfig struct {
	MaxPriceImpact    float64
	MaxNotionalPerLeg float64
	Budget            float64
}

// Detector turns matched event pairs into sized arbitrage opportunities. Both
// directions of each pair are evaluated: YES on one venue against NO on the
// other, then the reverse. A direction is an opportunity when the combined
// depth-adjusted cost of the two legs is below 1.00.
type Detector struct {
	cfg    DetectorConfig
	logger *slog.Logger
}

// NewDetector creates a Detector, applying defaults for unset config fields.
func NewDetector(cfg DetectorConfig, logger *slog.Logger) *Detector {
	if cfg.MaxPriceImpact <= 0 {
		cfg.MaxPriceImpact = DefaultMaxPriceImpact
	}
	if cfg.MaxNotionalPerLeg <= 0 {
		cfg.MaxNotionalPerLeg = DefaultMaxNotionalPerLeg
	}
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultBudget
	}
	return &Detector{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "detector")),
	}
}

// Detect evaluates every pair and returns the profitable opportunities ranked
// by edge descending, ties broken by event key ascending. A panic while
// evaluating one pair is logged and skips only that pair; one malformed book
// must not sink the whole pass.
func (d *Detector) Detect(pairs []domain.MatchedEventPair) []domain.ArbOpportunity {
	var opps []domain.ArbOpportunity
	for i := range pairs {
		opps = append(opps, d.evaluatePair(&pairs[i])...)
	}
	sort.Slice(opps, func(i, j int) bool {
		if opps[i].EdgeBps != opps[j].EdgeBps {
			return opps[i].EdgeBps > opps[j].EdgeBps
		}
		return opps[i].EventKey < opps[j].EventKey
	})
	return opps
}

func (d *Detector) evaluatePair(pair *domain.MatchedEventPair) (opps []domain.ArbOpportunity) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("pair evaluation panicked",
				slog.String("event_key", pair.EventKey()),
				slog.Any("panic", r),
			)
			opps = nil
		}
	}()

	key := pair.EventKey()
	if opp, ok := d.evaluateDirection(key, pair.A.Yes, pair.B.No); ok {
		opps = append(opps, opp)
	}
	if opp, ok := d.evaluateDirection(key, pair.B.Yes, pair.A.No); ok {
		opps = append(opps, opp)
	}
	return opps
}

// evaluateDirection prices buying YES via long and NO via short. Sizes are
// capped so neither leg moves its book past the configured price impact, and
// notional is capped per leg and by the budget.
func (d *Detector) evaluateDirection(eventKey string, long, short *domain.Quote) (domain.ArbOpportunity, bool) {
	if long == nil || short == nil {
		return domain.ArbOpportunity{}, false
	}

	capLong := MaxSizeForPriceImpact(long, d.cfg.MaxPriceImpact)
	capShort := MaxSizeForPriceImpact(short, d.cfg.MaxPriceImpact)
	if capLong <= 0 || capShort <= 0 {
		return domain.ArbOpportunity{}, false
	}
	avgLong, _ := EstimateFillPrice(long, capLong)
	avgShort, _ := EstimateFillPrice(short, capShort)

	cost := avgLong + avgShort
	if cost >= 1 {
		return domain.ArbOpportunity{}, false
	}
	edgeBps := int(math.Round((1 - cost) * 10000))

	maxNotional := math.Min(capLong*avgLong, capShort*avgShort)
	maxNotional = math.Min(maxNotional, d.cfg.MaxNotionalPerLeg)
	actual := math.Min(maxNotional, d.cfg.Budget)
	if actual <= 0 {
		return domain.ArbOpportunity{}, false
	}

	return domain.ArbOpportunity{
		ID:       uuid.NewString(),
		EventKey: eventKey,
		Long: domain.Leg{
			Venue:    long.Venue,
			MarketID: long.MarketID,
			Outcome:  long.Outcome,
			Price:    avgLong,
			Size:     capLong,
		},
		Short: domain.Leg{
			Venue:    short.Venue,
			MarketID: short.MarketID,
			Outcome:  short.Outcome,
			Price:    avgShort,
			Size:     capShort,
		},
		EdgeBps:        edgeBps,
		MaxNotional:    maxNotional,
		ActualNotional: actual,
		GrossProfitUSD: actual * float64(edgeBps) / 10000,
		StakePerLeg:    actual / 2,
		DepthAdjusted:  long.HasDepth() || short.HasDepth(),
		CreatedAt:      time.Now().UTC(),
	}, true
}
