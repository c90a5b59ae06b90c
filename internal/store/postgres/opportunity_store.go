package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arblab/polykalshi/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// Compile-time interface check.
var _ domain.OpportunityStore = (*OpportunityStore)(nil)

// NewOpportunityStore creates an OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const opportunityCols = `id, event_key,
	long_venue, long_market_id, long_outcome, long_price, long_size,
	short_venue, short_market_id, short_outcome, short_price, short_size,
	edge_bps, max_notional, actual_notional, gross_profit_usd, stake_per_leg,
	depth_adjusted, created_at`

// Insert stores a detected opportunity.
func (s *OpportunityStore) Insert(ctx context.Context, opp domain.ArbOpportunity) error {
	const query = `
		INSERT INTO opportunities (
			id, event_key,
			long_venue, long_market_id, long_outcome, long_price, long_size,
			short_venue, short_market_id, short_outcome, short_price, short_size,
			edge_bps, max_notional, actual_notional, gross_profit_usd, stake_per_leg,
			depth_adjusted, created_at
		) VALUES (
			$1, $2,
			$3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17,
			$18, $19
		)`

	_, err := s.pool.Exec(ctx, query,
		opp.ID, opp.EventKey,
		string(opp.Long.Venue), opp.Long.MarketID, string(opp.Long.Outcome), opp.Long.Price, opp.Long.Size,
		string(opp.Short.Venue), opp.Short.MarketID, string(opp.Short.Outcome), opp.Short.Price, opp.Short.Size,
		opp.EdgeBps, opp.MaxNotional, opp.ActualNotional, opp.GrossProfitUSD, opp.StakePerLeg,
		opp.DepthAdjusted, opp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// ListRecent returns the most recently detected opportunities, newest first.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.ArbOpportunity, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		`SELECT %s FROM opportunities ORDER BY created_at DESC LIMIT $1`,
		opportunityCols,
	)

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.ArbOpportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate opportunities: %w", err)
	}
	return opps, nil
}

func scanOpportunity(row pgx.Row) (domain.ArbOpportunity, error) {
	var (
		opp                       domain.ArbOpportunity
		longVenue, shortVenue     string
		longOutcome, shortOutcome string
	)
	err := row.Scan(
		&opp.ID, &opp.EventKey,
		&longVenue, &opp.Long.MarketID, &longOutcome, &opp.Long.Price, &opp.Long.Size,
		&shortVenue, &opp.Short.MarketID, &shortOutcome, &opp.Short.Price, &opp.Short.Size,
		&opp.EdgeBps, &opp.MaxNotional, &opp.ActualNotional, &opp.GrossProfitUSD, &opp.StakePerLeg,
		&opp.DepthAdjusted, &opp.CreatedAt,
	)
	if err != nil {
		return domain.ArbOpportunity{}, fmt.Errorf("postgres: scan opportunity: %w", err)
	}
	opp.Long.Venue = domain.Venue(longVenue)
	opp.Long.Outcome = domain.Outcome(longOutcome)
	opp.Short.Venue = domain.Venue(shortVenue)
	opp.Short.Outcome = domain.Outcome(shortOutcome)
	return opp, nil
}
