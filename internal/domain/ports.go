package domain

import (
	"context"
	"io"
)

// QuoteSource yields the current snapshot of quotes for one venue. A source
// may return an empty slice on transient failure but must never return
// partially-constructed quotes; the boundary validator rejects any that slip
// through.
type QuoteSource interface {
	Venue() Venue
	Snapshot(ctx context.Context) ([]Quote, error)
}

// EmbeddingProvider returns one fixed-length vector per title. The core only
// computes cosine similarity over the vectors; their dimensionality is
// opaque. Titles the provider could not embed are simply absent from the
// returned map.
type EmbeddingProvider interface {
	Embed(ctx context.Context, titles []string) (map[string][]float64, error)
}

// EmbeddingCache persists computed title vectors across passes, keyed by
// model and title. Get returns (nil, nil) on a miss.
type EmbeddingCache interface {
	Get(ctx context.Context, model, title string) ([]float64, error)
	Put(ctx context.Context, model, title string, vec []float64) error
}

// OpportunityStore persists detected opportunities.
type OpportunityStore interface {
	Insert(ctx context.Context, opp ArbOpportunity) error
	ListRecent(ctx context.Context, limit int) ([]ArbOpportunity, error)
}

// SignalBus publishes detection events to downstream consumers.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// BlobWriter archives pass snapshots to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
