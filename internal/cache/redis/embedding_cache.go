package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arblab/polykalshi/internal/domain"
)

// DefaultEmbeddingTTL keeps cached vectors for a month. Titles are immutable,
// but models get retired and stale entries should eventually fall out.
const DefaultEmbeddingTTL = 30 * 24 * time.Hour

// EmbeddingCache implements domain.EmbeddingCache on Redis strings. Vectors
// are stored JSON-encoded at "emb:{model}:{sha256(title)}"; hashing the title
// keeps keys bounded and safe for arbitrary market text.
type EmbeddingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ domain.EmbeddingCache = (*EmbeddingCache)(nil)

// NewEmbeddingCache creates an EmbeddingCache backed by the given Client.
// A non-positive ttl uses DefaultEmbeddingTTL.
func NewEmbeddingCache(c *Client, ttl time.Duration) *EmbeddingCache {
	if ttl <= 0 {
		ttl = DefaultEmbeddingTTL
	}
	return &EmbeddingCache{rdb: c.rdb, ttl: ttl}
}

func embeddingKey(model, title string) string {
	sum := sha256.Sum256([]byte(title))
	return "emb:" + model + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached vector for the title under the given model, or
// (nil, nil) on a miss.
func (ec *EmbeddingCache) Get(ctx context.Context, model, title string) ([]float64, error) {
	data, err := ec.rdb.Get(ctx, embeddingKey(model, title)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis: get embedding: %w", err)
	}

	var vec []float64
	if err := json.Unmarshal(data, &vec); err != nil {
		return nil, fmt.Errorf("redis: decode embedding: %w", err)
	}
	return vec, nil
}

// Put stores the vector for the title under the given model with the cache TTL.
func (ec *EmbeddingCache) Put(ctx context.Context, model, title string, vec []float64) error {
	data, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("redis: encode embedding: %w", err)
	}
	if err := ec.rdb.Set(ctx, embeddingKey(model, title), data, ec.ttl).Err(); err != nil {
		return fmt.Errorf("redis: put embedding: %w", err)
	}
	return nil
}
