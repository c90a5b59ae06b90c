// Package embed fetches title embeddings from an OpenAI-compatible API, with
// a write-through cache in front of the network.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arblab/polykalshi/internal/domain"
)

const (
	// DefaultModel is the embedding model used when none is configured.
	DefaultModel = "text-embedding-3-small"

	// batchSize is the number of titles sent per embeddings request.
	batchSize = 96

	// maxConcurrentBatches bounds parallel embeddings requests.
	maxConcurrentBatches = 4
)

// Client calls the embeddings endpoint of an OpenAI-compatible API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	cache      domain.EmbeddingCache // nil disables caching
	logger     *slog.Logger
}

var _ domain.EmbeddingProvider = (*Client)(nil)

// NewClient creates an embeddings client.
//
// baseURL is the API root, e.g. "https://api.openai.com/v1". cache may be nil.
func NewClient(baseURL, apiKey, model string, cache domain.EmbeddingCache, logger *slog.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		cache:  cache,
		logger: logger.With(slog.String("component", "embed_client")),
	}
}

// Model returns the configured embedding model name.
func (c *Client) Model() string { return c.model }

// Embed returns a vector per title. Cached vectors are served without a
// network call; misses are fetched in batches and written back to the cache.
// Titles the API fails to embed are absent from the result rather than
// failing the whole call, unless every batch fails.
func (c *Client) Embed(ctx context.Context, titles []string) (map[string][]float64, error) {
	result := make(map[string][]float64, len(titles))
	misses := titles

	if c.cache != nil {
		misses = misses[:0:0]
		for _, title := range titles {
			vec, err := c.cache.Get(ctx, c.model, title)
			if err != nil || vec == nil {
				misses = append(misses, title)
				continue
			}
			result[title] = vec
		}
	}
	if len(misses) == 0 {
		return result, nil
	}

	batches := chunk(misses, batchSize)
	vectors := make([]map[string][]float64, len(batches))

	// Batches are independent, so the group carries no cancellation: one
	// rate-limited batch must not wipe out the others' results.
	var g errgroup.Group
	g.SetLimit(maxConcurrentBatches)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			vecs, err := c.embedBatch(ctx, batch)
			if err != nil {
				return err
			}
			vectors[i] = vecs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Partial results still serve the pass; only a total miss is an error.
		if len(result) == 0 && allEmpty(vectors) {
			return nil, fmt.Errorf("embed: %w: %w", domain.ErrNoEmbedding, err)
		}
		c.logger.Warn("some embedding batches failed", slog.String("error", err.Error()))
	}

	for _, vecs := range vectors {
		for title, vec := range vecs {
			result[title] = vec
			if c.cache != nil {
				if err := c.cache.Put(ctx, c.model, title, vec); err != nil {
					c.logger.Debug("embedding cache write failed", slog.String("error", err.Error()))
				}
			}
		}
	}
	return result, nil
}

// embedBatch sends one embeddings request. The response carries one vector
// per input, index-aligned.
func (c *Client) embedBatch(ctx context.Context, batch []string) (map[string][]float64, error) {
	payload := struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}{Model: c.model, Input: batch}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: %s", domain.ErrRateLimited, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var decoded struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	vecs := make(map[string][]float64, len(decoded.Data))
	for _, item := range decoded.Data {
		if item.Index < 0 || item.Index >= len(batch) || len(item.Embedding) == 0 {
			continue
		}
		vecs[batch[item.Index]] = item.Embedding
	}
	return vecs, nil
}

func chunk(items []string, n int) [][]string {
	var out [][]string
	for len(items) > n {
		out = append(out, items[:n])
		items = items[n:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}

func allEmpty(vectors []map[string][]float64) bool {
	for _, v := range vectors {
		if len(v) > 0 {
			return false
		}
	}
	return true
}
