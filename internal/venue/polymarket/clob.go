package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/arblab/polykalshi/internal/domain"
)

// ClobClient is the REST client for the Polymarket CLOB API. Only the public
// market-data endpoints are used; order placement is out of scope.
type ClobClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClobClient creates a CLOB REST client.
//
// baseURL is the CLOB API root, e.g. "https://clob.polymarket.com".
func NewClobClient(baseURL string) *ClobClient {
	return &ClobClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetBook returns the order book for the given outcome token.
func (c *ClobClient) GetBook(ctx context.Context, tokenID string) (APIBook, error) {
	params := url.Values{}
	params.Set("token_id", tokenID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/book?"+params.Encode(), nil)
	if err != nil {
		return APIBook{}, fmt.Errorf("polymarket/clob: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return APIBook{}, fmt.Errorf("polymarket/clob: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return APIBook{}, fmt.Errorf("polymarket/clob: read response: %w", err)
	}
	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return APIBook{}, fmt.Errorf("polymarket/clob: get book %s: %w", tokenID, err)
	}

	var book APIBook
	if err := json.Unmarshal(body, &book); err != nil {
		return APIBook{}, fmt.Errorf("polymarket/clob: decode book: %w", err)
	}
	return book, nil
}

// AskLadder converts the book's ask side into price-ascending levels in
// domain form, dropping unparseable or empty entries.
func AskLadder(book *APIBook) []domain.PriceLevel {
	ladder := make([]domain.PriceLevel, 0, len(book.Asks))
	for _, lvl := range book.Asks {
		p, errP := strconv.ParseFloat(lvl.Price, 64)
		s, errS := strconv.ParseFloat(lvl.Size, 64)
		if errP != nil || errS != nil || s <= 0 || p <= 0 || p >= 1 {
			continue
		}
		ladder = append(ladder, domain.PriceLevel{Price: p, Size: s})
	}
	sort.Slice(ladder, func(i, j int) bool { return ladder[i].Price < ladder[j].Price })
	return ladder
}
