// Package yahoo implements the default, key-less batch quote provider.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portfolio_backend/internal/feature/quotes/domain"
	"portfolio_backend/internal/feature/quotes/usecase"
	"portfolio_backend/internal/shared/symbols"
)

// DefaultBaseURL is the public quote endpoint host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Config holds configuration for the Yahoo Finance quote client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// quoteResponse mirrors the v7 quote payload.
type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string   `json:"symbol"`
			RegularMarketPrice *float64 `json:"regularMarketPrice"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// Client fetches batched quotes in a single request.
type Client struct {
	cfg    Config
	client *http.Client
}

var _ usecase.QuoteProvider = (*Client)(nil)

// NewClient creates a Client. An empty BaseURL selects DefaultBaseURL.
func NewClient(cfg Config, client *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{cfg: cfg, client: client}
}

// Name returns the provider key used for symbol mapping.
func (c *Client) Name() string { return symbols.ProviderYahoo }

// FetchQuotes returns the regular market price of each symbol the endpoint knows.
func (c *Client) FetchQuotes(ctx context.Context, syms []string) (map[string]float64, error) {
	if len(syms) == 0 {
		return map[string]float64{}, nil
	}

	q := url.Values{}
	q.Set("symbols", strings.Join(syms, ","))
	u := fmt.Sprintf("%s/v7/finance/quote?%s", strings.TrimRight(c.cfg.BaseURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: yahoo http %d", domain.ErrProviderFailure, res.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode yahoo response: %v", domain.ErrProviderFailure, err)
	}
	if e := body.QuoteResponse.Error; e != nil {
		return nil, fmt.Errorf("%w: yahoo: %s %s", domain.ErrProviderFailure, e.Code, e.Description)
	}

	out := make(map[string]float64, len(body.QuoteResponse.Result))
	for _, r := range body.QuoteResponse.Result {
		if r.RegularMarketPrice == nil {
			continue
		}
		out[r.Symbol] = *r.RegularMarketPrice
	}
	return out, nil
}
