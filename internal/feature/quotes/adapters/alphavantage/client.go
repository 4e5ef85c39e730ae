// Package alphavantage implements the metered Alpha Vantage GLOBAL_QUOTE provider.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"portfolio_backend/internal/feature/quotes/domain"
	"portfolio_backend/internal/feature/quotes/usecase"
	"portfolio_backend/internal/shared/ratelimiter"
	"portfolio_backend/internal/shared/symbols"
)

const (
	// DefaultBaseURL is the Alpha Vantage API host.
	DefaultBaseURL = "https://www.alphavantage.co"
	// FreeTierCallsPerMinute is the free plan quota.
	FreeTierCallsPerMinute = 5
)

// Config holds configuration for the Alpha Vantage client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type globalQuoteResponse struct {
	GlobalQuote map[string]string `json:"Global Quote"`
	Note        string            `json:"Note"`
	Information string            `json:"Information"`
	Error       string            `json:"Error Message"`
}

// Client queries one symbol per request; the limiter keeps it within the plan quota.
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.Limiter
}

var _ usecase.QuoteProvider = (*Client)(nil)

// NewClient creates a Client. A nil limiter disables throttling.
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.Limiter) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{cfg: cfg, client: client, limiter: limiter}
}

// Name returns the provider key used for symbol mapping.
func (c *Client) Name() string { return symbols.ProviderAlphaVantage }

// FetchQuotes fetches each symbol in turn. A transport failure aborts the batch so the
// caller can retry it; a symbol the API cannot price is left out.
func (c *Client) FetchQuotes(ctx context.Context, syms []string) (map[string]float64, error) {
	if c.cfg.APIKey == "" {
		return nil, domain.ErrMissingCredential
	}

	out := make(map[string]float64, len(syms))
	for _, s := range syms {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		p, ok, err := c.fetchOne(ctx, s)
		if err != nil {
			return nil, err
		}
		if ok {
			out[s] = p
		}
	}
	return out, nil
}

func (c *Client) fetchOne(ctx context.Context, symbol string) (float64, bool, error) {
	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", c.cfg.APIKey)
	u := fmt.Sprintf("%s/query?%s", strings.TrimRight(c.cfg.BaseURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, false, err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return 0, false, fmt.Errorf("%w: alphavantage http %d", domain.ErrProviderFailure, res.StatusCode)
	}

	var body globalQuoteResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, false, fmt.Errorf("%w: decode alphavantage response: %v", domain.ErrProviderFailure, err)
	}

	switch {
	case body.Note != "", body.Information != "":
		slog.Warn("alphavantage throttled request", "symbol", symbol, "note", body.Note+body.Information)
		return 0, false, nil
	case body.Error != "":
		slog.Warn("alphavantage rejected symbol", "symbol", symbol, "error", body.Error)
		return 0, false, nil
	}

	raw, ok := body.GlobalQuote["05. price"]
	if !ok {
		return 0, false, nil
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("alphavantage returned non-numeric price", "symbol", symbol, "price", raw)
		return 0, false, nil
	}
	return p, true, nil
}
