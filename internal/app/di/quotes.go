// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"
	"time"

	"portfolio_backend/internal/feature/quotes/adapters/alphavantage"
	"portfolio_backend/internal/feature/quotes/adapters/twelvedata"
	"portfolio_backend/internal/feature/quotes/adapters/yahoo"
	quotesdomain "portfolio_backend/internal/feature/quotes/domain"
	quotesusecase "portfolio_backend/internal/feature/quotes/usecase"
	"portfolio_backend/internal/platform/config"
	infrahttp "portfolio_backend/internal/platform/http"
	"portfolio_backend/internal/shared/ratelimiter"
	"portfolio_backend/internal/shared/symbols"
)

// NewQuoteProvider creates the quote provider named by PRICE_PROVIDER with its HTTP client.
func NewQuoteProvider(cfg *config.Config) (quotesusecase.QuoteProvider, error) {
	httpClient := infrahttp.NewHTTPClient(cfg.HTTPTimeout())

	switch cfg.PriceProvider {
	case symbols.ProviderYahoo:
		return yahoo.NewClient(yahoo.Config{Timeout: cfg.HTTPTimeout()}, httpClient), nil
	case symbols.ProviderAlphaVantage:
		limiter := ratelimiter.NewWindowLimiter(alphavantage.FreeTierCallsPerMinute, time.Minute)
		return alphavantage.NewClient(alphavantage.Config{
			APIKey:  cfg.AlphaVantageAPIKey,
			Timeout: cfg.HTTPTimeout(),
		}, httpClient, limiter), nil
	case symbols.ProviderTwelveData:
		tdCfg := twelvedata.LoadConfig()
		if cfg.TwelveDataAPIKey != "" {
			tdCfg.TwelveDataAPIKey = cfg.TwelveDataAPIKey
		}
		tdCfg.Timeout = cfg.HTTPTimeout()
		return twelvedata.NewTwelveDataQuotes(tdCfg, httpClient), nil
	default:
		return nil, fmt.Errorf("%w: %q", quotesdomain.ErrUnknownProvider, cfg.PriceProvider)
	}
}

// NewPriceCache creates the shared price cache in front of the configured provider.
func NewPriceCache(cfg *config.Config, normalizer *symbols.Normalizer) (*quotesusecase.PriceCache, error) {
	provider, err := NewQuoteProvider(cfg)
	if err != nil {
		return nil, err
	}
	return quotesusecase.NewPriceCache(provider, normalizer,
		quotesusecase.WithTTL(cfg.CacheExpiry()),
		quotesusecase.WithRetry(cfg.RetryAttempts, cfg.RetryDelay()),
	), nil
}
