// Package usecase implements the in-memory price cache in front of a quote provider.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"portfolio_backend/internal/feature/quotes/domain"
	"portfolio_backend/internal/shared/symbols"
)

const (
	// DefaultCacheExpiry is how long a fetched price is reused.
	DefaultCacheExpiry = 600 * time.Second
	// DefaultRetryAttempts is the number of provider calls per batch before degrading.
	DefaultRetryAttempts = 3
	// DefaultRetryDelay is the fixed wait between provider attempts.
	DefaultRetryDelay = time.Second

	// SentinelPrice stands for "price unknown or fetch failed".
	SentinelPrice = 0.0
)

// QuoteProvider fetches latest prices for a batch of provider-specific symbols.
// Symbols the provider cannot price may be omitted from the result.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type QuoteProvider interface {
	Name() string
	FetchQuotes(ctx context.Context, symbols []string) (map[string]float64, error)
}

// SymbolMapper translates a symbol into the spelling a provider expects.
type SymbolMapper interface {
	ProviderSymbol(symbol, provider string) string
}

// Clock supplies the current time. Tests inject a fake.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type cachedPrice struct {
	price float64
	at    time.Time
}

// PriceCache is a time-boxed cache in front of a QuoteProvider. The mutex guards the map
// only; provider I/O always happens outside it, so two callers missing the same symbol
// concurrently may both fetch it.
type PriceCache struct {
	provider QuoteProvider
	mapper   SymbolMapper
	clock    Clock
	ttl      time.Duration
	attempts int
	delay    time.Duration

	mu    sync.Mutex
	cache map[string]cachedPrice
}

// Option customises a PriceCache.
type Option func(*PriceCache)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(pc *PriceCache) { pc.clock = c }
}

// WithTTL sets the cache expiry. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(pc *PriceCache) {
		if ttl > 0 {
			pc.ttl = ttl
		}
	}
}

// WithRetry sets the attempt count and the fixed delay between attempts.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(pc *PriceCache) {
		if attempts > 0 {
			pc.attempts = attempts
		}
		if delay > 0 {
			pc.delay = delay
		}
	}
}

// NewPriceCache creates an empty cache in front of provider.
func NewPriceCache(provider QuoteProvider, mapper SymbolMapper, opts ...Option) *PriceCache {
	pc := &PriceCache{
		provider: provider,
		mapper:   mapper,
		clock:    systemClock{},
		ttl:      DefaultCacheExpiry,
		attempts: DefaultRetryAttempts,
		delay:    DefaultRetryDelay,
		cache:    make(map[string]cachedPrice),
	}
	for _, opt := range opts {
		opt(pc)
	}
	return pc
}

// Fetch returns a price for every requested symbol that is not skipped as an option.
// Failed lookups resolve to SentinelPrice and are cached like real prices. The only error
// returned is a configuration error such as domain.ErrMissingCredential.
func (pc *PriceCache) Fetch(ctx context.Context, syms []string, skipOptions bool) (map[string]float64, error) {
	wanted := make([]string, 0, len(syms))
	for _, s := range syms {
		if skipOptions && symbols.IsOption(s) {
			continue
		}
		wanted = append(wanted, s)
	}

	out := make(map[string]float64, len(wanted))
	misses := pc.partition(wanted, out)
	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := pc.fetchMisses(ctx, misses)
	if err != nil {
		return nil, err
	}

	now := pc.clock.Now()
	pc.mu.Lock()
	for s, p := range fetched {
		pc.cache[s] = cachedPrice{price: p, at: now}
	}
	pc.mu.Unlock()

	for s, p := range fetched {
		out[s] = p
	}
	return out, nil
}

// Clear drops every cached price.
func (pc *PriceCache) Clear() {
	pc.mu.Lock()
	pc.cache = make(map[string]cachedPrice)
	pc.mu.Unlock()
}

// partition copies fresh entries into out and returns the distinct symbols that need a fetch.
func (pc *PriceCache) partition(syms []string, out map[string]float64) []string {
	now := pc.clock.Now()
	pc.mu.Lock()
	defer pc.mu.Unlock()

	var misses []string
	seen := make(map[string]struct{}, len(syms))
	for _, s := range syms {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if e, ok := pc.cache[s]; ok && now.Sub(e.at) < pc.ttl {
			out[s] = e.price
			continue
		}
		misses = append(misses, s)
	}
	return misses
}

// fetchMisses calls the provider once per attempt for the whole batch. Symbols missing
// from the final answer, or answered with an unusable price, resolve to SentinelPrice.
func (pc *PriceCache) fetchMisses(ctx context.Context, misses []string) (map[string]float64, error) {
	name := pc.provider.Name()

	bySpelling := make(map[string][]string, len(misses))
	request := make([]string, 0, len(misses))
	for _, s := range misses {
		ps := pc.mapper.ProviderSymbol(s, name)
		if _, ok := bySpelling[ps]; !ok {
			request = append(request, ps)
		}
		bySpelling[ps] = append(bySpelling[ps], s)
	}

	var quotes map[string]float64
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(pc.attempts-1), retry.NewConstant(pc.delay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		q, err := pc.provider.FetchQuotes(ctx, request)
		if err != nil {
			if errors.Is(err, domain.ErrMissingCredential) {
				return err
			}
			slog.Warn("quote provider attempt failed", "provider", name, "attempt", attempt, "symbols", len(request), "error", err)
			return retry.RetryableError(err)
		}
		quotes = q
		return nil
	})
	if errors.Is(err, domain.ErrMissingCredential) {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		slog.Error("quote provider exhausted retries, using sentinel price", "provider", name, "attempts", attempt, "error", err)
	}

	out := make(map[string]float64, len(misses))
	for ps, originals := range bySpelling {
		p := sanitize(quotes[ps])
		for _, s := range originals {
			out[s] = p
		}
	}
	return out, nil
}

// sanitize maps non-finite, zero and negative prices to SentinelPrice.
func sanitize(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
		return SentinelPrice
	}
	return p
}
