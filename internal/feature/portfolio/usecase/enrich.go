package usecase

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

// PriceFetcher returns live prices keyed by the requested canonical symbols.
// Symbols it could not price come back as 0.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type PriceFetcher interface {
	Fetch(ctx context.Context, symbols []string, skipOptions bool) (map[string]float64, error)
}

// PriceStore persists the last known good price per canonical symbol.
type PriceStore interface {
	ReadAll(ctx context.Context) ([]entity.PriceRecord, error)
	// Upsert stores price for symbol. A nil at means now.
	Upsert(ctx context.Context, symbol string, price float64, at *time.Time) error
}

// SymbolNormalizer maps raw symbols to canonical and display spellings.
type SymbolNormalizer interface {
	Normalize(symbol string) string
	Display(symbol string) string
	FullName(symbol string) string
}

// Enricher joins positions with prices, refreshing only what it has to.
type Enricher struct {
	fetcher    PriceFetcher
	store      PriceStore
	normalizer SymbolNormalizer
	now        func() time.Time
}

// NewEnricher creates an Enricher.
func NewEnricher(fetcher PriceFetcher, store PriceStore, normalizer SymbolNormalizer) *Enricher {
	return &Enricher{fetcher: fetcher, store: store, normalizer: normalizer, now: time.Now}
}

// Enrich groups positions by canonical symbol, fills in Price and Value, and returns the rows
// in order of first appearance with display symbols. With forceRefresh every symbol is fetched;
// otherwise a non-zero LastPrice is reused and only the rest are fetched, in one batch.
// Positive fetched prices are written back to the price store.
func (e *Enricher) Enrich(ctx context.Context, positions []entity.Position, forceRefresh, skipOptions bool) ([]entity.Position, error) {
	grouped := e.groupByCanonical(positions)

	var stale []string
	for _, g := range grouped {
		if forceRefresh || !hasUsablePrice(g) {
			stale = append(stale, g.Symbol)
		}
	}

	var fetched map[string]float64
	if len(stale) > 0 {
		var err error
		fetched, err = e.fetcher.Fetch(ctx, stale, skipOptions)
		if err != nil {
			return nil, err
		}
		e.persist(ctx, stale, fetched)
	}

	now := e.now()
	out := make([]entity.Position, 0, len(grouped))
	for _, g := range grouped {
		price := 0.0
		if p, ok := fetched[g.Symbol]; ok {
			price = p
			if p > 0 {
				lp, at := p, now
				g.LastPrice, g.LastPriceTime = &lp, &at
			}
		} else if hasUsablePrice(g) {
			// skipped option symbols keep whatever was stored
			price = *g.LastPrice
		}
		g.Price = price
		g.Value = valueOf(g.Shares, price)
		if name := e.normalizer.FullName(g.Symbol); name != g.Symbol {
			g.FullName = name
		}
		g.Symbol = e.normalizer.Display(g.Symbol)
		out = append(out, g)
	}
	return out, nil
}

// groupByCanonical sums shares per canonical symbol. The first member seen keeps its tag,
// timestamps and price fields; tags of later members are appended when new.
func (e *Enricher) groupByCanonical(positions []entity.Position) []entity.Position {
	index := make(map[string]int, len(positions))
	out := make([]entity.Position, 0, len(positions))
	for _, p := range positions {
		canonical := e.normalizer.Normalize(p.Symbol)
		tags := p.Tags
		if len(tags) == 0 {
			tags = []string{p.Tag}
		}

		i, ok := index[canonical]
		if !ok {
			g := p
			g.Symbol = canonical
			g.Tags = append([]string(nil), tags...)
			index[canonical] = len(out)
			out = append(out, g)
			continue
		}

		g := &out[i]
		g.Shares += p.Shares
		for _, t := range tags {
			if !slices.Contains(g.Tags, t) {
				g.Tags = append(g.Tags, t)
			}
		}
	}
	return out
}

// persist writes strictly positive prices; the sentinel never replaces a good price.
func (e *Enricher) persist(ctx context.Context, requested []string, fetched map[string]float64) {
	now := e.now()
	for _, s := range requested {
		p, ok := fetched[s]
		if !ok || p <= 0 {
			continue
		}
		if err := e.store.Upsert(ctx, s, p, &now); err != nil {
			slog.Warn("failed to persist price", "symbol", s, "price", p, "error", err)
		}
	}
}

func hasUsablePrice(p entity.Position) bool {
	return p.LastPrice != nil && *p.LastPrice != 0
}

func valueOf(shares, price float64) float64 {
	return decimal.NewFromFloat(shares).Mul(decimal.NewFromFloat(price)).InexactFloat64()
}
