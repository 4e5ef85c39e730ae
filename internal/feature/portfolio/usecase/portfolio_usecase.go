// Package usecase implements holdings ingestion, enrichment and the portfolio views.
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"portfolio_backend/internal/feature/portfolio/domain"
	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

const (
	// MaxImageSize is the largest accepted screenshot (10MB).
	MaxImageSize = 10 * 1024 * 1024

	chatPromptTemplate = "You are a helpful financial assistant. Use the provided portfolio data " +
		"(symbols, shares, tags, latest price) to answer the user's question with your knowledge of the stock market.\n\n" +
		"Here is the portfolio data:\n%s\n\nThe user's question is: %s"
)

// HoldingsLedger stores holdings partitioned by tag.
type HoldingsLedger interface {
	ReadAll(ctx context.Context) ([]entity.Holding, error)
	// ReplaceTag drops every row of tag and inserts positions stamped now.
	ReplaceTag(ctx context.Context, tag string, positions []entity.ExtractedPosition) error
	// Upsert updates the first (symbol, tag) row or appends a new one.
	Upsert(ctx context.Context, symbol, tag string, shares float64) error
}

// PositionExtractor reads {symbol, shares} pairs out of a screenshot.
type PositionExtractor interface {
	ExtractPositions(ctx context.Context, image []byte, mimeType string) ([]entity.ExtractedPosition, error)
}

// PortfolioAnalyst answers free-form questions.
type PortfolioAnalyst interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// ImageArchive keeps uploaded screenshots.
type ImageArchive interface {
	Save(ctx context.Context, tag, mimeType string, data []byte) (string, error)
	Remove(ctx context.Context, name string) error
}

// EventPublisher announces ledger and price changes.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.PortfolioEvent) error
}

// PositionEnricher values positions. Implemented by *Enricher.
type PositionEnricher interface {
	Enrich(ctx context.Context, positions []entity.Position, forceRefresh, skipOptions bool) ([]entity.Position, error)
}

type portfolioUsecase struct {
	ledger     HoldingsLedger
	prices     PriceStore
	enricher   PositionEnricher
	normalizer SymbolNormalizer
	extractor  PositionExtractor
	analyst    PortfolioAnalyst
	archive    ImageArchive
	events     EventPublisher
	now        func() time.Time
}

// Deps groups the collaborators of the portfolio usecase. Archive and Events are optional.
type Deps struct {
	Ledger     HoldingsLedger
	Prices     PriceStore
	Enricher   PositionEnricher
	Normalizer SymbolNormalizer
	Extractor  PositionExtractor
	Analyst    PortfolioAnalyst
	Archive    ImageArchive
	Events     EventPublisher
}

// NewPortfolioUsecase creates the portfolio usecase.
func NewPortfolioUsecase(d Deps) *portfolioUsecase {
	return &portfolioUsecase{
		ledger:     d.Ledger,
		prices:     d.Prices,
		enricher:   d.Enricher,
		normalizer: d.Normalizer,
		extractor:  d.Extractor,
		analyst:    d.Analyst,
		archive:    d.Archive,
		events:     d.Events,
		now:        time.Now,
	}
}

// ExtractAndStore extracts positions from image and replaces every holding of tag with them.
// Nothing is written to the ledger unless extraction produced at least one position.
func (u *portfolioUsecase) ExtractAndStore(ctx context.Context, image []byte, mimeType, tag string) (*entity.ExtractionResult, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, domain.ErrInvalidTag
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: image is empty", domain.ErrInvalidImage)
	}
	if len(image) > MaxImageSize {
		return nil, fmt.Errorf("%w: image size exceeds maximum of %d bytes", domain.ErrInvalidImage, MaxImageSize)
	}

	var imageName string
	if u.archive != nil {
		name, err := u.archive.Save(ctx, tag, mimeType, image)
		if err != nil {
			return nil, fmt.Errorf("archive image: %w", err)
		}
		imageName = name
	}

	positions, err := u.extract(ctx, image, mimeType)
	if err == nil {
		err = u.ledger.ReplaceTag(ctx, tag, positions)
		if err != nil {
			err = fmt.Errorf("replace holdings for tag %q: %w", tag, err)
		}
	}
	if err != nil {
		u.discard(ctx, imageName)
		return nil, err
	}

	slog.Info("holdings replaced from image", "tag", tag, "positions", len(positions), "image", imageName)
	u.publish(ctx, entity.PortfolioEvent{Type: entity.EventTagReplaced, Tag: tag, Count: len(positions)})

	return &entity.ExtractionResult{Tag: tag, Positions: positions, ImageName: imageName}, nil
}

func (u *portfolioUsecase) extract(ctx context.Context, image []byte, mimeType string) ([]entity.ExtractedPosition, error) {
	raw, err := u.extractor.ExtractPositions(ctx, image, mimeType)
	if err != nil {
		if errors.Is(err, domain.ErrNoPositionsExtracted) || errors.Is(err, domain.ErrExtractionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	positions := make([]entity.ExtractedPosition, 0, len(raw))
	for _, p := range raw {
		p.Symbol = strings.TrimSpace(p.Symbol)
		if p.Symbol == "" || math.IsNaN(p.Shares) || math.IsInf(p.Shares, 0) {
			slog.Warn("dropping unusable extracted position", "symbol", p.Symbol, "shares", p.Shares)
			continue
		}
		positions = append(positions, p)
	}
	if len(positions) == 0 {
		return nil, domain.ErrNoPositionsExtracted
	}
	return positions, nil
}

func (u *portfolioUsecase) discard(ctx context.Context, name string) {
	if u.archive == nil || name == "" {
		return
	}
	if err := u.archive.Remove(ctx, name); err != nil {
		slog.Warn("failed to remove archived image", "image", name, "error", err)
	}
}

// GetPositions returns the filtered, optionally grouped and valued holdings.
func (u *portfolioUsecase) GetPositions(ctx context.Context, q entity.PositionQuery) (*entity.PortfolioView, error) {
	rows, err := u.loadPositions(ctx)
	if err != nil {
		return nil, err
	}

	rows = FilterHoldings(rows, q.Include, q.Exclude, q.HideOptions)
	if q.GroupBy {
		rows = GroupBySymbol(rows)
	}

	enriched, err := u.enricher.Enrich(ctx, rows, q.Refresh, true)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, p := range enriched {
		total = total.Add(decimal.NewFromFloat(p.Value))
	}

	return &entity.PortfolioView{
		Positions:     enriched,
		TotalValue:    total.Round(2).InexactFloat64(),
		PositionCount: len(enriched),
	}, nil
}

// EditPosition sets the share count of one (symbol, tag) holding, creating it if absent.
func (u *portfolioUsecase) EditPosition(ctx context.Context, symbol, tag string, shares float64) error {
	symbol = strings.TrimSpace(symbol)
	tag = strings.TrimSpace(tag)
	if symbol == "" {
		return domain.ErrInvalidSymbol
	}
	if tag == "" {
		return domain.ErrInvalidTag
	}
	if math.IsNaN(shares) || math.IsInf(shares, 0) {
		return domain.ErrInvalidShares
	}

	if err := u.ledger.Upsert(ctx, symbol, tag, shares); err != nil {
		return fmt.Errorf("edit holding %s (%s): %w", symbol, tag, err)
	}
	u.publish(ctx, entity.PortfolioEvent{Type: entity.EventPositionEdited, Tag: tag, Symbol: symbol, Shares: shares})
	return nil
}

// chatPosition is the shape of a holding embedded in the chat prompt.
type chatPosition struct {
	Symbol        string   `json:"symbol"`
	Tag           string   `json:"tag"`
	Tags          []string `json:"tags,omitempty"`
	Shares        float64  `json:"shares"`
	Price         float64  `json:"price"`
	Value         float64  `json:"value"`
	LastPriceTime string   `json:"last_price_time,omitempty"`
}

// Chat answers query with the valued portfolio embedded in the prompt.
func (u *portfolioUsecase) Chat(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", domain.ErrEmptyQuery
	}

	rows, err := u.loadPositions(ctx)
	if err != nil {
		return "", err
	}
	enriched, err := u.enricher.Enrich(ctx, rows, false, true)
	if err != nil {
		return "", err
	}

	payload := make([]chatPosition, 0, len(enriched))
	for _, p := range enriched {
		cp := chatPosition{Symbol: p.Symbol, Tag: p.Tag, Tags: p.Tags, Shares: p.Shares, Price: p.Price, Value: p.Value}
		if p.LastPriceTime != nil {
			cp.LastPriceTime = p.LastPriceTime.Format(time.RFC3339)
		}
		payload = append(payload, cp)
	}
	portfolioJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode portfolio: %w", err)
	}

	answer, err := u.analyst.Analyze(ctx, fmt.Sprintf(chatPromptTemplate, portfolioJSON, query))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}
	return answer, nil
}

// RefreshPrices force-refreshes the price of every held symbol and returns how many
// distinct symbols were priced.
func (u *portfolioUsecase) RefreshPrices(ctx context.Context) (int, error) {
	rows, err := u.loadPositions(ctx)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	enriched, err := u.enricher.Enrich(ctx, rows, true, true)
	if err != nil {
		return 0, err
	}

	priced := 0
	for _, p := range enriched {
		if p.Price > 0 {
			priced++
		}
	}
	slog.Info("prices refreshed", "symbols", len(enriched), "priced", priced)
	u.publish(ctx, entity.PortfolioEvent{Type: entity.EventPricesRefreshed, Count: priced})
	return priced, nil
}

// loadPositions reads the ledger and joins each holding with the stored price of its
// canonical symbol.
func (u *portfolioUsecase) loadPositions(ctx context.Context) ([]entity.Position, error) {
	holdings, err := u.ledger.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read holdings: %w", err)
	}
	records, err := u.prices.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read prices: %w", err)
	}

	bySymbol := make(map[string]entity.PriceRecord, len(records))
	for _, r := range records {
		bySymbol[r.Symbol] = r
	}

	out := make([]entity.Position, 0, len(holdings))
	for _, h := range holdings {
		p := entity.FromHolding(h)
		if r, ok := bySymbol[u.normalizer.Normalize(h.Symbol)]; ok {
			p.LastPrice = r.LastPrice
			p.LastPriceTime = r.LastPriceTime
		}
		out = append(out, p)
	}
	return out, nil
}

func (u *portfolioUsecase) publish(ctx context.Context, ev entity.PortfolioEvent) {
	if u.events == nil {
		return
	}
	ev.OccurredAt = u.now()
	if err := u.events.Publish(ctx, ev); err != nil {
		slog.Warn("failed to publish portfolio event", "type", ev.Type, "error", err)
	}
}
