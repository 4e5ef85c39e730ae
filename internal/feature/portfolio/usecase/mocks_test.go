package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

// memoryLedger はHoldingsLedgerのインメモリ実装です。
type memoryLedger struct {
	mu       sync.Mutex
	rows     []entity.Holding
	ReadErr  error
	WriteErr error

	ReplaceTagCalls int
	UpsertCalls     int
}

func (m *memoryLedger) ReadAll(ctx context.Context) ([]entity.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]entity.Holding(nil), m.rows...), nil
}

func (m *memoryLedger) ReplaceTag(ctx context.Context, tag string, positions []entity.ExtractedPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceTagCalls++
	if m.WriteErr != nil {
		return m.WriteErr
	}
	kept := m.rows[:0:0]
	for _, h := range m.rows {
		if h.Tag != tag {
			kept = append(kept, h)
		}
	}
	now := time.Now()
	for _, p := range positions {
		kept = append(kept, entity.Holding{Symbol: p.Symbol, Tag: tag, Shares: p.Shares, LastUpdated: now})
	}
	m.rows = kept
	return nil
}

func (m *memoryLedger) Upsert(ctx context.Context, symbol, tag string, shares float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++
	if m.WriteErr != nil {
		return m.WriteErr
	}
	for i := range m.rows {
		if m.rows[i].Symbol == symbol && m.rows[i].Tag == tag {
			m.rows[i].Shares = shares
			m.rows[i].LastUpdated = time.Now()
			return nil
		}
	}
	m.rows = append(m.rows, entity.Holding{Symbol: symbol, Tag: tag, Shares: shares, LastUpdated: time.Now()})
	return nil
}

// memoryPriceStore はPriceStoreのインメモリ実装です。
type memoryPriceStore struct {
	mu          sync.Mutex
	records     map[string]entity.PriceRecord
	UpsertErr   error
	ReadErr     error
	UpsertCalls int
}

func newMemoryPriceStore() *memoryPriceStore {
	return &memoryPriceStore{records: map[string]entity.PriceRecord{}}
}

func (m *memoryPriceStore) put(symbol string, price float64) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.records[symbol] = entity.PriceRecord{Symbol: symbol, LastPrice: &price, LastPriceTime: &at}
}

func (m *memoryPriceStore) ReadAll(ctx context.Context) ([]entity.PriceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	out := make([]entity.PriceRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryPriceStore) Upsert(ctx context.Context, symbol string, price float64, at *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	t := time.Now()
	if at != nil {
		t = *at
	}
	m.records[symbol] = entity.PriceRecord{Symbol: symbol, LastPrice: &price, LastPriceTime: &t}
	return nil
}

func (m *memoryPriceStore) price(symbol string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[symbol]
	if !ok || r.LastPrice == nil {
		return 0, false
	}
	return *r.LastPrice, true
}

// mockPriceFetcher はPriceFetcherインターフェースのモック実装です。
type mockPriceFetcher struct {
	FetchFunc  func(ctx context.Context, symbols []string, skipOptions bool) (map[string]float64, error)
	FetchCalls int
	Requested  [][]string
}

func (m *mockPriceFetcher) Fetch(ctx context.Context, symbols []string, skipOptions bool) (map[string]float64, error) {
	m.FetchCalls++
	req := append([]string(nil), symbols...)
	sort.Strings(req)
	m.Requested = append(m.Requested, req)
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, symbols, skipOptions)
	}
	return nil, errors.New("FetchFunc is not implemented")
}

// fixedPrices はテーブルにない銘柄を0として返すFetchFuncを生成します。
func fixedPrices(table map[string]float64) func(context.Context, []string, bool) (map[string]float64, error) {
	return func(_ context.Context, symbols []string, _ bool) (map[string]float64, error) {
		out := make(map[string]float64, len(symbols))
		for _, s := range symbols {
			out[s] = table[s]
		}
		return out, nil
	}
}

type mockExtractor struct {
	ExtractFunc  func(ctx context.Context, image []byte, mimeType string) ([]entity.ExtractedPosition, error)
	ExtractCalls int
}

func (m *mockExtractor) ExtractPositions(ctx context.Context, image []byte, mimeType string) ([]entity.ExtractedPosition, error) {
	m.ExtractCalls++
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, image, mimeType)
	}
	return nil, errors.New("ExtractFunc is not implemented")
}

type mockAnalyst struct {
	AnalyzeFunc func(ctx context.Context, prompt string) (string, error)
	LastPrompt  string
}

func (m *mockAnalyst) Analyze(ctx context.Context, prompt string) (string, error) {
	m.LastPrompt = prompt
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, prompt)
	}
	return "", errors.New("AnalyzeFunc is not implemented")
}

type mockArchive struct {
	SaveErr error
	Saved   []string
	Removed []string
}

func (m *mockArchive) Save(ctx context.Context, tag, mimeType string, data []byte) (string, error) {
	if m.SaveErr != nil {
		return "", m.SaveErr
	}
	name := tag + "_image.png"
	m.Saved = append(m.Saved, name)
	return name, nil
}

func (m *mockArchive) Remove(ctx context.Context, name string) error {
	m.Removed = append(m.Removed, name)
	return nil
}

type recordingPublisher struct {
	Events []entity.PortfolioEvent
	Err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, ev entity.PortfolioEvent) error {
	r.Events = append(r.Events, ev)
	return r.Err
}
