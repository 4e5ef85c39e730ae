package csvstore

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/portfolio/usecase"
)

// PriceStore is the prices.csv store, one row per canonical symbol.
type PriceStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

var _ usecase.PriceStore = (*PriceStore)(nil)

// NewPriceStore returns a price store kept in dir/prices.csv.
func NewPriceStore(dir string) *PriceStore {
	return &PriceStore{path: filepath.Join(dir, PricesFile), now: time.Now}
}

// ReadAll returns every record. Empty price fields come back as nil.
func (s *PriceStore) ReadAll(ctx context.Context) ([]entity.PriceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Upsert updates the record of symbol in place or appends a new one.
func (s *PriceStore) Upsert(ctx context.Context, symbol string, price float64, at *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}

	t := s.now()
	if at != nil {
		t = *at
	}
	p := price

	found := false
	for i := range records {
		if records[i].Symbol == symbol {
			records[i].LastPrice = &p
			records[i].LastPriceTime = &t
			found = true
			break
		}
	}
	if !found {
		records = append(records, entity.PriceRecord{Symbol: symbol, LastPrice: &p, LastPriceTime: &t})
	}
	return s.write(records)
}

func (s *PriceStore) read() ([]entity.PriceRecord, error) {
	table, err := readTable(s.path, pricesHeader)
	if err != nil {
		return nil, err
	}
	out := make([]entity.PriceRecord, 0, len(table))
	for _, row := range table {
		rec := entity.PriceRecord{Symbol: row["symbol"]}
		if v := strings.TrimSpace(row["last_price"]); v != "" && v != "None" {
			p, err := parseNumber("last_price", v)
			if err != nil {
				return nil, err
			}
			rec.LastPrice = &p
		}
		if v := strings.TrimSpace(row["last_price_time"]); v != "" && v != "None" {
			t, err := parseTime("last_price_time", v)
			if err != nil {
				return nil, err
			}
			rec.LastPriceTime = &t
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *PriceStore) write(records []entity.PriceRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		price, at := "", ""
		if r.LastPrice != nil {
			price = formatNumber(*r.LastPrice)
		}
		if r.LastPriceTime != nil {
			at = formatTime(*r.LastPriceTime)
		}
		rows = append(rows, []string{r.Symbol, price, at})
	}
	return writeTable(s.path, pricesHeader, rows)
}
