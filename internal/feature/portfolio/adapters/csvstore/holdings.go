package csvstore

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/portfolio/usecase"
)

// HoldingsLedger is the holdings.csv ledger. The mutex serializes read-modify-write
// cycles inside this process only.
type HoldingsLedger struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

var _ usecase.HoldingsLedger = (*HoldingsLedger)(nil)

// NewHoldingsLedger returns a ledger stored in dir/holdings.csv.
func NewHoldingsLedger(dir string) *HoldingsLedger {
	return &HoldingsLedger{path: filepath.Join(dir, HoldingsFile), now: time.Now}
}

// ReadAll returns every row in file order.
func (l *HoldingsLedger) ReadAll(ctx context.Context) ([]entity.Holding, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

// ReplaceTag drops every row of tag and appends positions stamped with the current time.
// Duplicate symbols in positions are kept as separate rows.
func (l *HoldingsLedger) ReplaceTag(ctx context.Context, tag string, positions []entity.ExtractedPosition) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.read()
	if err != nil {
		return err
	}

	kept := make([]entity.Holding, 0, len(rows)+len(positions))
	for _, h := range rows {
		if h.Tag != tag {
			kept = append(kept, h)
		}
	}
	now := l.now()
	for _, p := range positions {
		kept = append(kept, entity.Holding{Symbol: p.Symbol, Tag: tag, Shares: p.Shares, LastUpdated: now})
	}
	return l.write(kept)
}

// Upsert updates the first row matching symbol and tag exactly, or appends one.
func (l *HoldingsLedger) Upsert(ctx context.Context, symbol, tag string, shares float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.read()
	if err != nil {
		return err
	}

	now := l.now()
	found := false
	for i := range rows {
		if rows[i].Symbol == symbol && rows[i].Tag == tag {
			rows[i].Shares = shares
			rows[i].LastUpdated = now
			found = true
			break
		}
	}
	if !found {
		rows = append(rows, entity.Holding{Symbol: symbol, Tag: tag, Shares: shares, LastUpdated: now})
	}
	return l.write(rows)
}

func (l *HoldingsLedger) read() ([]entity.Holding, error) {
	table, err := readTable(l.path, holdingsHeader)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Holding, 0, len(table))
	for _, row := range table {
		shares, err := parseNumber("shares", row["shares"])
		if err != nil {
			return nil, err
		}
		updated, err := parseTime("last_updated", row["last_updated"])
		if err != nil {
			return nil, err
		}
		out = append(out, entity.Holding{
			Symbol:      row["symbol"],
			Tag:         row["tag"],
			Shares:      shares,
			LastUpdated: updated,
		})
	}
	return out, nil
}

func (l *HoldingsLedger) write(rows []entity.Holding) error {
	records := make([][]string, 0, len(rows))
	for _, h := range rows {
		records = append(records, []string{h.Symbol, h.Tag, formatNumber(h.Shares), formatTime(h.LastUpdated)})
	}
	return writeTable(l.path, holdingsHeader, records)
}
