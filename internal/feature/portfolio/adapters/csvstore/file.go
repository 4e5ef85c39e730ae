// Package csvstore keeps holdings and prices in two CSV files under a data directory.
// Every write rewrites the whole file through a temp file and a rename.
package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"portfolio_backend/internal/feature/portfolio/domain"
)

const (
	// HoldingsFile is the ledger file name inside the data directory.
	HoldingsFile = "holdings.csv"
	// PricesFile is the price store file name inside the data directory.
	PricesFile = "prices.csv"
)

var (
	holdingsHeader = []string{"symbol", "tag", "shares", "last_updated"}
	pricesHeader   = []string{"symbol", "last_price", "last_price_time"}
)

// naiveISO is the zone-less timestamp layout older files were written with.
const naiveISO = "2006-01-02T15:04:05.999999999"

// readTable returns the data rows of path as column-name maps, creating the file with
// header when it does not exist yet.
func readTable(path string, header []string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := writeTable(path, header, nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDataCorruption, filepath.Base(path), err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(cols))
		for i, c := range cols {
			if i < len(rec) {
				row[strings.TrimSpace(c)] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// writeTable replaces path with header followed by rows.
func writeTable(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func parseNumber(field, value string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", domain.ErrDataCorruption, field, value)
	}
	return d.InexactFloat64(), nil
}

func formatNumber(f float64) string {
	return decimal.NewFromFloat(f).String()
}

// parseTime accepts RFC 3339 and zone-less ISO 8601. Empty means unset.
func parseTime(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(naiveISO, value, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %s %q is not a timestamp", domain.ErrDataCorruption, field, value)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}
