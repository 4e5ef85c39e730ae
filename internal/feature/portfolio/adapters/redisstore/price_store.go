// Package redisstore keeps the price store in a single Redis hash.
package redisstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"portfolio_backend/internal/feature/portfolio/domain"
	"portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/portfolio/usecase"
)

// DefaultNamespace is the hash key used when none is configured.
const DefaultNamespace = "portfolio:prices"

// priceValue is the msgpack payload stored per hash field.
type priceValue struct {
	Price float64   `msgpack:"p"`
	At    time.Time `msgpack:"t"`
}

// PriceStore implements usecase.PriceStore with one hash field per canonical symbol.
// HSET is atomic per field, so concurrent upserts of different symbols never collide.
type PriceStore struct {
	rdb       *redis.Client
	namespace string
	now       func() time.Time
}

var _ usecase.PriceStore = (*PriceStore)(nil)

// NewPriceStore creates a PriceStore. If namespace is empty, it uses DefaultNamespace.
func NewPriceStore(rdb *redis.Client, namespace string) *PriceStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &PriceStore{rdb: rdb, namespace: namespace, now: time.Now}
}

// ReadAll returns every record sorted by symbol.
func (s *PriceStore) ReadAll(ctx context.Context) ([]entity.PriceRecord, error) {
	fields, err := s.rdb.HGetAll(ctx, s.namespace).Result()
	if err != nil {
		return nil, err
	}

	out := make([]entity.PriceRecord, 0, len(fields))
	for symbol, raw := range fields {
		var v priceValue
		if err := msgpack.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("%w: price of %s: %v", domain.ErrDataCorruption, symbol, err)
		}
		price, at := v.Price, v.At
		out = append(out, entity.PriceRecord{Symbol: symbol, LastPrice: &price, LastPriceTime: &at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// Upsert overwrites the field of symbol.
func (s *PriceStore) Upsert(ctx context.Context, symbol string, price float64, at *time.Time) error {
	t := s.now()
	if at != nil {
		t = *at
	}
	b, err := msgpack.Marshal(&priceValue{Price: price, At: t.UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal price: %w", err)
	}
	return s.rdb.HSet(ctx, s.namespace, symbol, b).Err()
}
