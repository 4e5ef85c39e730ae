package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/portfolio/usecase"
)

type priceStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ usecase.PriceStore = (*priceStore)(nil)

// NewPriceStore returns a price store backed by the prices table.
func NewPriceStore(db *gorm.DB) *priceStore {
	return &priceStore{db: db, now: time.Now}
}

func (r *priceStore) ReadAll(ctx context.Context) ([]entity.PriceRecord, error) {
	var rows []PriceModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.PriceRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.PriceRecord{Symbol: m.Symbol, LastPrice: m.LastPrice, LastPriceTime: m.LastPriceTime})
	}
	return out, nil
}

func (r *priceStore) Upsert(ctx context.Context, symbol string, price float64, at *time.Time) error {
	t := r.now()
	if at != nil {
		t = *at
	}
	m := PriceModel{Symbol: symbol, LastPrice: &price, LastPriceTime: &t}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_price", "last_price_time"}),
	}).Create(&m).Error
}
