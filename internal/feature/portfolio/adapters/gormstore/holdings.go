package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/portfolio/usecase"
)

type holdingsLedger struct {
	db  *gorm.DB
	now func() time.Time
}

var _ usecase.HoldingsLedger = (*holdingsLedger)(nil)

// NewHoldingsLedger returns a ledger backed by the holdings table.
func NewHoldingsLedger(db *gorm.DB) *holdingsLedger {
	return &holdingsLedger{db: db, now: time.Now}
}

func (r *holdingsLedger) ReadAll(ctx context.Context) ([]entity.Holding, error) {
	var rows []HoldingModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Holding, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.Holding{
			Symbol:      m.Symbol,
			Tag:         m.Tag,
			Shares:      m.Shares,
			LastUpdated: m.LastUpdated,
		})
	}
	return out, nil
}

// ReplaceTag deletes and re-inserts the rows of tag in one transaction.
func (r *holdingsLedger) ReplaceTag(ctx context.Context, tag string, positions []entity.ExtractedPosition) error {
	now := r.now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag = ?", tag).Delete(&HoldingModel{}).Error; err != nil {
			return err
		}
		if len(positions) == 0 {
			return nil
		}
		ms := make([]HoldingModel, 0, len(positions))
		for _, p := range positions {
			ms = append(ms, HoldingModel{Symbol: p.Symbol, Tag: tag, Shares: p.Shares, LastUpdated: now})
		}
		return tx.Create(&ms).Error
	})
}

// Upsert updates the lowest-id (symbol, tag) row or inserts one.
func (r *holdingsLedger) Upsert(ctx context.Context, symbol, tag string, shares float64) error {
	now := r.now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m HoldingModel
		err := tx.Where("symbol = ? AND tag = ?", symbol, tag).Order("id").First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&HoldingModel{Symbol: symbol, Tag: tag, Shares: shares, LastUpdated: now}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&m).Updates(map[string]any{"shares": shares, "last_updated": now}).Error
	})
}
