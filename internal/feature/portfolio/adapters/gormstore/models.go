// Package gormstore keeps holdings and prices in a SQL database through gorm.
package gormstore

import (
	"time"

	"gorm.io/gorm"
)

// HoldingModel is one (symbol, tag) row of the ledger. Duplicate rows are allowed.
type HoldingModel struct {
	ID          uint      `gorm:"primaryKey"`
	Symbol      string    `gorm:"size:32;not null;index:holding_sym_tag,priority:1"`
	Tag         string    `gorm:"size:64;not null;index:holding_sym_tag,priority:2"`
	Shares      float64   `gorm:"not null"`
	LastUpdated time.Time `gorm:"not null"`
}

func (HoldingModel) TableName() string {
	return "holdings"
}

// PriceModel is the last known price of a canonical symbol.
type PriceModel struct {
	ID            uint   `gorm:"primaryKey"`
	Symbol        string `gorm:"size:32;not null;uniqueIndex"`
	LastPrice     *float64
	LastPriceTime *time.Time
}

func (PriceModel) TableName() string {
	return "prices"
}

// AutoMigrate creates or updates the tables used by this package.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&HoldingModel{}, &PriceModel{})
}
