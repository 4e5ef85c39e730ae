package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"portfolio_backend/internal/feature/portfolio/adapters/csvstore"
	"portfolio_backend/internal/feature/portfolio/adapters/gormstore"
	"portfolio_backend/internal/feature/portfolio/adapters/redisstore"
	"portfolio_backend/internal/feature/portfolio/usecase"
)

// NewHoldingsLedger creates a HoldingsLedger implementation.
// If a database is available, it returns a gorm-backed implementation.
// Otherwise, it falls back to CSV files under dataDir.
func NewHoldingsLedger(db *gorm.DB, dataDir string) usecase.HoldingsLedger {
	if db != nil {
		return gormstore.NewHoldingsLedger(db)
	}
	return csvstore.NewHoldingsLedger(dataDir)
}

// NewPriceStore creates a PriceStore implementation.
// Redis takes precedence when available, then the database, then CSV files.
func NewPriceStore(rdb *redis.Client, namespace string, db *gorm.DB, dataDir string) usecase.PriceStore {
	if rdb != nil {
		return redisstore.NewPriceStore(rdb, namespace)
	}
	if db != nil {
		return gormstore.NewPriceStore(db)
	}
	return csvstore.NewPriceStore(dataDir)
}
