package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"portfolio_backend/internal/feature/portfolio/adapters/events"
	"portfolio_backend/internal/feature/portfolio/adapters/imagestore"
	"portfolio_backend/internal/feature/portfolio/transport/handler"
	"portfolio_backend/internal/feature/portfolio/usecase"
	"portfolio_backend/internal/platform/config"
	"portfolio_backend/internal/platform/db"
	healthhandler "portfolio_backend/internal/platform/http/handler"
	infraredis "portfolio_backend/internal/platform/redis"
	"portfolio_backend/internal/shared/symbols"
)

// PortfolioService is the full set of portfolio operations used by entrypoints.
type PortfolioService interface {
	handler.PortfolioUsecase
	RefreshPrices(ctx context.Context) (int, error)
}

// App holds the wired application components.
type App struct {
	Portfolio PortfolioService
	Handler   *handler.PortfolioHandler
	Health    *healthhandler.HealthHandler

	closers []func() error
}

// Close releases every external client opened by NewApp.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// NewDB opens the database selected by STORAGE_BACKEND. The CSV backend has no database.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		return db.OpenSQLite(cfg.SQLitePath, cfg.Migrate)
	case config.StoragePostgres:
		return db.OpenPostgres(db.Config{
			User:         cfg.DBUser,
			Password:     cfg.DBPassword,
			Name:         cfg.DBName,
			Host:         cfg.DBHost,
			Port:         cfg.DBPort,
			SSLMode:      cfg.DBSSLMode,
			InstanceName: cfg.DBInstance,
		}, cfg.Migrate)
	default:
		return nil, nil
	}
}

// NewApp wires stores, quote provider, extraction and events into the portfolio usecase.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}
	checks := map[string]healthhandler.CheckFunc{}

	gdb, err := NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if gdb != nil {
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, sqlDB.Close)
		checks["database"] = sqlDB.PingContext
		slog.Info("using SQL storage", "backend", cfg.Storage)
	}

	var rdb *redis.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.RedisAddr(), cfg.RedisPassword); err != nil {
		slog.Warn("Redis unavailable, storing prices without it", "error", err)
	} else if tmp != nil {
		rdb = tmp
		app.closers = append(app.closers, rdb.Close)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	normalizer := symbols.Default()
	prices, err := NewPriceCache(cfg, normalizer)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	extractor, analyst, closeExtractor, err := NewExtraction(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("configure extraction: %w", err)
	}
	app.closers = append(app.closers, closeExtractor)

	var publisher usecase.EventPublisher = events.NoopPublisher{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kp := events.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		app.closers = append(app.closers, kp.Close)
		publisher = kp
	}

	priceStore := NewPriceStore(rdb, cfg.RedisNamespace, gdb, cfg.DataDir)
	uc := usecase.NewPortfolioUsecase(usecase.Deps{
		Ledger:     NewHoldingsLedger(gdb, cfg.DataDir),
		Prices:     priceStore,
		Enricher:   usecase.NewEnricher(prices, priceStore, normalizer),
		Normalizer: normalizer,
		Extractor:  extractor,
		Analyst:    analyst,
		Archive:    imagestore.NewStore(cfg.ImageDir),
		Events:     publisher,
	})

	app.Portfolio = uc
	app.Handler = handler.NewPortfolioHandler(uc)
	app.Health = healthhandler.NewHealthHandler(checks)
	return app, nil
}
