package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"portfolio_backend/internal/app/di"
	"portfolio_backend/internal/platform/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	app, err := di.NewApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	priced, err := app.Portfolio.RefreshPrices(ctx)
	if err != nil {
		slog.Error("price refresh failed", "error", err)
		app.Close()
		os.Exit(1)
	}
	slog.Info("refresh ok", "priced", priced)
}
