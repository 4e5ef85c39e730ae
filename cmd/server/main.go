package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio_backend/internal/app/di"
	"portfolio_backend/internal/app/router"
	"portfolio_backend/internal/platform/config"
	"portfolio_backend/internal/platform/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := di.NewApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("failed to close resources", "error", err)
		}
	}()

	// 定期的な価格更新（REFRESH_SCHEDULEが設定されている場合のみ）
	if cfg.RefreshSchedule != "" {
		sched := scheduler.New()
		job := scheduler.JobFunc{JobName: "refresh_prices", Fn: func(ctx context.Context) error {
			_, err := app.Portfolio.RefreshPrices(ctx)
			return err
		}}
		if err := sched.AddJob(cfg.RefreshSchedule, job); err != nil {
			slog.Error("invalid refresh schedule", "error", err)
			os.Exit(1)
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(app.Health, app.Handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr, "storage", cfg.Storage, "provider", cfg.PriceProvider, "extractor", cfg.Extractor)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
