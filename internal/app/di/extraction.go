package di

import (
	"context"
	"errors"
	"log/slog"

	"portfolio_backend/internal/feature/portfolio/adapters/gemini"
	"portfolio_backend/internal/feature/portfolio/adapters/vision"
	"portfolio_backend/internal/feature/portfolio/usecase"
	"portfolio_backend/internal/platform/config"
)

var errAnalystUnavailable = errors.New("chat requires a configured Gemini client")

// unavailableAnalyst answers every chat with an error when Gemini could not be configured.
type unavailableAnalyst struct{ cause error }

func (a unavailableAnalyst) Analyze(context.Context, string) (string, error) {
	return "", errors.Join(errAnalystUnavailable, a.cause)
}

// NewExtraction creates the position extractor and the chat analyst.
// The returned closer releases the Vision client when it is in use.
func NewExtraction(ctx context.Context, cfg *config.Config) (usecase.PositionExtractor, usecase.PortfolioAnalyst, func() error, error) {
	noop := func() error { return nil }

	gc, gemErr := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})

	if cfg.Extractor == config.ExtractorVision {
		ocr, err := vision.NewOCRExtractor(ctx)
		if err != nil {
			return nil, nil, noop, err
		}
		if gemErr != nil {
			slog.Warn("gemini unavailable, chat disabled", "error", gemErr)
			return ocr, unavailableAnalyst{cause: gemErr}, ocr.Close, nil
		}
		return ocr, gc, ocr.Close, nil
	}

	if gemErr != nil {
		return nil, nil, noop, gemErr
	}
	return gc, gc, noop, nil
}
