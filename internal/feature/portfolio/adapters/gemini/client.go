// Package gemini はGoogle Gemini APIを使用したポジション抽出・ポートフォリオ分析クライアントを提供します。
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"portfolio_backend/internal/feature/portfolio/domain"
	"portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/portfolio/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"

	extractionPrompt = "Extract JSON array of {symbol, shares} from this screenshot of stock positions. " +
		"Return ONLY the JSON array, nothing else. Make sure all shares are correctly parsed as numbers."
)

// Config はGeminiクライアントの設定です。
type Config struct {
	APIKey string // 空の場合はADC（Vertex AI）の環境変数を使用
	Model  string
}

// generator はGenerateContent呼び出しを抽象化します。テストで差し替えます。
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client はGemini APIでスクリーンショットからポジションを抽出し、質問に回答します。
type Client struct {
	models generator
	model  string
}

// ClientがPositionExtractorとPortfolioAnalystを実装していることをコンパイル時に検証します。
var (
	_ usecase.PositionExtractor = (*Client)(nil)
	_ usecase.PortfolioAnalyst  = (*Client)(nil)
)

// NewClient はGeminiクライアントの新しいインスタンスを生成します。
// APIKeyが未設定の場合は GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION が必要です。
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var cc *genai.ClientConfig
	if cfg.APIKey != "" {
		cc = &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newClient(client.Models, cfg.Model), nil
}

func newClient(models generator, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{models: models, model: model}
}

// ExtractPositions は画像をインラインデータとして送信し、JSON配列のポジションを受け取ります。
func (c *Client) ExtractPositions(ctx context.Context, image []byte, mimeType string) ([]entity.ExtractedPosition, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(extractionPrompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini API request failed: %v", domain.ErrExtractionFailed, err)
	}
	return ParsePositions(resp.Text())
}

// Analyze はプロンプトを使用して分析サマリーを生成します。
func (c *Client) Analyze(ctx context.Context, prompt string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}

	return resp.Text(), nil
}
