package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"portfolio_backend/internal/feature/portfolio/domain"
)

// mockGenerator はgeneratorインターフェースのモック実装です。
type mockGenerator struct {
	GenerateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Model        string
	Contents     []*genai.Content
	Config       *genai.GenerateContentConfig
}

func (m *mockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.Model, m.Contents, m.Config = model, contents, config
	return m.GenerateFunc(ctx, model, contents, config)
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(s, genai.RoleModel)},
		},
	}
}

func TestClient_ExtractPositions(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{GenerateFunc: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return textResponse(`[{"symbol":"AAPL","shares":10}]`), nil
	}}
	c := newClient(gen, "")

	got, err := c.ExtractPositions(context.Background(), []byte("png-bytes"), "image/png")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "AAPL", got[0].Symbol)
	assert.Equal(t, DefaultModel, gen.Model)
	assert.Equal(t, "application/json", gen.Config.ResponseMIMEType)

	require.Len(t, gen.Contents, 1)
	parts := gen.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, extractionPrompt, parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	assert.Equal(t, []byte("png-bytes"), parts[1].InlineData.Data)
}

func TestClient_ExtractPositions_APIError(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{GenerateFunc: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return nil, errors.New("quota exceeded")
	}}

	_, err := newClient(gen, "gemini-test").ExtractPositions(context.Background(), []byte("x"), "")

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Equal(t, "gemini-test", gen.Model)
	assert.Equal(t, "image/jpeg", gen.Contents[0].Parts[1].InlineData.MIMEType)
}

func TestClient_Analyze(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{GenerateFunc: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return textResponse("Your portfolio is tech heavy."), nil
	}}

	got, err := newClient(gen, "").Analyze(context.Background(), "how diversified am I?")

	require.NoError(t, err)
	assert.Equal(t, "Your portfolio is tech heavy.", got)
	assert.Nil(t, gen.Config)
	assert.Equal(t, "how diversified am I?", gen.Contents[0].Parts[0].Text)
}
