package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_backend/internal/feature/quotes/domain"
)

func TestNewClient_DefaultBaseURL(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{}, &http.Client{})
	assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, "yahoo", c.Name())
}

func TestClient_FetchQuotes_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "AAPL,BRK-B,NOPE", r.URL.Query().Get("symbols"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"quoteResponse": {
				"result": [
					{"symbol": "AAPL", "regularMarketPrice": 189.25},
					{"symbol": "BRK-B", "regularMarketPrice": 410.1},
					{"symbol": "NOPE"}
				],
				"error": null
			}
		}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL}, server.Client())
	got, err := c.FetchQuotes(context.Background(), []string{"AAPL", "BRK-B", "NOPE"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"AAPL": 189.25, "BRK-B": 410.1}, got)
}

func TestClient_FetchQuotes_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"too many requests", http.StatusTooManyRequests, ``},
		{"server error", http.StatusInternalServerError, ``},
		{"invalid json", http.StatusOK, `not json`},
		{"api error", http.StatusOK, `{"quoteResponse":{"result":[],"error":{"code":"Bad Request","description":"Missing symbols"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(Config{BaseURL: server.URL}, server.Client())
			_, err := c.FetchQuotes(context.Background(), []string{"AAPL"})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrProviderFailure)
		})
	}
}

func TestClient_FetchQuotes_EmptyInput(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{BaseURL: "http://127.0.0.1:0"}, &http.Client{})
	got, err := c.FetchQuotes(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
