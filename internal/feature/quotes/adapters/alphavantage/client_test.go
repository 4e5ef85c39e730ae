package alphavantage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_backend/internal/feature/quotes/domain"
)

// countingLimiter はWaitの呼び出し回数を記録するモックです。
type countingLimiter struct {
	calls int
}

func (l *countingLimiter) Wait(context.Context) error {
	l.calls++
	return nil
}

func TestClient_FetchQuotes_MissingKey(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{}, &http.Client{}, nil)
	_, err := c.FetchQuotes(context.Background(), []string{"AAPL"})
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestClient_FetchQuotes_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))

		switch r.URL.Query().Get("symbol") {
		case "AAPL":
			_, _ = w.Write([]byte(`{"Global Quote": {"01. symbol": "AAPL", "05. price": "189.2500"}}`))
		case "THROTTLED":
			_, _ = w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`))
		case "BAD":
			_, _ = w.Write([]byte(`{"Error Message": "Invalid API call."}`))
		default:
			_, _ = w.Write([]byte(`{"Global Quote": {}}`))
		}
	}))
	defer server.Close()

	limiter := &countingLimiter{}
	c := NewClient(Config{APIKey: "test-key", BaseURL: server.URL}, server.Client(), limiter)

	got, err := c.FetchQuotes(context.Background(), []string{"AAPL", "THROTTLED", "BAD", "EMPTY"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"AAPL": 189.25}, got)
	assert.Equal(t, 4, limiter.calls, "every request goes through the limiter")
}

func TestClient_FetchQuotes_HTTPErrorAbortsBatch(t *testing.T) {
	t.Parallel()

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: server.URL}, server.Client(), nil)
	_, err := c.FetchQuotes(context.Background(), []string{"AAPL", "MSFT"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
	assert.Equal(t, 1, requests)
}

func TestClient_FetchQuotes_LimiterError(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{APIKey: "k", BaseURL: "http://127.0.0.1:0"}, &http.Client{}, limiterFunc(func(context.Context) error {
		return fmt.Errorf("stop")
	}))
	_, err := c.FetchQuotes(context.Background(), []string{"AAPL"})
	assert.EqualError(t, err, "stop")
}

type limiterFunc func(context.Context) error

func (f limiterFunc) Wait(ctx context.Context) error { return f(ctx) }
