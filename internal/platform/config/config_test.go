package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults は環境変数が未設定の場合にデフォルト値が使用されることを検証します。
func TestLoad_Defaults(t *testing.T) {
	for k := range defaults {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageCSV, cfg.Storage)
	assert.Equal(t, ExtractorGemini, cfg.Extractor)
	assert.Equal(t, "yahoo", cfg.PriceProvider)
	assert.Equal(t, 600*time.Second, cfg.CacheExpiry())
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, time.Second, cfg.RetryDelay())
	assert.Equal(t, "", cfg.RedisAddr())
	assert.Nil(t, cfg.Brokers())
	assert.True(t, cfg.Migrate)
}

// TestLoad_FromEnvAndDotEnv は.envファイルと環境変数の両方から値が読み込まれることを検証します。
func TestLoad_FromEnvAndDotEnv(t *testing.T) {
	for k := range defaults {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PRICE_PROVIDER=Alpha_Vantage\nALPHA_VANTAGE_API_KEY=from-file\n"), 0o644))
	t.Setenv("STORAGE_BACKEND", "SQLite")
	t.Setenv("CACHE_EXPIRY_SECONDS", "30")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load(envFile)

	require.NoError(t, err)
	assert.Equal(t, "alpha_vantage", cfg.PriceProvider)
	assert.Equal(t, "from-file", cfg.AlphaVantageAPIKey)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, 30*time.Second, cfg.CacheExpiry())
	assert.Equal(t, "cache:6379", cfg.RedisAddr())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown storage", "STORAGE_BACKEND", "mongo"},
		{"unknown extractor", "EXTRACTOR_BACKEND", "tesseract"},
		{"zero expiry", "CACHE_EXPIRY_SECONDS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k := range defaults {
				t.Setenv(k, "")
				os.Unsetenv(k)
			}
			t.Setenv(tt.key, tt.val)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))

			assert.Error(t, err)
		})
	}
}

func TestConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	stdout = &buf
	t.Cleanup(func() { stdout = os.Stdout })

	cfg := &Config{LogLevel: "warn", LogFormat: "json"}
	logger := cfg.NewLogger()
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"key":"value"`)
}
