// Package config はアプリケーション全体の設定を環境変数と.envファイルから読み込みます。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ストレージバックエンドの種類です。
const (
	StorageCSV      = "csv"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// 抽出バックエンドの種類です。
const (
	ExtractorGemini = "gemini"
	ExtractorVision = "vision"
)

// Config はアプリケーション設定です。フィールドは環境変数名と対応します。
type Config struct {
	Port     string `mapstructure:"PORT"`
	DataDir  string `mapstructure:"DATA_DIR"`
	ImageDir string `mapstructure:"IMAGE_DIR"`
	Storage  string `mapstructure:"STORAGE_BACKEND"`

	SQLitePath string `mapstructure:"SQLITE_PATH"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	DBInstance string `mapstructure:"INSTANCE_CONNECTION_NAME"`
	Migrate    bool   `mapstructure:"RUN_MIGRATIONS"`

	RedisHost      string `mapstructure:"REDIS_HOST"`
	RedisPort      string `mapstructure:"REDIS_PORT"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisNamespace string `mapstructure:"REDIS_PRICE_NAMESPACE"`

	PriceProvider      string `mapstructure:"PRICE_PROVIDER"`
	AlphaVantageAPIKey string `mapstructure:"ALPHA_VANTAGE_API_KEY"`
	TwelveDataAPIKey   string `mapstructure:"TWELVE_DATA_API_KEY"`
	CacheExpirySeconds int    `mapstructure:"CACHE_EXPIRY_SECONDS"`
	RetryAttempts      int    `mapstructure:"PRICE_RETRY_ATTEMPTS"`
	RetryDelaySeconds  int    `mapstructure:"PRICE_RETRY_DELAY_SECONDS"`
	HTTPTimeoutSeconds int    `mapstructure:"HTTP_TIMEOUT_SECONDS"`

	Extractor    string `mapstructure:"EXTRACTOR_BACKEND"`
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	RefreshSchedule string `mapstructure:"REFRESH_SCHEDULE"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var defaults = map[string]any{
	"PORT":                      "8080",
	"DATA_DIR":                  "data",
	"IMAGE_DIR":                 "images",
	"STORAGE_BACKEND":           StorageCSV,
	"SQLITE_PATH":               "data/portfolio.db",
	"DB_USER":                   "",
	"DB_PASSWORD":               "",
	"DB_NAME":                   "",
	"DB_HOST":                   "",
	"DB_PORT":                   "5432",
	"DB_SSLMODE":                "disable",
	"INSTANCE_CONNECTION_NAME":  "",
	"RUN_MIGRATIONS":            true,
	"REDIS_HOST":                "",
	"REDIS_PORT":                "6379",
	"REDIS_PASSWORD":            "",
	"REDIS_PRICE_NAMESPACE":     "",
	"PRICE_PROVIDER":            "yahoo",
	"ALPHA_VANTAGE_API_KEY":     "",
	"TWELVE_DATA_API_KEY":       "",
	"CACHE_EXPIRY_SECONDS":      600,
	"PRICE_RETRY_ATTEMPTS":      3,
	"PRICE_RETRY_DELAY_SECONDS": 1,
	"HTTP_TIMEOUT_SECONDS":      10,
	"EXTRACTOR_BACKEND":         ExtractorGemini,
	"GEMINI_API_KEY":            "",
	"GEMINI_MODEL":              "",
	"KAFKA_BROKERS":             "",
	"KAFKA_TOPIC":               "",
	"REFRESH_SCHEDULE":          "",
	"LOG_LEVEL":                 "info",
	"LOG_FORMAT":                "text",
}

// Load は.envファイル（存在する場合）を読み込み、環境変数から設定を組み立てます。
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	// AutomaticEnvはUnmarshalでキーを列挙しないため、デフォルトで全キーを登録する
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	cfg.Extractor = strings.ToLower(strings.TrimSpace(cfg.Extractor))
	cfg.PriceProvider = strings.ToLower(strings.TrimSpace(cfg.PriceProvider))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage {
	case StorageCSV, StorageSQLite, StoragePostgres:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage)
	}
	switch c.Extractor {
	case ExtractorGemini, ExtractorVision:
	default:
		return fmt.Errorf("unknown EXTRACTOR_BACKEND %q", c.Extractor)
	}
	if c.CacheExpirySeconds <= 0 || c.RetryAttempts <= 0 || c.RetryDelaySeconds < 0 {
		return errors.New("cache expiry and retry attempts must be positive")
	}
	return nil
}

// CacheExpiry は価格キャッシュの有効期間です。
func (c *Config) CacheExpiry() time.Duration {
	return time.Duration(c.CacheExpirySeconds) * time.Second
}

// RetryDelay は価格取得リトライの待機時間です。
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// HTTPTimeout は外部API呼び出しのタイムアウトです。
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// RedisAddr はRedisのアドレスを返します。REDIS_HOSTが未設定の場合は空です。
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

// Brokers はKafkaブローカーの一覧です。
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// NewLogger はLOG_LEVELとLOG_FORMATに従ってslog.Loggerを生成します。
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(stdout, opts))
	}
	return slog.New(slog.NewTextHandler(stdout, opts))
}
