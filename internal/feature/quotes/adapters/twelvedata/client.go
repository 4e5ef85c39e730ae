package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"portfolio_backend/internal/feature/quotes/adapters/twelvedata/dto"
	"portfolio_backend/internal/feature/quotes/domain"
	"portfolio_backend/internal/feature/quotes/usecase"
	"portfolio_backend/internal/shared/symbols"
)

// TwelveDataQuotes はTwelve Data外部APIから最新株価を取得するQuoteProvider実装です。
type TwelveDataQuotes struct {
	cfg    Config
	client *http.Client
}

// TwelveDataQuotesがQuoteProviderを実装していることをコンパイル時に検証します。
var _ usecase.QuoteProvider = (*TwelveDataQuotes)(nil)

// NewTwelveDataQuotes は指定された設定とHTTPクライアントでTwelveDataQuotesの新しいインスタンスを生成します。
func NewTwelveDataQuotes(cfg Config, client *http.Client) *TwelveDataQuotes {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &TwelveDataQuotes{cfg: cfg, client: client}
}

// Name はシンボル変換テーブルで使うプロバイダー名を返します。
func (t *TwelveDataQuotes) Name() string { return symbols.ProviderTwelveData }

// FetchQuotes は /price エンドポイントに銘柄をまとめて問い合わせ、銘柄ごとの価格を返します。
// 1銘柄のときと複数銘柄のときでレスポンスの形が異なります。
func (t *TwelveDataQuotes) FetchQuotes(ctx context.Context, syms []string) (map[string]float64, error) {
	if t.cfg.TwelveDataAPIKey == "" {
		return nil, domain.ErrMissingCredential
	}
	if len(syms) == 0 {
		return map[string]float64{}, nil
	}

	q := url.Values{}
	q.Set("symbol", strings.Join(syms, ","))
	q.Set("apikey", t.cfg.TwelveDataAPIKey)
	u := fmt.Sprintf("%s/price?%s", strings.TrimRight(t.cfg.BaseURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: twelvedata http %d", domain.ErrProviderFailure, res.StatusCode)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read twelvedata response: %v", domain.ErrProviderFailure, err)
	}

	if len(syms) == 1 {
		var one dto.PriceResponse
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("%w: decode twelvedata response: %v", domain.ErrProviderFailure, err)
		}
		if one.Status == "error" {
			return nil, fmt.Errorf("%w: twelvedata: %s", domain.ErrProviderFailure, one.Message)
		}
		out := map[string]float64{}
		if p, ok := parsePrice(syms[0], one); ok {
			out[syms[0]] = p
		}
		return out, nil
	}

	var batch dto.BatchPriceResponse
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("%w: decode twelvedata response: %v", domain.ErrProviderFailure, err)
	}
	// 全体エラーの場合はトップレベルに status=error が入る
	if status, ok := batch["status"]; ok && strings.Contains(string(status), "error") {
		var e dto.PriceResponse
		_ = json.Unmarshal(raw, &e)
		return nil, fmt.Errorf("%w: twelvedata: %s", domain.ErrProviderFailure, e.Message)
	}

	out := make(map[string]float64, len(batch))
	for _, s := range syms {
		entry, ok := batch[s]
		if !ok {
			continue
		}
		var pr dto.PriceResponse
		if err := json.Unmarshal(entry, &pr); err != nil {
			slog.Warn("twelvedata returned malformed entry", "symbol", s, "error", err)
			continue
		}
		if p, ok := parsePrice(s, pr); ok {
			out[s] = p
		}
	}
	return out, nil
}

// parsePrice は価格文字列をパースします。銘柄単位のエラーは欠損として扱います。
func parsePrice(symbol string, pr dto.PriceResponse) (float64, bool) {
	if pr.Status == "error" {
		slog.Warn("twelvedata rejected symbol", "symbol", symbol, "message", pr.Message)
		return 0, false
	}
	p, err := strconv.ParseFloat(pr.Price, 64)
	if err != nil {
		slog.Warn("twelvedata returned non-numeric price", "symbol", symbol, "price", pr.Price)
		return 0, false
	}
	return p, true
}
