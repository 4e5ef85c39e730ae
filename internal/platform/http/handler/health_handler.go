// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIWelcomeMessage は /api エンドポイントが返すメッセージです。
const APIWelcomeMessage = "Welcome to Personal Portfolio Tracker API."

const checkTimeout = 2 * time.Second

// CheckFunc は依存先（DB、Redisなど）の疎通を確認します。
type CheckFunc func(ctx context.Context) error

// HealthHandler は /healthz と /api を処理します。
type HealthHandler struct {
	checks map[string]CheckFunc
}

// NewHealthHandler は名前付きの依存先チェックを持つハンドラーを生成します。
// checksがnilの場合は常に正常を返します。
func NewHealthHandler(checks map[string]CheckFunc) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
		return
	case http.MethodHead:
		c.Status(h.status(c.Request.Context(), nil))
		return
	}

	failed := map[string]string{}
	code := h.status(c.Request.Context(), failed)
	if code != http.StatusOK {
		c.JSON(code, gin.H{"status": "degraded", "checks": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// APIInfo は /api エンドポイントのウェルカムメッセージを返します。
func (h *HealthHandler) APIInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": APIWelcomeMessage})
}

func (h *HealthHandler) status(ctx context.Context, failed map[string]string) int {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	code := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			code = http.StatusServiceUnavailable
			if failed != nil {
				failed[name] = err.Error()
			}
		}
	}
	return code
}
