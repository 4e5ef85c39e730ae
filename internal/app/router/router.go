package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	portfoliohandler "portfolio_backend/internal/feature/portfolio/transport/handler"
	"portfolio_backend/internal/platform/http/handler"
)

// MaxMultipartMemory bounds the in-memory part of an upload; larger files spill to disk.
const MaxMultipartMemory = 16 << 20

func NewRouter(health *handler.HealthHandler, portfolio *portfoliohandler.PortfolioHandler) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = MaxMultipartMemory

	// ブラウザのフロントエンドから呼ばれるためCORSは全許可
	r.Use(cors.Default())

	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	r.GET("/api", health.APIInfo)

	// スクリーンショットからポジションを取り込む
	r.POST("/upload", portfolio.Upload)
	r.POST("/update", portfolio.Upload)
	r.POST("/paste", portfolio.Paste)

	// ポジションの参照と編集
	r.GET("/positions", portfolio.GetPositions)
	r.PATCH("/edit", portfolio.EditPosition)

	// ポートフォリオについての質問
	r.POST("/chat", portfolio.Chat)

	return r
}
