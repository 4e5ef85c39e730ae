// Package dto はportfolioフィーチャーのHTTPリクエスト・レスポンスDTOを定義します。
package dto

// PasteRequest は貼り付け画像取り込みのリクエストDTOです。
type PasteRequest struct {
	ImageData string `json:"image_data" binding:"required"` // Base64またはdata URL
	Tag       string `json:"tag" binding:"required"`
}

// EditRequest は手動編集のリクエストDTOです。
type EditRequest struct {
	Symbol string   `json:"symbol" binding:"required"`
	Tag    string   `json:"tag" binding:"required"`
	Shares *float64 `json:"shares" binding:"required"`
}

// ChatRequest はチャットのリクエストDTOです。
type ChatRequest struct {
	Query string `json:"query" binding:"required"`
}
