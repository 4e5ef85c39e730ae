package dto

// ExtractedPositionResponse は抽出された1銘柄分のDTOです。
type ExtractedPositionResponse struct {
	Symbol string  `json:"symbol"`
	Shares float64 `json:"shares"`
}

// UploadResponse は画像取り込みのレスポンスDTOです。
type UploadResponse struct {
	Message   string                      `json:"message"`
	Tag       string                      `json:"tag"`
	Positions []ExtractedPositionResponse `json:"positions"`
	Image     string                      `json:"image,omitempty"`
}

// MessageResponse はメッセージのみのレスポンスDTOです。
type MessageResponse struct {
	Message string `json:"message"`
}

// ChatResponse はチャットのレスポンスDTOです。
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse はエラーレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
