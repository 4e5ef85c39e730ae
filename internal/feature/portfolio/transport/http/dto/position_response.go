package dto

// PositionResponse は評価額付きポジション1行のレスポンスDTOです。
type PositionResponse struct {
	Symbol        string   `json:"symbol"`                 // 表示用の銘柄コード
	FullName      string   `json:"full_name,omitempty"`    // 正式名称
	Tag           string   `json:"tag"`                    // 最初に現れたタグ
	Tags          []string `json:"tags,omitempty"`         // 集約されたタグ
	Shares        float64  `json:"shares"`                 // 株数
	LastUpdated   string   `json:"last_updated,omitempty"` // 最終更新日時（RFC3339）
	LastPrice     *float64 `json:"last_price"`             // 保存済みの最終価格
	LastPriceTime *string  `json:"last_price_time"`        // 最終価格の取得日時（RFC3339）
	Price         float64  `json:"price"`                  // 評価に使用した価格
	Value         float64  `json:"value"`                  // 評価額
}

// PositionsResponse はポジション一覧のレスポンスDTOです。
type PositionsResponse struct {
	Positions     []PositionResponse `json:"positions"`
	TotalValue    float64            `json:"total_value"`
	PositionCount int                `json:"position_count"`
}
