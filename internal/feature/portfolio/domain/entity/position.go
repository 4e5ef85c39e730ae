package entity

import "time"

// Position は保有ポジションに価格を結合した表示用の行です。永続化はされません。
type Position struct {
	Symbol        string
	FullName      string // 別名テーブルに登録された正式名称（未登録の場合は空）
	Tag           string
	Tags          []string
	Shares        float64
	LastUpdated   time.Time
	LastPrice     *float64
	LastPriceTime *time.Time
	Price         float64
	Value         float64
}

// FromHolding はHoldingからPositionを生成します。Tagsは空のままです。
func FromHolding(h Holding) Position {
	return Position{
		Symbol:      h.Symbol,
		Tag:         h.Tag,
		Shares:      h.Shares,
		LastUpdated: h.LastUpdated,
	}
}

// PositionQuery はポジション一覧取得時のフィルタ・集計条件です。
type PositionQuery struct {
	Include     []string // 含めるタグ（空の場合は全件）
	Exclude     []string // 除外するタグ
	GroupBy     bool     // 銘柄ごとに集計するか
	HideOptions bool     // 末尾が数字の銘柄（オプション）を隠すか
	Refresh     bool     // 保存済み価格を使わず再取得するか
}

// PortfolioView はポジション一覧とその合計評価額です。
type PortfolioView struct {
	Positions     []Position
	TotalValue    float64
	PositionCount int
}

// ExtractionResult は画像取り込み結果です。
type ExtractionResult struct {
	Tag       string
	Positions []ExtractedPosition
	ImageName string
}
