// Package entity はportfolioフィーチャーのドメインモデルを定義します。
package entity

import "time"

// Holding は台帳に保存される1行（銘柄×タグ）の保有ポジションです。
type Holding struct {
	Symbol      string    // スクリーンショットから読み取った銘柄コード（正規化前）
	Tag         string    // 口座・証券会社などのラベル
	Shares      float64   // 保有株数（小数可）
	LastUpdated time.Time // 最後に書き込まれた時刻
}

// PriceRecord は正規化済み銘柄ごとの最終取得価格です。
type PriceRecord struct {
	Symbol        string     // 正規化済み銘柄コード
	LastPrice     *float64   // 未取得の場合はnil
	LastPriceTime *time.Time // 未取得の場合はnil
}

// ExtractedPosition は画像から抽出された1銘柄分のポジションです。
type ExtractedPosition struct {
	Symbol string  `json:"symbol"`
	Shares float64 `json:"shares"`
}
