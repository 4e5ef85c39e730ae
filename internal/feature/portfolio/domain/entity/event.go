package entity

import "time"

// EventType はポートフォリオ変更イベントの種類です。
type EventType string

const (
	// EventTagReplaced は画像取り込みでタグ全体が置き換えられたことを示します。
	EventTagReplaced EventType = "tag_replaced"
	// EventPositionEdited は手動編集でポジションが更新されたことを示します。
	EventPositionEdited EventType = "position_edited"
	// EventPricesRefreshed は全銘柄の価格が再取得されたことを示します。
	EventPricesRefreshed EventType = "prices_refreshed"
)

// PortfolioEvent は外部へ通知するポートフォリオ変更イベントです。
type PortfolioEvent struct {
	Type       EventType `msgpack:"type" json:"type"`
	Tag        string    `msgpack:"tag,omitempty" json:"tag,omitempty"`
	Symbol     string    `msgpack:"symbol,omitempty" json:"symbol,omitempty"`
	Shares     float64   `msgpack:"shares,omitempty" json:"shares,omitempty"`
	Count      int       `msgpack:"count,omitempty" json:"count,omitempty"`
	OccurredAt time.Time `msgpack:"occurred_at" json:"occurred_at"`
}
