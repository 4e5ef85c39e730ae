// Package domain はportfolioフィーチャーのドメインエラーを定義します。
package domain

import "errors"

var (
	// ErrNoPositionsExtracted は画像から1件もポジションを抽出できなかったことを示します。
	ErrNoPositionsExtracted = errors.New("could not extract any positions from the image")
	// ErrExtractionFailed は抽出サービスの呼び出しまたは応答の解析に失敗したことを示します。
	ErrExtractionFailed = errors.New("position extraction failed")
	// ErrAnalysisFailed はチャット分析サービスの呼び出しに失敗したことを示します。
	ErrAnalysisFailed = errors.New("portfolio analysis failed")
	// ErrDataCorruption は保存データの数値・日時が解析できないことを示します。
	ErrDataCorruption = errors.New("stored data is corrupted")
	// ErrInvalidTag はタグが空であることを示します。
	ErrInvalidTag = errors.New("tag is required")
	// ErrInvalidShares は株数が有限の数値でないことを示します。
	ErrInvalidShares = errors.New("shares must be a finite number")
	// ErrInvalidSymbol は銘柄コードが空であることを示します。
	ErrInvalidSymbol = errors.New("symbol is required")
	// ErrInvalidImage は画像データが空・大きすぎる・デコードできないことを示します。
	ErrInvalidImage = errors.New("invalid image data")
	// ErrEmptyQuery はチャットの質問が空であることを示します。
	ErrEmptyQuery = errors.New("query is required")
)
