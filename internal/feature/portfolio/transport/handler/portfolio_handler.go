// Package handler はportfolioフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/feature/portfolio/domain"
	"portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/portfolio/transport/http/dto"
)

// PortfolioUsecase はポートフォリオ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PortfolioUsecase interface {
	ExtractAndStore(ctx context.Context, image []byte, mimeType, tag string) (*entity.ExtractionResult, error)
	GetPositions(ctx context.Context, q entity.PositionQuery) (*entity.PortfolioView, error)
	EditPosition(ctx context.Context, symbol, tag string, shares float64) error
	Chat(ctx context.Context, query string) (string, error)
}

// PortfolioHandler はポートフォリオのHTTPリクエストを処理します。
type PortfolioHandler struct {
	uc PortfolioUsecase
}

// NewPortfolioHandler はPortfolioHandlerの新しいインスタンスを生成します。
func NewPortfolioHandler(uc PortfolioUsecase) *PortfolioHandler {
	return &PortfolioHandler{uc: uc}
}

// Upload はスクリーンショットをアップロードしてポジションを抽出・保存します。
// POST /update も同じハンドラーを使用します。
//
// エンドポイント: POST /upload
// Content-Type: multipart/form-data
// フィールド: image（画像ファイル）, tag（口座などのラベル）
func (h *PortfolioHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		slog.Warn("画像ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "image file is required"})
		return
	}
	tag := c.PostForm("tag")

	data, err := readFormFile(file)
	if err != nil {
		slog.Error("画像データの読み取りに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to read image"})
		return
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	h.extractAndRespond(c, data, mimeType, tag)
}

// Paste は貼り付けられたBase64画像からポジションを抽出・保存します。
//
// エンドポイント: POST /paste
// Content-Type: application/json
func (h *PortfolioHandler) Paste(c *gin.Context) {
	var req dto.PasteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("貼り付けリクエストのバリデーションに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "image_data and tag are required"})
		return
	}

	data, mimeType, err := decodeImageData(req.ImageData)
	if err != nil {
		slog.Warn("画像データのデコードに失敗", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: fmt.Sprintf("invalid image data: %v", err)})
		return
	}

	h.extractAndRespond(c, data, mimeType, req.Tag)
}

func (h *PortfolioHandler) extractAndRespond(c *gin.Context, data []byte, mimeType, tag string) {
	res, err := h.uc.ExtractAndStore(c.Request.Context(), data, mimeType, tag)
	if err != nil {
		slog.Error("ポジションの取り込みに失敗", "error", err, "tag", tag)
		c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
		return
	}

	positions := make([]dto.ExtractedPositionResponse, 0, len(res.Positions))
	for _, p := range res.Positions {
		positions = append(positions, dto.ExtractedPositionResponse{Symbol: p.Symbol, Shares: p.Shares})
	}
	c.JSON(http.StatusOK, dto.UploadResponse{
		Message:   fmt.Sprintf("Successfully extracted %d positions for tag '%s'", len(positions), res.Tag),
		Tag:       res.Tag,
		Positions: positions,
		Image:     res.ImageName,
	})
}

// GetPositions は評価額付きのポジション一覧を返します。
//
// エンドポイント例:
// GET /positions?include=ira&exclude=old&group_by=true&hide_options=true&refresh=false
func (h *PortfolioHandler) GetPositions(c *gin.Context) {
	q := entity.PositionQuery{
		Include: queryList(c, "include"),
		Exclude: queryList(c, "exclude"),
	}
	for name, dst := range map[string]*bool{"group_by": &q.GroupBy, "hide_options": &q.HideOptions, "refresh": &q.Refresh} {
		v, err := queryBool(c, name)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: fmt.Sprintf("%s must be a boolean", name)})
			return
		}
		*dst = v
	}

	view, err := h.uc.GetPositions(c.Request.Context(), q)
	if err != nil {
		slog.Error("ポジション一覧の取得に失敗", "error", err)
		c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.PositionResponse, 0, len(view.Positions))
	for _, p := range view.Positions {
		out = append(out, toPositionResponse(p))
	}
	c.JSON(http.StatusOK, dto.PositionsResponse{
		Positions:     out,
		TotalValue:    view.TotalValue,
		PositionCount: view.PositionCount,
	})
}

// EditPosition はポジションの株数を手動で更新します。
//
// エンドポイント: PATCH /edit
// Content-Type: application/json
func (h *PortfolioHandler) EditPosition(c *gin.Context) {
	var req dto.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("編集リクエストのバリデーションに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "symbol, tag and shares are required"})
		return
	}

	if err := h.uc.EditPosition(c.Request.Context(), req.Symbol, req.Tag, *req.Shares); err != nil {
		slog.Error("ポジションの編集に失敗", "error", err, "symbol", req.Symbol, "tag", req.Tag)
		c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Message: fmt.Sprintf("Position updated: %s (%s) - %s shares", req.Symbol, req.Tag, strconv.FormatFloat(*req.Shares, 'f', -1, 64)),
	})
}

// Chat はポートフォリオについての質問に回答します。
//
// エンドポイント: POST /chat
// Content-Type: application/json
func (h *PortfolioHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("チャットリクエストのバリデーションに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "query is required"})
		return
	}

	answer, err := h.uc.Chat(c.Request.Context(), req.Query)
	if err != nil {
		slog.Error("チャットに失敗", "error", err)
		c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ChatResponse{Response: answer})
}

// statusFor はドメインエラーをHTTPステータスに変換します。
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidTag),
		errors.Is(err, domain.ErrInvalidShares),
		errors.Is(err, domain.ErrInvalidSymbol),
		errors.Is(err, domain.ErrInvalidImage),
		errors.Is(err, domain.ErrEmptyQuery),
		errors.Is(err, domain.ErrNoPositionsExtracted):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrExtractionFailed),
		errors.Is(err, domain.ErrAnalysisFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func toPositionResponse(p entity.Position) dto.PositionResponse {
	r := dto.PositionResponse{
		Symbol:    p.Symbol,
		FullName:  p.FullName,
		Tag:       p.Tag,
		Tags:      p.Tags,
		Shares:    p.Shares,
		LastPrice: p.LastPrice,
		Price:     p.Price,
		Value:     p.Value,
	}
	if !p.LastUpdated.IsZero() {
		r.LastUpdated = p.LastUpdated.Format(time.RFC3339)
	}
	if p.LastPriceTime != nil {
		s := p.LastPriceTime.Format(time.RFC3339)
		r.LastPriceTime = &s
	}
	return r
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()
	return io.ReadAll(f)
}

// decodeImageData はBase64文字列またはdata URLをデコードします。
func decodeImageData(s string) ([]byte, string, error) {
	mimeType := ""
	if header, payload, ok := strings.Cut(s, ","); ok {
		if rest, found := strings.CutPrefix(header, "data:"); found {
			mimeType, _, _ = strings.Cut(rest, ";")
		}
		s = payload
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", errors.New("empty image")
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}

// queryList は繰り返し指定とカンマ区切りの両方を受け付けます。
func queryList(c *gin.Context, name string) []string {
	var out []string
	for _, v := range c.QueryArray(name) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func queryBool(c *gin.Context, name string) (bool, error) {
	v := c.Query(name)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
