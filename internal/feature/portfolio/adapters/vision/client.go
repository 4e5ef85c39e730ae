// Package vision はGoogle Cloud Vision APIのOCRを使用したポジション抽出クライアントを提供します。
package vision

import (
	"context"
	"fmt"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"

	"portfolio_backend/internal/feature/portfolio/domain"
	"portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/portfolio/usecase"
)

// annotator はBatchAnnotateImages呼び出しを抽象化します。テストで差し替えます。
type annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
}

// OCRExtractor はGoogle Cloud Vision APIで画像内の文字を読み取り、ポジションを抽出します。
type OCRExtractor struct {
	client annotator
	closer func() error
}

// OCRExtractorがPositionExtractorを実装していることをコンパイル時に検証します。
var _ usecase.PositionExtractor = (*OCRExtractor)(nil)

// NewOCRExtractor はADCを使用してOCRExtractorの新しいインスタンスを生成します。
func NewOCRExtractor(ctx context.Context) (*OCRExtractor, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &OCRExtractor{client: client, closer: client.Close}, nil
}

// Close はVision APIクライアントを解放します。
func (v *OCRExtractor) Close() error {
	if v.closer == nil {
		return nil
	}
	return v.closer()
}

// ExtractPositions は画像バイト列の文字を認識し、銘柄と株数の行を抽出します。
func (v *OCRExtractor) ExtractPositions(ctx context.Context, image []byte, mimeType string) ([]entity.ExtractedPosition, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: vision API request failed: %v", domain.ErrExtractionFailed, err)
	}

	if len(resp.Responses) == 0 {
		return nil, domain.ErrNoPositionsExtracted
	}

	if resp.Responses[0].Error != nil {
		return nil, fmt.Errorf("%w: vision API error: %s", domain.ErrExtractionFailed, resp.Responses[0].Error.Message)
	}

	text := ""
	if fa := resp.Responses[0].FullTextAnnotation; fa != nil {
		text = fa.Text
	}
	positions := ParseText(text)
	if len(positions) == 0 {
		return nil, domain.ErrNoPositionsExtracted
	}
	return positions, nil
}
