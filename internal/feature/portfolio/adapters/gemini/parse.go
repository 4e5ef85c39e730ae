package gemini

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"portfolio_backend/internal/feature/portfolio/domain"
	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

type rawPosition struct {
	Symbol string `json:"symbol"`
	Shares any    `json:"shares"`
}

// ParsePositions decodes a model answer into positions. Markdown code fences are stripped
// and shares given as strings such as "1,250.5" are coerced to numbers.
func ParsePositions(text string) ([]entity.ExtractedPosition, error) {
	body := stripCodeFence(text)
	if body == "" {
		return nil, domain.ErrNoPositionsExtracted
	}

	var raw []rawPosition
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed model output: %v", domain.ErrExtractionFailed, err)
	}

	out := make([]entity.ExtractedPosition, 0, len(raw))
	for _, r := range raw {
		symbol := strings.TrimSpace(r.Symbol)
		if symbol == "" {
			continue
		}
		shares, err := coerceShares(r.Shares)
		if err != nil {
			return nil, fmt.Errorf("%w: shares of %s: %v", domain.ErrExtractionFailed, symbol, err)
		}
		out = append(out, entity.ExtractedPosition{Symbol: symbol, Shares: shares})
	}
	if len(out) == 0 {
		return nil, domain.ErrNoPositionsExtracted
	}
	return out, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func coerceShares(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(x), ",", ""), 64)
	case nil:
		return 0, fmt.Errorf("missing")
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
