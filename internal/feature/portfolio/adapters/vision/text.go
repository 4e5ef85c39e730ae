package vision

import (
	"regexp"
	"strconv"
	"strings"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

var (
	tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}(?:[.\-][A-Z]{1,2})?$`)
	numberPattern = regexp.MustCompile(`^-?[\d,]*\.?\d+$`)
)

// ParseText reads "TICKER ... SHARES ..." rows out of OCR text. A row counts when its first
// token looks like a ticker and a later token is a number; the first such number is taken as
// the share count. A ticker alone on a line pairs with a number at the start of the next line.
func ParseText(text string) []entity.ExtractedPosition {
	lines := strings.Split(text, "\n")
	var out []entity.ExtractedPosition
	for i := 0; i < len(lines); i++ {
		fields := strings.Fields(lines[i])
		if len(fields) == 0 || !tickerPattern.MatchString(fields[0]) {
			continue
		}
		symbol := fields[0]

		if shares, ok := firstNumber(fields[1:]); ok {
			out = append(out, entity.ExtractedPosition{Symbol: symbol, Shares: shares})
			continue
		}
		if len(fields) == 1 && i+1 < len(lines) {
			next := strings.Fields(lines[i+1])
			if len(next) > 0 {
				if shares, ok := parseNumber(next[0]); ok {
					out = append(out, entity.ExtractedPosition{Symbol: symbol, Shares: shares})
					i++
				}
			}
		}
	}
	return out
}

func firstNumber(tokens []string) (float64, bool) {
	for _, t := range tokens {
		if f, ok := parseNumber(t); ok {
			return f, true
		}
	}
	return 0, false
}

func parseNumber(token string) (float64, bool) {
	if !numberPattern.MatchString(token) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
