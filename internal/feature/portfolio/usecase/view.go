package usecase

import (
	"slices"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/shared/symbols"
)

// FilterHoldings applies include, then exclude, then the trailing-digit option filter.
// An empty include list keeps every tag.
func FilterHoldings(positions []entity.Position, include, exclude []string, hideOptions bool) []entity.Position {
	out := make([]entity.Position, 0, len(positions))
	for _, p := range positions {
		if len(include) > 0 && !slices.Contains(include, p.Tag) {
			continue
		}
		if slices.Contains(exclude, p.Tag) {
			continue
		}
		if hideOptions && symbols.EndsInDigits(p.Symbol) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// GroupBySymbol merges rows sharing the same raw symbol. The first row keeps its tag and
// price fields; shares are summed, distinct tags collected in order, and the most recent
// LastUpdated kept.
func GroupBySymbol(positions []entity.Position) []entity.Position {
	index := make(map[string]int, len(positions))
	out := make([]entity.Position, 0, len(positions))
	for _, p := range positions {
		i, ok := index[p.Symbol]
		if !ok {
			g := p
			g.Tags = []string{p.Tag}
			index[p.Symbol] = len(out)
			out = append(out, g)
			continue
		}
		g := &out[i]
		g.Shares += p.Shares
		if !slices.Contains(g.Tags, p.Tag) {
			g.Tags = append(g.Tags, p.Tag)
		}
		if p.LastUpdated.After(g.LastUpdated) {
			g.LastUpdated = p.LastUpdated
		}
	}
	return out
}
