// Package symbols resolves ticker aliases to canonical, display and provider spellings.
package symbols

import (
	"regexp"
	"strings"
)

var (
	trailingDigits = regexp.MustCompile(`\d+$`)
	optionSuffix   = regexp.MustCompile(`(?i)(\d+|CALL|PUT)$`)
)

// Normalizer answers alias lookups against static tables. It is safe for concurrent use
// because the tables are never mutated after construction.
type Normalizer struct {
	groups   map[string]Group
	aliases  map[string]string // upper-cased alias -> canonical
	mappings map[string]map[string]string
}

// NewNormalizer builds a Normalizer over the given alias groups and provider tables.
func NewNormalizer(groups map[string]Group, mappings map[string]map[string]string) *Normalizer {
	aliases := make(map[string]string)
	for canonical, g := range groups {
		for _, a := range g.Aliases {
			aliases[strings.ToUpper(a)] = canonical
		}
	}
	return &Normalizer{groups: groups, aliases: aliases, mappings: mappings}
}

// Default returns a Normalizer over DefaultGroups and DefaultProviderMappings.
func Default() *Normalizer {
	return NewNormalizer(DefaultGroups, DefaultProviderMappings)
}

// Normalize returns the canonical spelling of symbol. Unknown symbols are their own canonical form.
func (n *Normalizer) Normalize(symbol string) string {
	if c, ok := n.aliases[strings.ToUpper(symbol)]; ok {
		return c
	}
	return symbol
}

// Display returns the human-facing spelling of symbol.
func (n *Normalizer) Display(symbol string) string {
	c := n.Normalize(symbol)
	if g, ok := n.groups[c]; ok && g.Display != "" {
		return g.Display
	}
	return c
}

// FullName returns the configured company name, or the canonical symbol.
func (n *Normalizer) FullName(symbol string) string {
	c := n.Normalize(symbol)
	if g, ok := n.groups[c]; ok && g.FullName != "" {
		return g.FullName
	}
	return c
}

// ProviderSymbol returns the spelling provider expects for symbol. The lookup is keyed by
// the raw input, not the canonical form.
func (n *Normalizer) ProviderSymbol(symbol, provider string) string {
	table, ok := n.mappings[provider]
	if !ok {
		return symbol
	}
	if s, ok := table[symbol]; ok {
		return s
	}
	return symbol
}

// IsOption reports whether symbol looks like a derivative contract: a trailing digit
// sequence or a trailing CALL/PUT.
func IsOption(symbol string) bool {
	return optionSuffix.MatchString(symbol)
}

// EndsInDigits is the narrower heuristic used by the holdings view filter.
func EndsInDigits(symbol string) bool {
	return trailingDigits.MatchString(symbol)
}
