package symbols

// Group describes a set of equivalent ticker spellings.
type Group struct {
	Aliases  []string
	Display  string
	FullName string
}

// Provider names understood by ProviderSymbol. They match the PRICE_PROVIDER setting.
const (
	ProviderYahoo        = "yahoo"
	ProviderAlphaVantage = "alpha_vantage"
	ProviderTwelveData   = "twelve_data"
)

// DefaultGroups maps a canonical symbol to its alias group.
var DefaultGroups = map[string]Group{
	// Berkshire Hathaway Class B
	"BRK.B": {
		Aliases:  []string{"BRK-B", "BRK.B", "BRK B", "BRKB"},
		Display:  "BRK.B",
		FullName: "Berkshire Hathaway Inc. Class B",
	},
}

// DefaultProviderMappings maps provider name -> input spelling -> provider spelling.
var DefaultProviderMappings = map[string]map[string]string{
	ProviderYahoo: {
		"BRKB":   "BRK-B",
		"BRK B":  "BRK-B",
		"BRK.B":  "BRK-B",
		"BRK.BR": "BRK-BR", // Brookfield Asset Management
		"BRK.A":  "BRK-A",
	},
	ProviderAlphaVantage: {
		"BRK.B":  "BRK.B",
		"BRK.BR": "BRK.BR",
		"BRK.A":  "BRK.A",
	},
	ProviderTwelveData: {
		"BRK.B":  "BRK.B",
		"BRK.BR": "BRK.BR",
		"BRK.A":  "BRK.A",
	},
}
