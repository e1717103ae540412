package portfolio

import "strings"

// symbolOverrides maps known irregular broker symbols straight to their
// market-data symbols, bypassing the rule chain entirely.
var symbolOverrides = map[string]string{
	"BRK_B_US_EQ": "BRK-B",  // dual-class US ticker rendered with an underscore
	"PRXl_EQ":     "PRX.AS", // Amsterdam listing that the trailing-l rule would mis-map to London
	"AIRd_EQ":     "AIR.DE", // XETRA listing with a lowercase exchange marker
}

// NormalizeTicker converts a broker ticker to the market-data provider's
// symbol format. The rules apply in order: strip a trailing _EQ suffix,
// rewrite a trailing lowercase 'l' to ".L" (London listing shorthand),
// strip a trailing _US, and collapse a trailing "1.L" artifact to ".L".
func NormalizeTicker(ticker string) string {
	if symbol, ok := symbolOverrides[ticker]; ok {
		return symbol
	}

	symbol := strings.TrimSuffix(ticker, "_EQ")

	if strings.HasSuffix(symbol, "l") {
		symbol = strings.TrimSuffix(symbol, "l") + ".L"
	}

	symbol = strings.TrimSuffix(symbol, "_US")

	if strings.HasSuffix(symbol, "1.L") {
		symbol = strings.TrimSuffix(symbol, "1.L") + ".L"
	}

	return symbol
}
