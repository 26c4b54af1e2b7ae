package common

import "strings"

// currencyWindow bounds how far into a statement DetectCurrency looks.
// Statements put their currency indicators near the top.
const currencyWindow = 2000

// currencyPatterns is checked in order; more specific indicators first so
// "NZ$" wins over a bare "$" never matching at all.
var currencyPatterns = []struct {
	indicator string
	code      string
}{
	{"NZD", "NZD"}, {"NZ$", "NZD"}, {"$NZ", "NZD"},
	{"AUD", "AUD"}, {"AU$", "AUD"}, {"$AU", "AUD"},
	{"USD", "USD"}, {"US$", "USD"}, {"$US", "USD"},
	{"EUR", "EUR"}, {"€", "EUR"},
	{"GBP", "GBP"}, {"£", "GBP"},
	{"CAD", "CAD"}, {"CA$", "CAD"}, {"$CA", "CAD"},
	{"CNY", "CNY"}, {"¥", "CNY"}, {"RMB", "CNY"},
}

// DetectCurrency scans the leading window of a statement for a currency
// indicator and returns the mapped ISO code. The second return is false
// when nothing matched; the caller supplies the configured default.
func DetectCurrency(text string) (string, bool) {
	window := text
	if len(window) > currencyWindow {
		window = window[:currencyWindow]
	}
	upper := strings.ToUpper(window)

	for _, p := range currencyPatterns {
		if strings.Contains(upper, p.indicator) {
			return p.code, true
		}
	}
	return "", false
}
