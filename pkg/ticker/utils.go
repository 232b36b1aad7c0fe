package ticker

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

// camelToTitle turns a camelCase identifier into a human-readable label:
// "netIncomeFromContinuingOps" becomes "Net Income From Continuing Ops".
// A cases.Caser is not safe for concurrent use, so one is built per call.
func camelToTitle(s string) string {
	return cases.Title(language.English).String(camelBoundary.ReplaceAllString(s, "$1 $2"))
}

// normalizeSymbol converts a symbol to the canonical upper-case form.
func normalizeSymbol(symbol string) string {
	return strings.TrimSpace(strings.ToUpper(symbol))
}

// validateSymbol rejects symbols the upstream could never resolve.
func validateSymbol(symbol string) error {
	normalized := normalizeSymbol(symbol)
	if normalized == "" {
		return &ValidationError{Symbol: symbol, Reason: "symbol cannot be empty"}
	}
	if len(normalized) > 10 {
		return &ValidationError{Symbol: symbol, Reason: "symbol too long"}
	}
	return nil
}
