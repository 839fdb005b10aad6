package nepsereport

import "strings"

// Symbol is a normalized security identifier. All joins between the
// ledger, the price snapshot and the sector map are keyed on it.
type Symbol string

// NormalizeSymbol trims surrounding whitespace and upper-cases raw.
// Every other character is kept, so distinct tickers stay distinct.
func NormalizeSymbol(raw string) Symbol {
	return Symbol(strings.ToUpper(strings.TrimSpace(raw)))
}

func (s Symbol) String() string {
	return string(s)
}

// IsZero reports whether the symbol is blank.
func (s Symbol) IsZero() bool {
	return s == ""
}
