package nepsereport

import (
	"fmt"
	"strings"
)

// DefaultPriceColumns is the ordered allow-list of price headings used by
// the snapshot providers seen so far.
var DefaultPriceColumns = []string{
	"Last Updated Price",
	"Last Updated price",
	"LTP",
	"Last Traded Price",
	"Close Price",
}

// PriceBook is the typed price snapshot keyed by symbol.
type PriceBook struct {
	Column string                `json:"column"`
	Quotes map[Symbol]NullAmount `json:"quotes"`
	Issues []RowIssue            `json:"issues,omitempty"`
}

// Lookup returns the quote for s, missing when absent.
func (b PriceBook) Lookup(s Symbol) NullAmount {
	return b.Quotes[s]
}

// DetectPriceColumn returns the first candidate present in t.
func DetectPriceColumn(t Table, candidates []string) (string, error) {
	if len(candidates) == 0 {
		candidates = DefaultPriceColumns
	}
	name, _, ok := t.FirstOf(candidates...)
	if !ok {
		return "", NewError(ErrCodeSchema, fmt.Sprintf("%s: no recognized price column found (tried %s); found: [%s]",
			t.label(), quoteList(candidates), strings.Join(t.Columns(), ", ")))
	}
	return name, nil
}

// ParsePrices validates the snapshot schema and keeps the first valid quote
// per symbol. An unparseable price is a missing quote. Repeated symbols are
// recorded as row issues.
func ParsePrices(t Table, candidates []string) (PriceBook, error) {
	if t.Name == "" {
		t.Name = "prices"
	}
	idx, err := t.require(ColSymbol)
	if err != nil {
		return PriceBook{}, err
	}
	column, err := DetectPriceColumn(t, candidates)
	if err != nil {
		return PriceBook{}, err
	}
	priceIdx := t.Index(column)

	book := PriceBook{Column: column, Quotes: map[Symbol]NullAmount{}}
	for i, cells := range t.Rows {
		if blankRow(cells) {
			continue
		}
		sym := NormalizeSymbol(cell(cells, idx[ColSymbol]))
		if sym.IsZero() {
			continue
		}
		raw := cell(cells, priceIdx)
		price, ok := ParseAmount(raw)
		if !ok {
			book.Issues = append(book.Issues, RowIssue{Table: t.Name, Row: i + 1, Column: column, Value: raw, Reason: "not a number"})
		}
		kept, seen := book.Quotes[sym]
		if seen {
			book.Issues = append(book.Issues, RowIssue{Table: t.Name, Row: i + 1, Column: ColSymbol, Value: sym.String(),
				Reason: "repeated symbol, first valid quote kept"})
		}
		if !seen || (!kept.Valid && price.Valid) {
			book.Quotes[sym] = price
		}
	}
	return book, nil
}
