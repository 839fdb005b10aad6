package nepsereport

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// DisplayTable is a summary rendered to strings, ready for a renderer.
// A blank cell means the value is unknown, never zero.
type DisplayTable struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// FormatInteger rounds half to even and inserts thousands separators.
func FormatInteger(d decimal.Decimal) string {
	return humanize.Comma(d.RoundBank(0).IntPart())
}

// FormatPercent renders a fraction as a percentage with two decimals.
func FormatPercent(fraction decimal.Decimal) string {
	return fraction.Shift(2).StringFixedBank(2) + "%"
}

func integerCell(n NullAmount) string {
	if !n.Valid {
		return ""
	}
	return FormatInteger(n.Value)
}

func percentCell(n NullAmount) string {
	if !n.Valid {
		return ""
	}
	return FormatPercent(n.Value)
}

func withCurrency(heading, currency string) string {
	if currency == "" {
		return heading
	}
	return fmt.Sprintf("%s (%s)", heading, currency)
}

// FormatSymbolSummary renders the per-symbol open position table.
func FormatSymbolSummary(rows SymbolSummary, currency string) DisplayTable {
	t := DisplayTable{
		Title: "Holdings by symbol",
		Columns: []string{
			"SN", "Symbol", "Total Kitta",
			withCurrency("Current Price", currency),
			withCurrency("Avg Buy Price", currency),
			withCurrency("Investment", currency),
			withCurrency("Market Value", currency),
			withCurrency("P/L", currency),
			"P/L %", "Sector",
		},
		Rows: make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(r.SN),
			r.Symbol.String(),
			integerCell(r.Quantity),
			integerCell(r.AvgCurrentPrice),
			integerCell(r.AvgBuyPrice),
			integerCell(r.Investment),
			integerCell(r.MarketValue),
			integerCell(r.PL),
			percentCell(r.PLPercent),
			r.Sector,
		})
	}
	return t
}

// FormatSectorSummary renders the per-sector table.
func FormatSectorSummary(rows SectorSummary, currency string) DisplayTable {
	t := DisplayTable{
		Title: "Holdings by sector",
		Columns: []string{
			"SN", "Sector", "Symbols", "Total Kitta",
			withCurrency("Investment", currency),
			withCurrency("Market Value", currency),
			withCurrency("P/L", currency),
			"P/L %", "Allocation %",
		},
		Rows: make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(r.SN),
			r.Sector,
			strconv.Itoa(r.Symbols),
			integerCell(r.Quantity),
			integerCell(r.Investment),
			integerCell(r.MarketValue),
			integerCell(r.PL),
			percentCell(r.PLPercent),
			percentCell(r.Allocation),
		})
	}
	return t
}

// FormatRealizedSummary renders booked profit per symbol.
func FormatRealizedSummary(rows RealizedSummary, currency string) DisplayTable {
	t := DisplayTable{
		Title:   "Realized profit",
		Columns: []string{"SN", "Symbol", "Trades", withCurrency("Realized Profit", currency)},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(r.SN),
			r.Symbol.String(),
			strconv.Itoa(r.Trades),
			FormatInteger(r.RealizedProfit.Decimal),
		})
	}
	return t
}
