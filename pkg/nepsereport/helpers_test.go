package nepsereport

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ledgerHeader = []string{"Symbol", "position", "Buy price", "Sell price", "Total holding"}

func ledgerTable(rows ...[]string) Table {
	return Table{Name: "ledger", Header: ledgerHeader, Rows: rows}
}

func priceTable(rows ...[]string) Table {
	return Table{Name: "prices", Header: []string{"S.N.", "Symbol", "Last Updated Price"}, Rows: rows}
}

func sectorTable(rows ...[]string) Table {
	return Table{Name: "sectors", Header: []string{"Symbol", "Sector"}, Rows: rows}
}

func mustEnrich(t *testing.T, ledger, prices, sectors Table) []EnrichedTransaction {
	t.Helper()
	l, err := ParseLedger(ledger)
	require.NoError(t, err)
	p, err := ParsePrices(prices, nil)
	require.NoError(t, err)
	s, err := ParseSectors(sectors)
	require.NoError(t, err)
	return Reconcile(l, p, s)
}

func assertAmount(t *testing.T, want string, got NullAmount, msgAndArgs ...interface{}) {
	t.Helper()
	if !assert.True(t, got.Valid, msgAndArgs...) {
		return
	}
	assert.True(t, decimal.RequireFromString(want).Equal(got.Value), "want %s, got %s", want, got.Value)
}

func assertMissing(t *testing.T, got NullAmount, msgAndArgs ...interface{}) {
	t.Helper()
	assert.False(t, got.Valid, msgAndArgs...)
}

func findSymbol(t *testing.T, rows SymbolSummary, sym Symbol) SymbolRow {
	t.Helper()
	for _, r := range rows {
		if r.Symbol == sym {
			return r
		}
	}
	t.Fatalf("symbol %s not in summary", sym)
	return SymbolRow{}
}

func findSector(t *testing.T, rows SectorSummary, sector string) SectorRow {
	t.Helper()
	for _, r := range rows {
		if r.Sector == sector {
			return r
		}
	}
	t.Fatalf("sector %s not in summary", sector)
	return SectorRow{}
}
