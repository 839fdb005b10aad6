package nepsereport

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts Options) (*Engine, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts.Now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }
	return New(opts), &buf
}

func sampleInputs() Inputs {
	return Inputs{
		Ledger: ledgerTable(
			[]string{"nabil", "o", "500", "", "20"},
			[]string{"upper", "o", "200", "", "50"},
			[]string{"hdl", "o", "1000", "", "5"},
			[]string{"api", "c", "250", "300", "10"},
			[]string{"api", "c", "250", "", "10"},
			[]string{"nica", "p", "900", "", "3"},
		),
		Prices: priceTable(
			[]string{"1", "NABIL", "550"},
			[]string{"2", "UPPER", "180"},
		),
		Sectors: sectorTable(
			[]string{"NABIL", "Commercial Banks"},
			[]string{"UPPER", "Hydro Power"},
			[]string{"UPPER", "Hydropower"},
		),
		PriceDate: "2025-03-13",
	}
}

func TestGenerateReport(t *testing.T) {
	engine, logs := newTestEngine(t, Options{})
	report, err := engine.Generate(context.Background(), sampleInputs())
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "2025-03-13", report.PriceDate)
	assert.Equal(t, "Last Updated Price", report.PriceColumn)
	assert.Equal(t, "NPR", report.Currency)

	require.Len(t, report.Symbols, 3)
	require.Len(t, report.Sectors, 3)
	assert.Equal(t, []string{"Commercial Banks", "Hydro Power", "Unknown"},
		[]string{report.Sectors[0].Sector, report.Sectors[1].Sector, report.Sectors[2].Sector})

	assertAmount(t, "25000", report.Totals.Investment)
	// HDL holds an investment but has no quote, so the portfolio has no
	// market value.
	assertMissing(t, report.Totals.MarketValue)
	assertMissing(t, report.Totals.PL)
	assertMissing(t, report.Totals.PLPercent)
	assert.Equal(t, "500", report.Totals.Realized.String())

	assert.Equal(t, []string{"HDL"}, report.MissingPrices())
	assert.Len(t, report.Unclassified, 1)
	assert.Equal(t, map[string]int{"p": 1}, report.UnclassifiedMarkers)
	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, Symbol("UPPER"), report.Conflicts[0].Symbol)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, 5, report.Issues[0].Row)
	assert.True(t, report.HasDataQualityNotes())

	require.Len(t, report.Allocation, 3)
	assert.Empty(t, report.AllocationNotice)
	assert.Equal(t, "Commercial Banks (40.0%)", report.Sectors[0].Label)

	assert.Len(t, report.SymbolTable.Rows, 3)
	assert.Equal(t, "Investment (NPR)", report.SymbolTable.Columns[5])

	out := logs.String()
	assert.Contains(t, out, "unrecognized position marker")
	assert.Contains(t, out, "conflicting sector mapping")
	assert.Contains(t, out, "open symbols without a price quote")
	assert.Contains(t, out, "report generated")
}

func TestGenerateExcludedLots(t *testing.T) {
	engine, logs := newTestEngine(t, Options{})
	report, err := engine.Generate(context.Background(), Inputs{
		Ledger: ledgerTable(
			[]string{"abc", "o", "bad", "", "10"},
			[]string{"abc", "o", "100", "", "10"},
		),
		Prices:  priceTable([]string{"1", "ABC", "100"}),
		Sectors: sectorTable([]string{"abc", "Banking"}),
	})
	require.NoError(t, err)

	assertAmount(t, "1000", report.Totals.Investment)
	assertAmount(t, "1000", report.Totals.MarketValue)
	assertAmount(t, "0", report.Totals.PL)
	assert.Equal(t, map[string]int{"ABC": 1}, report.ExcludedLots())
	assert.True(t, report.HasDataQualityNotes())
	assert.Contains(t, logs.String(), "open lots without a defined investment left out")
}

func TestGenerateStrictSectors(t *testing.T) {
	engine, _ := newTestEngine(t, Options{StrictSectors: true})
	_, err := engine.Generate(context.Background(), sampleInputs())
	require.Error(t, err)
	assert.True(t, IsErrorCode(err, ErrCodeDataQuality))
	assert.Contains(t, err.Error(), "UPPER")
}

func TestGenerateSchemaErrors(t *testing.T) {
	engine, _ := newTestEngine(t, Options{})

	in := sampleInputs()
	in.Prices = Table{Header: []string{"Symbol", "Open"}}
	_, err := engine.Generate(context.Background(), in)
	assert.True(t, IsErrorCode(err, ErrCodeSchema))
	assert.Contains(t, err.Error(), "prices: no recognized price column found")

	in = sampleInputs()
	in.Sectors = Table{Header: []string{"Symbol", "Industry", "Notes"}}
	_, err = engine.Generate(context.Background(), in)
	assert.True(t, IsErrorCode(err, ErrCodeSchema))
}

func TestGenerateWithoutOpenPositions(t *testing.T) {
	engine, _ := newTestEngine(t, Options{Currency: "USD"})
	report, err := engine.Generate(context.Background(), Inputs{
		Ledger:  ledgerTable([]string{"abc", "c", "10", "12", "100"}),
		Prices:  priceTable(),
		Sectors: sectorTable(),
	})
	require.NoError(t, err)
	assert.Empty(t, report.Symbols)
	assert.Empty(t, report.Allocation)
	assert.Equal(t, "no active investments: allocation chart skipped", report.AllocationNotice)
	assert.Equal(t, "Unknown", report.PriceDate)
	assertMissing(t, report.Totals.Investment)
	assert.Equal(t, "Realized Profit (USD)", report.RealizedTable.Columns[3])
}

func TestGenerateCancelled(t *testing.T) {
	engine, _ := newTestEngine(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := engine.Generate(ctx, sampleInputs())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReportJSON(t *testing.T) {
	engine, _ := newTestEngine(t, Options{})
	report, err := engine.Generate(context.Background(), sampleInputs())
	require.NoError(t, err)

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	totals := decoded["totals"].(map[string]interface{})
	assert.Equal(t, 25000.0, totals["investment"])
	symbols := decoded["symbols"].([]interface{})
	hdl := symbols[0].(map[string]interface{})
	assert.Equal(t, "HDL", hdl["symbol"])
	assert.Nil(t, hdl["market_value"])
}
