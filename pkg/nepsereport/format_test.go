package nepsereport

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatInteger(t *testing.T) {
	tests := map[string]string{
		"0":          "0",
		"999.4":      "999",
		"1000":       "1,000",
		"2.5":        "2",
		"3.5":        "4",
		"1234567.5":  "1,234,568",
		"-1234.6":    "-1,235",
		"133.333333": "133",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatInteger(decimal.RequireFromString(in)), in)
	}
}

func TestFormatPercent(t *testing.T) {
	tests := map[string]string{
		"0.2":      "20.00%",
		"0":        "0.00%",
		"-0.05":    "-5.00%",
		"0.123456": "12.35%",
		"1":        "100.00%",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatPercent(decimal.RequireFromString(in)), in)
	}
}

func TestFormatBlankForMissing(t *testing.T) {
	assert.Equal(t, "", integerCell(NullAmount{}))
	assert.Equal(t, "", percentCell(NullAmount{}))
	assert.Equal(t, "0", integerCell(KnownInt(0)))
	assert.Equal(t, "0.00%", percentCell(KnownInt(0)))
}

func TestFormatHeadingsCarryCurrency(t *testing.T) {
	table := FormatRealizedSummary(RealizedSummary{{SN: 1, Symbol: "ABC", RealizedProfit: NewAmountFromInt(12345), Trades: 2}}, "NPR")
	assert.Equal(t, []string{"SN", "Symbol", "Trades", "Realized Profit (NPR)"}, table.Columns)
	assert.Equal(t, [][]string{{"1", "ABC", "2", "12,345"}}, table.Rows)

	bare := FormatSectorSummary(nil, "")
	assert.Contains(t, bare.Columns, "Investment")
	assert.Empty(t, bare.Rows)
}
