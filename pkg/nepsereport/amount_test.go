package nepsereport

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		valid bool
		ok    bool
	}{
		{"100", "100", true, true},
		{" 1,234.50 ", "1234.5", true, true},
		{"Rs. 1,000/-", "1000", true, true},
		{"NPR 250", "250", true, true},
		{"-12.5", "-12.5", true, true},
		{"", "", false, true},
		{"nan", "", false, true},
		{"-", "", false, true},
		{"N/A", "", false, true},
		{"twelve", "", false, false},
		{"12abc", "", false, false},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(tt.raw)
		assert.Equal(t, tt.ok, ok, "ok for %q", tt.raw)
		assert.Equal(t, tt.valid, got.Valid, "valid for %q", tt.raw)
		if tt.valid {
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got.Value), "value for %q: %s", tt.raw, got.Value)
		}
	}
}

func TestNullAmountArithmetic(t *testing.T) {
	ten := KnownInt(10)
	var missing NullAmount

	assertAmount(t, "100", ten.Mul(ten))
	assertMissing(t, ten.Mul(missing))
	assertMissing(t, missing.Sub(ten))
	assertMissing(t, ten.Div(KnownInt(0)))
	assertMissing(t, ten.Div(missing))
	assertAmount(t, "2.5", ten.Div(KnownInt(4)))

	var sum NullAmount
	assertMissing(t, sum.Plus(missing))
	sum = sum.Plus(missing).Plus(ten).Plus(missing).Plus(ten)
	assertAmount(t, "20", sum)
}

func TestNullAmountJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A NullAmount `json:"a"`
		B NullAmount `json:"b"`
	}{A: Known(decimal.RequireFromString("1.23456")), B: NullAmount{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.2346,"b":null}`, string(data))

	var back struct {
		A NullAmount `json:"a"`
		B NullAmount `json:"b"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assertAmount(t, "1.2346", back.A)
	assertMissing(t, back.B)
}
