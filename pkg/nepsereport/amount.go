package nepsereport

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount wraps decimal.Decimal for monetary values.
// JSON marshaling outputs a float64 number, while internal arithmetic
// uses precise decimal operations.
type Amount struct {
	decimal.Decimal
}

// MarshalJSON outputs as a JSON number (not a string).
func (a Amount) MarshalJSON() ([]byte, error) {
	f, _ := a.Round(4).Float64()
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

// NewAmount creates an Amount from a float64.
func NewAmount(f float64) Amount {
	return Amount{decimal.NewFromFloat(f)}
}

// NewAmountFromInt creates an Amount from an int64.
func NewAmountFromInt(i int64) Amount {
	return Amount{decimal.NewFromInt(i)}
}

// NullAmount is a decimal that may be missing. A missing value is never
// read as zero: products and differences involving it stay missing.
type NullAmount struct {
	Value decimal.Decimal
	Valid bool
}

// Known returns a present NullAmount.
func Known(d decimal.Decimal) NullAmount {
	return NullAmount{Value: d, Valid: true}
}

// KnownInt returns a present NullAmount holding i.
func KnownInt(i int64) NullAmount {
	return Known(decimal.NewFromInt(i))
}

// Mul returns n*m, missing if either side is missing.
func (n NullAmount) Mul(m NullAmount) NullAmount {
	if !n.Valid || !m.Valid {
		return NullAmount{}
	}
	return Known(n.Value.Mul(m.Value))
}

// Sub returns n-m, missing if either side is missing.
func (n NullAmount) Sub(m NullAmount) NullAmount {
	if !n.Valid || !m.Valid {
		return NullAmount{}
	}
	return Known(n.Value.Sub(m.Value))
}

// Div returns n/m. The result is missing when either side is missing or
// when m is zero.
func (n NullAmount) Div(m NullAmount) NullAmount {
	if !n.Valid || !m.Valid || m.Value.IsZero() {
		return NullAmount{}
	}
	return Known(n.Value.Div(m.Value))
}

// Plus adds m to a running sum. Missing terms are skipped; the sum stays
// missing until at least one present term was added.
func (n NullAmount) Plus(m NullAmount) NullAmount {
	switch {
	case !m.Valid:
		return n
	case !n.Valid:
		return m
	default:
		return Known(n.Value.Add(m.Value))
	}
}

// IsPositive reports whether n is present and strictly positive.
func (n NullAmount) IsPositive() bool {
	return n.Valid && n.Value.IsPositive()
}

// IsZero reports whether n is present and zero.
func (n NullAmount) IsZero() bool {
	return n.Valid && n.Value.IsZero()
}

// Or returns the value, or fallback when missing.
func (n NullAmount) Or(fallback decimal.Decimal) decimal.Decimal {
	if !n.Valid {
		return fallback
	}
	return n.Value
}

// String returns "" for a missing value.
func (n NullAmount) String() string {
	if !n.Valid {
		return ""
	}
	return n.Value.String()
}

// MarshalJSON outputs null for a missing value and a number otherwise.
func (n NullAmount) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return Amount{n.Value}.MarshalJSON()
}

// UnmarshalJSON reads null as missing.
func (n *NullAmount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullAmount{}
		return nil
	}
	var a Amount
	if err := a.UnmarshalJSON(data); err != nil {
		return err
	}
	*n = Known(a.Decimal)
	return nil
}

var (
	reCurrencyTag = regexp.MustCompile(`(?i)^(rs\.?|npr|₨)`)

	numericSeparators = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "\t", "", "'", "")

	blankMarkers = map[string]struct{}{
		"":     {},
		"-":    {},
		"nan":  {},
		"none": {},
		"null": {},
		"n/a":  {},
	}
)

// sanitizeNumeric strips thousands separators, whitespace, a leading
// currency tag and the trailing "/-" used in hand-written amounts.
func sanitizeNumeric(raw string) string {
	s := numericSeparators.Replace(strings.TrimSpace(raw))
	s = reCurrencyTag.ReplaceAllString(s, "")
	return strings.TrimSuffix(s, "/-")
}

// ParseAmount parses a numeric cell. Blank cells are missing and ok;
// text that still fails to parse after sanitization is missing and not ok.
func ParseAmount(raw string) (value NullAmount, ok bool) {
	s := sanitizeNumeric(raw)
	if _, blank := blankMarkers[strings.ToLower(s)]; blank {
		return NullAmount{}, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return NullAmount{}, false
	}
	return Known(d), true
}
