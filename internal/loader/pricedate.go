package loader

import (
	"regexp"
	"strings"

	"nepsereport/pkg/nepsereport"
)

// UnknownPriceDate is reported when no date can be found.
const UnknownPriceDate = "Unknown"

var reISODate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

var dateColumns = []string{"Business Date", "Date", "As of"}

// PriceDate finds the trading date a snapshot belongs to: a date column
// in the first data row, then a date in the second cell, then a
// YYYY-MM-DD in the file name.
func PriceDate(t nepsereport.Table, filename string) string {
	if len(t.Rows) > 0 {
		first := t.Rows[0]
		if _, i, ok := t.FirstOf(dateColumns...); ok && i < len(first) {
			if v := strings.TrimSpace(first[i]); usableDate(v) {
				return v
			}
		}
		if len(first) > 1 {
			if v := strings.TrimSpace(first[1]); usableDate(v) && reISODate.MatchString(v) {
				return v
			}
		}
	}
	if d := reISODate.FindString(filename); d != "" {
		return d
	}
	return UnknownPriceDate
}

func usableDate(v string) bool {
	switch strings.ToLower(v) {
	case "", "nan", "none", "nat":
		return false
	}
	return true
}
