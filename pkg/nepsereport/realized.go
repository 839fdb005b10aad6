package nepsereport

import "sort"

// RealizedRow is the booked profit of one symbol's closed positions.
type RealizedRow struct {
	SN             int    `json:"sn"`
	Symbol         Symbol `json:"symbol"`
	RealizedProfit Amount `json:"realized_profit"`
	Trades         int    `json:"trades"`
}

type RealizedSummary []RealizedRow

// Total sums the realized profit of every row.
func (s RealizedSummary) Total() Amount {
	var total Amount
	for _, r := range s {
		total = Amount{total.Add(r.RealizedProfit.Decimal)}
	}
	return total
}

// realizable reports whether a closed row carries every field the profit
// needs. Incomplete rows are dropped, never zero-filled.
func realizable(row EnrichedTransaction) bool {
	return !row.Symbol.IsZero() && row.SellPrice.Valid && row.BuyPrice.Valid && row.Quantity.Valid
}

// AggregateClosed sums (sell - buy) * quantity per symbol over complete
// closed rows. Rows come back by profit descending, ties by symbol.
func AggregateClosed(closed []EnrichedTransaction) RealizedSummary {
	complete := make([]EnrichedTransaction, 0, len(closed))
	for _, row := range closed {
		if realizable(row) {
			complete = append(complete, row)
		}
	}

	groups := Fold(complete,
		func(r EnrichedTransaction) Symbol { return r.Symbol },
		func(s Symbol) RealizedRow { return RealizedRow{Symbol: s} },
		func(acc RealizedRow, r EnrichedTransaction) RealizedRow {
			profit := r.SellPrice.Value.Sub(r.BuyPrice.Value).Mul(r.Quantity.Value)
			acc.RealizedProfit = Amount{acc.RealizedProfit.Add(profit)}
			acc.Trades++
			return acc
		},
	)
	out := make(RealizedSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Acc)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].RealizedProfit.Cmp(out[j].RealizedProfit.Decimal); c != 0 {
			return c > 0
		}
		return out[i].Symbol < out[j].Symbol
	})
	for i := range out {
		out[i].SN = i + 1
	}
	return out
}
