package nepsereport

import (
	"fmt"
	"strings"
)

// Ledger column headings.
const (
	ColSymbol    = "Symbol"
	ColPosition  = "position"
	ColBuyPrice  = "Buy price"
	ColSellPrice = "Sell price"
	ColQuantity  = "Total holding"
	ColSector    = "Sector"
)

// PositionState classifies a ledger row.
type PositionState string

const (
	PositionOpen   PositionState = "open"
	PositionClosed PositionState = "closed"
	// PositionUnclassified holds rows whose marker is neither open nor
	// closed. They are reported but never aggregated.
	PositionUnclassified PositionState = "unclassified"
)

// ClassifyPosition maps a raw position marker to its state.
func ClassifyPosition(marker string) PositionState {
	switch strings.ToLower(strings.TrimSpace(marker)) {
	case "o":
		return PositionOpen
	case "c":
		return PositionClosed
	default:
		return PositionUnclassified
	}
}

// Transaction is one typed ledger row.
type Transaction struct {
	Row       int        `json:"row"`
	Symbol    Symbol     `json:"symbol"`
	Marker    string     `json:"marker"`
	BuyPrice  NullAmount `json:"buy_price"`
	SellPrice NullAmount `json:"sell_price"`
	Quantity  NullAmount `json:"quantity"`
}

// Position returns the row's state.
func (t Transaction) Position() PositionState {
	return ClassifyPosition(t.Marker)
}

// RowIssue records a cell that could not be used as-is. The row itself is
// kept; what happens to it is up to the aggregator.
type RowIssue struct {
	Table  string `json:"table"`
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (i RowIssue) String() string {
	if i.Column == "" {
		return fmt.Sprintf("%s row %d: %s", i.Table, i.Row, i.Reason)
	}
	return fmt.Sprintf("%s row %d, %s %q: %s", i.Table, i.Row, i.Column, i.Value, i.Reason)
}

// Ledger is the typed trading journal.
type Ledger struct {
	Transactions []Transaction `json:"transactions"`
	Issues       []RowIssue    `json:"issues,omitempty"`
}

// ParseLedger validates the journal schema and types every row.
func ParseLedger(t Table) (Ledger, error) {
	if t.Name == "" {
		t.Name = "ledger"
	}
	idx, err := t.require(ColSymbol, ColPosition, ColBuyPrice, ColSellPrice, ColQuantity)
	if err != nil {
		return Ledger{}, err
	}

	var ledger Ledger
	issue := func(row int, column, value, reason string) {
		ledger.Issues = append(ledger.Issues, RowIssue{Table: t.Name, Row: row, Column: column, Value: value, Reason: reason})
	}
	number := func(row int, cells []string, column string) NullAmount {
		raw := cell(cells, idx[column])
		v, ok := ParseAmount(raw)
		if !ok {
			issue(row, column, raw, "not a number")
		}
		return v
	}

	for i, cells := range t.Rows {
		if blankRow(cells) {
			continue
		}
		row := i + 1
		tx := Transaction{
			Row:       row,
			Symbol:    NormalizeSymbol(cell(cells, idx[ColSymbol])),
			Marker:    cell(cells, idx[ColPosition]),
			BuyPrice:  number(row, cells, ColBuyPrice),
			SellPrice: number(row, cells, ColSellPrice),
			Quantity:  number(row, cells, ColQuantity),
		}
		if tx.Symbol.IsZero() {
			issue(row, ColSymbol, "", "blank symbol")
		}
		if tx.Quantity.Valid && tx.Quantity.Value.IsNegative() {
			issue(row, ColQuantity, tx.Quantity.String(), "negative quantity")
			tx.Quantity = NullAmount{}
		}
		ledger.Transactions = append(ledger.Transactions, tx)
	}
	return ledger, nil
}
