package nepsereport

import (
	"fmt"
	"sort"
)

// SymbolRow summarizes the open lots of one symbol. Ratios are fractions:
// a PLPercent of 0.2 reads as 20%.
type SymbolRow struct {
	SN              int        `json:"sn"`
	Symbol          Symbol     `json:"symbol"`
	Quantity        NullAmount `json:"total_kitta"`
	AvgCurrentPrice NullAmount `json:"current_price"`
	AvgBuyPrice     NullAmount `json:"avg_buy_price"`
	Investment      NullAmount `json:"investment"`
	MarketValue     NullAmount `json:"market_value"`
	PL              NullAmount `json:"pl"`
	PLPercent       NullAmount `json:"pl_percent"`
	Sector          string     `json:"sector"`
	Lots            int        `json:"lots"`
	// ExcludedLots counts lots without a defined investment. They stay out
	// of quantity, market value and P/L so every ratio shares one basis.
	ExcludedLots    int        `json:"excluded_lots,omitempty"`
	MissingPrice    bool       `json:"missing_price,omitempty"`
}

// SectorRow aggregates the symbol rows of one sector.
type SectorRow struct {
	SN          int        `json:"sn"`
	Sector      string     `json:"sector"`
	Label       string     `json:"label"`
	Symbols     int        `json:"symbols"`
	Quantity    NullAmount `json:"total_kitta"`
	Investment  NullAmount `json:"investment"`
	MarketValue NullAmount `json:"market_value"`
	PL          NullAmount `json:"pl"`
	PLPercent   NullAmount `json:"pl_percent"`
	Allocation  NullAmount `json:"allocation"`
	// Unpriced counts member symbols with a known investment but no
	// market value. Any such member leaves market value and P/L missing.
	Unpriced    int        `json:"unpriced,omitempty"`
}

type (
	SymbolSummary []SymbolRow
	SectorSummary []SectorRow
)

// Investment sums the investment column, skipping missing cells.
func (s SymbolSummary) Investment() NullAmount {
	var total NullAmount
	for _, r := range s {
		total = total.Plus(r.Investment)
	}
	return total
}

// Investment sums the investment column, skipping missing cells.
func (s SectorSummary) Investment() NullAmount {
	var total NullAmount
	for _, r := range s {
		total = total.Plus(r.Investment)
	}
	return total
}

// MarketValue sums the market value column. It is missing when any sector
// holding an investment has no market value.
func (s SectorSummary) MarketValue() NullAmount {
	var total NullAmount
	for _, r := range s {
		if r.Investment.Valid && !r.MarketValue.Valid {
			return NullAmount{}
		}
		total = total.Plus(r.MarketValue)
	}
	return total
}

// position accumulates the open lots of one symbol.
type position struct {
	quantity     NullAmount
	investment   NullAmount
	marketValue  NullAmount
	sector       *string
	lots         int
	excluded     int
	missingPrice bool
}

// add folds one lot in. Only lots with a defined investment count towards
// quantity and market value.
func (p position) add(row EnrichedTransaction) position {
	if p.sector == nil && row.Sector != nil {
		p.sector = row.Sector
	}
	p.lots++
	investment := row.BuyPrice.Mul(row.Quantity)
	if !investment.Valid {
		p.excluded++
		return p
	}
	p.quantity = p.quantity.Plus(row.Quantity)
	p.investment = p.investment.Plus(investment)
	if !row.LastPrice.Valid {
		p.missingPrice = true
	}
	p.marketValue = p.marketValue.Plus(row.LastPrice.Mul(row.Quantity))
	return p
}

// value returns the market value of the counted lots, missing when any of
// them has no price.
func (p position) value() NullAmount {
	if p.missingPrice {
		return NullAmount{}
	}
	return p.marketValue
}

// exposure accumulates the symbol rows of one sector.
type exposure struct {
	symbols     int
	quantity    NullAmount
	investment  NullAmount
	marketValue NullAmount
	unpriced    int
}

func (e exposure) add(row SymbolRow) exposure {
	e.symbols++
	e.quantity = e.quantity.Plus(row.Quantity)
	e.investment = e.investment.Plus(row.Investment)
	e.marketValue = e.marketValue.Plus(row.MarketValue)
	if row.Investment.Valid && !row.MarketValue.Valid {
		e.unpriced++
	}
	return e
}

// value returns the sector market value, missing when a member with an
// investment is unpriced.
func (e exposure) value() NullAmount {
	if e.unpriced > 0 {
		return NullAmount{}
	}
	return e.marketValue
}

// AggregateOpen values open rows per symbol and per sector. Symbols with
// no sector mapping go to unknownSector ("Unknown" when empty). Rows with a
// blank symbol cannot be attributed and are skipped.
func AggregateOpen(open []EnrichedTransaction, unknownSector string) (SymbolSummary, SectorSummary) {
	if unknownSector == "" {
		unknownSector = UnknownSector
	}
	attributable := make([]EnrichedTransaction, 0, len(open))
	for _, row := range open {
		if !row.Symbol.IsZero() {
			attributable = append(attributable, row)
		}
	}

	bySymbol := Fold(attributable,
		func(r EnrichedTransaction) Symbol { return r.Symbol },
		func(Symbol) position { return position{} },
		position.add,
	)
	symbols := make(SymbolSummary, 0, len(bySymbol))
	for _, g := range bySymbol {
		p := g.Acc
		sector := unknownSector
		if p.sector != nil {
			sector = *p.sector
		}
		marketValue := p.value()
		pl := marketValue.Sub(p.investment)
		symbols = append(symbols, SymbolRow{
			Symbol:          g.Key,
			Quantity:        p.quantity,
			AvgCurrentPrice: marketValue.Div(p.quantity),
			AvgBuyPrice:     p.investment.Div(p.quantity),
			Investment:      p.investment,
			MarketValue:     marketValue,
			PL:              pl,
			PLPercent:       pl.Div(p.investment),
			Sector:          sector,
			Lots:            p.lots,
			ExcludedLots:    p.excluded,
			MissingPrice:    p.missingPrice,
		})
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Symbol < symbols[j].Symbol })
	for i := range symbols {
		symbols[i].SN = i + 1
	}

	bySector := Fold(symbols,
		func(r SymbolRow) string { return r.Sector },
		func(string) exposure { return exposure{} },
		exposure.add,
	)
	var total NullAmount
	for _, g := range bySector {
		total = total.Plus(g.Acc.investment)
	}
	sectors := make(SectorSummary, 0, len(bySector))
	for _, g := range bySector {
		e := g.Acc
		marketValue := e.value()
		pl := marketValue.Sub(e.investment)
		allocation := e.investment.Div(total)
		sectors = append(sectors, SectorRow{
			Sector:      g.Key,
			Label:       sectorLabel(g.Key, allocation),
			Symbols:     e.symbols,
			Quantity:    e.quantity,
			Investment:  e.investment,
			MarketValue: marketValue,
			PL:          pl,
			PLPercent:   pl.Div(e.investment),
			Allocation:  allocation,
			Unpriced:    e.unpriced,
		})
	}
	sort.Slice(sectors, func(i, j int) bool { return sectors[i].Sector < sectors[j].Sector })
	for i := range sectors {
		sectors[i].SN = i + 1
	}
	return symbols, sectors
}

func sectorLabel(sector string, allocation NullAmount) string {
	if !allocation.Valid {
		return fmt.Sprintf("%s (0.0%%)", sector)
	}
	return fmt.Sprintf("%s (%s%%)", sector, allocation.Value.Shift(2).StringFixedBank(1))
}
