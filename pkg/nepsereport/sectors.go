package nepsereport

import "fmt"

// UnknownSector labels open positions with no sector mapping.
const UnknownSector = "Unknown"

// SectorConflict records a symbol mapped to more than one sector label.
// The first label is kept.
type SectorConflict struct {
	Symbol   Symbol `json:"symbol"`
	Kept     string `json:"kept"`
	Rejected string `json:"rejected"`
	Row      int    `json:"row"`
}

func (c SectorConflict) String() string {
	return fmt.Sprintf("%s mapped to %q and %q (row %d); using %q", c.Symbol, c.Kept, c.Rejected, c.Row, c.Kept)
}

// SectorMap is the typed sector classification keyed by symbol.
type SectorMap struct {
	Sectors   map[Symbol]string `json:"sectors"`
	Conflicts []SectorConflict  `json:"conflicts,omitempty"`
}

// Lookup returns the sector of s, nil when unmapped.
func (m SectorMap) Lookup(s Symbol) *string {
	sector, ok := m.Sectors[s]
	if !ok {
		return nil
	}
	return &sector
}

// ParseSectors validates the sector table schema. Blank labels are
// ignored, repeated identical mappings are merged and differing ones are
// recorded as conflicts.
func ParseSectors(t Table) (SectorMap, error) {
	if t.Name == "" {
		t.Name = "sectors"
	}
	idx, err := t.require(ColSymbol, ColSector)
	if err != nil {
		return SectorMap{}, err
	}

	m := SectorMap{Sectors: map[Symbol]string{}}
	for i, cells := range t.Rows {
		sym := NormalizeSymbol(cell(cells, idx[ColSymbol]))
		sector := cell(cells, idx[ColSector])
		if sym.IsZero() || sector == "" {
			continue
		}
		kept, seen := m.Sectors[sym]
		switch {
		case !seen:
			m.Sectors[sym] = sector
		case kept != sector:
			m.Conflicts = append(m.Conflicts, SectorConflict{Symbol: sym, Kept: kept, Rejected: sector, Row: i + 1})
		}
	}
	return m, nil
}
