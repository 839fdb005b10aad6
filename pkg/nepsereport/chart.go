package nepsereport

import "github.com/shopspring/decimal"

// AllocationSlice is one sector's share of the positive investment total.
type AllocationSlice struct {
	Sector     string `json:"sector"`
	Label      string `json:"label"`
	Investment Amount `json:"investment"`
	Share      Amount `json:"share"`
}

// AllocationSlices returns chart data for sectors with positive investment.
// It fails with ErrCodeEmptyResult when there is nothing to draw; callers
// treat that as a notice, not a failed report.
func AllocationSlices(sectors SectorSummary) ([]AllocationSlice, error) {
	total := decimal.Zero
	for _, s := range sectors {
		if s.Investment.IsPositive() {
			total = total.Add(s.Investment.Value)
		}
	}
	if !total.IsPositive() {
		return nil, NewError(ErrCodeEmptyResult, "no active investments: allocation chart skipped")
	}

	var slices []AllocationSlice
	for _, s := range sectors {
		if !s.Investment.IsPositive() {
			continue
		}
		slices = append(slices, AllocationSlice{
			Sector:     s.Sector,
			Label:      s.Label,
			Investment: Amount{s.Investment.Value},
			Share:      Amount{s.Investment.Value.Div(total)},
		})
	}
	return slices, nil
}
