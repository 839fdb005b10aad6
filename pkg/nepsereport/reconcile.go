package nepsereport

// EnrichedTransaction is a ledger row joined with its price quote and
// sector. LastPrice is missing and Sector nil when the join found nothing.
type EnrichedTransaction struct {
	Transaction
	LastPrice NullAmount `json:"last_price"`
	Sector    *string    `json:"sector"`
}

// Reconcile left-joins every ledger row to the price book and the sector
// map on its normalized symbol. Unmatched rows are kept.
func Reconcile(ledger Ledger, prices PriceBook, sectors SectorMap) []EnrichedTransaction {
	out := make([]EnrichedTransaction, 0, len(ledger.Transactions))
	for _, tx := range ledger.Transactions {
		out = append(out, EnrichedTransaction{
			Transaction: tx,
			LastPrice:   prices.Lookup(tx.Symbol),
			Sector:      sectors.Lookup(tx.Symbol),
		})
	}
	return out
}
