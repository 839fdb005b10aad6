package nepsereport

// Partition splits reconciled rows by position state.
type Partition struct {
	Open         []EnrichedTransaction
	Closed       []EnrichedTransaction
	Unclassified []EnrichedTransaction
}

// PartitionPositions classifies every row by its marker. Rows with an
// unrecognized marker land in Unclassified and in neither aggregate.
func PartitionPositions(rows []EnrichedTransaction) Partition {
	var p Partition
	for _, row := range rows {
		switch row.Position() {
		case PositionOpen:
			p.Open = append(p.Open, row)
		case PositionClosed:
			p.Closed = append(p.Closed, row)
		default:
			p.Unclassified = append(p.Unclassified, row)
		}
	}
	return p
}

// UnclassifiedMarkers counts the distinct raw markers in Unclassified.
func (p Partition) UnclassifiedMarkers() map[string]int {
	counts := map[string]int{}
	for _, row := range p.Unclassified {
		counts[row.Marker]++
	}
	return counts
}
