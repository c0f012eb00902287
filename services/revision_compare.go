package services

// RevisionComparison is what the comparison screen renders: both totals, the
// deltas between them and the line-level diff.
type RevisionComparison struct {
	Current           BOQTotals    `json:"current"`
	Previous          BOQTotals    `json:"previous"`
	GrandTotalDelta   float64      `json:"grand_total_delta"`
	InternalCostDelta float64      `json:"internal_cost_delta"`
	ProfitDelta       float64      `json:"profit_delta"`
	ChangedItems      int          `json:"changed_items"`
	Diff              RevisionDiff `json:"diff"`
}

// CompareRevisions diffs current against previous and attaches rounded totals.
func CompareRevisions(current, previous BOQSnapshot) RevisionComparison {
	cur := CalcBOQTotals(current)
	prev := CalcBOQTotals(previous)
	diff := DiffRevisions(current, previous)

	return RevisionComparison{
		Current:           cur.Rounded(),
		Previous:          prev.Rounded(),
		GrandTotalDelta:   Round2(cur.GrandTotal - prev.GrandTotal),
		InternalCostDelta: Round2(cur.TotalInternalCost - prev.TotalInternalCost),
		ProfitDelta:       Round2(cur.ActualProfit - prev.ActualProfit),
		ChangedItems:      diff.ChangedItemCount(),
		Diff:              diff,
	}
}
