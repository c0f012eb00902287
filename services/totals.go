package services

// BOQTotals is the full set of figures derived from a snapshot.
// GrandTotalExclVAT is the headline figure; GrandTotal includes VAT.
type BOQTotals struct {
	ItemsSubtotal       float64 `json:"items_subtotal"`
	PreliminariesAmount float64 `json:"preliminaries_amount"`
	CombinedSubtotal    float64 `json:"combined_subtotal"`
	DiscountAmount      float64 `json:"discount_amount"`
	DiscountPercent     float64 `json:"discount_percentage"`
	AfterDiscount       float64 `json:"after_discount"`
	VATEnabled          bool    `json:"vat_enabled"`
	VATPercent          float64 `json:"vat_percentage"`
	VATAmount           float64 `json:"vat_amount"`
	GrandTotalExclVAT   float64 `json:"grand_total_excl_vat"`
	GrandTotal          float64 `json:"grand_total"`
	TotalInternalCost   float64 `json:"total_internal_cost"`
	ActualProfit        float64 `json:"actual_profit"`
	ProfitMarginPercent float64 `json:"profit_margin_percentage"`
}

// Rounded returns a copy with every amount rounded for display.
func (t BOQTotals) Rounded() BOQTotals {
	t.ItemsSubtotal = Round2(t.ItemsSubtotal)
	t.PreliminariesAmount = Round2(t.PreliminariesAmount)
	t.CombinedSubtotal = Round2(t.CombinedSubtotal)
	t.DiscountAmount = Round2(t.DiscountAmount)
	t.DiscountPercent = Round2(t.DiscountPercent)
	t.AfterDiscount = Round2(t.AfterDiscount)
	t.VATPercent = Round2(t.VATPercent)
	t.VATAmount = Round2(t.VATAmount)
	t.GrandTotalExclVAT = Round2(t.GrandTotalExclVAT)
	t.GrandTotal = Round2(t.GrandTotal)
	t.TotalInternalCost = Round2(t.TotalInternalCost)
	t.ActualProfit = Round2(t.ActualProfit)
	t.ProfitMarginPercent = Round2(t.ProfitMarginPercent)
	return t
}

// CalcPreliminariesInternalCost is the base plus the three add-ons taken on
// the preliminaries amount.
func CalcPreliminariesInternalCost(p *Preliminaries) float64 {
	if p == nil {
		return 0
	}
	pct := ResolvePercentages(p.MiscPercent, p.OverheadProfitPercent, p.TransportPercent)
	return p.InternalCostBase +
		PercentOf(p.Amount, pct.Misc) +
		PercentOf(p.Amount, pct.OverheadProfit) +
		PercentOf(p.Amount, pct.Transport)
}

// ResolveDiscount picks the active discount for a subtotal. A positive
// percent wins; otherwise a positive fixed amount is used as-is and the
// percent is derived from it for display.
func ResolveDiscount(subtotal, percent, amount float64) (discountAmount, discountPercent float64) {
	switch {
	case percent > 0:
		return PercentOf(subtotal, percent), percent
	case amount > 0:
		return amount, ratioPercent(amount, subtotal)
	default:
		return 0, 0
	}
}

// CalcBOQTotals derives subtotal, discount, VAT, grand totals and profit for
// a snapshot. The discount base includes preliminaries.
func CalcBOQTotals(s BOQSnapshot) BOQTotals {
	var t BOQTotals

	for _, it := range s.Items {
		c := CalcItemCosts(it)
		t.ItemsSubtotal += c.ClientCost
		t.TotalInternalCost += c.InternalCost
	}

	if s.Preliminaries != nil {
		t.PreliminariesAmount = s.Preliminaries.Amount
		t.TotalInternalCost += CalcPreliminariesInternalCost(s.Preliminaries)
	}

	t.CombinedSubtotal = t.ItemsSubtotal + t.PreliminariesAmount
	t.DiscountAmount, t.DiscountPercent = ResolveDiscount(t.CombinedSubtotal, s.DiscountPercent, s.DiscountAmount)
	t.AfterDiscount = t.CombinedSubtotal - t.DiscountAmount

	t.VATEnabled = s.VATEnabled
	if s.VATEnabled {
		t.VATPercent = s.VATPercent
		t.VATAmount = PercentOf(t.AfterDiscount, s.VATPercent)
	}

	t.GrandTotalExclVAT = t.AfterDiscount
	t.GrandTotal = t.AfterDiscount + t.VATAmount

	t.ActualProfit = t.AfterDiscount - t.TotalInternalCost
	t.ProfitMarginPercent = ratioPercent(t.ActualProfit, t.AfterDiscount)
	return t
}

// CalcAllItemCosts returns the per-item breakdown in snapshot order.
func CalcAllItemCosts(s BOQSnapshot) []ItemCosts {
	out := make([]ItemCosts, 0, len(s.Items))
	for _, it := range s.Items {
		out = append(out, CalcItemCosts(it))
	}
	return out
}
