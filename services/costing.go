package services

// Percentages are the resolved add-on rates for a line, all 0–100.
type Percentages struct {
	Misc           float64 `json:"misc"`
	OverheadProfit float64 `json:"overhead_profit"`
	Transport      float64 `json:"transport"`
}

// ResolvePercentages substitutes the fallback defaults for unset values.
// An explicit zero is kept.
func ResolvePercentages(misc, overheadProfit, transport *float64) Percentages {
	return Percentages{
		Misc:           percentOr(misc, DefaultMiscPercent),
		OverheadProfit: percentOr(overheadProfit, DefaultOverheadProfitPercent),
		Transport:      percentOr(transport, DefaultTransportPercent),
	}
}

// LineInput is what the aggregator needs from a sub-item or a legacy item.
type LineInput struct {
	Quantity    float64
	Rate        float64
	Materials   []MaterialLine
	Labour      []LabourLine
	Percentages Percentages
}

// LineCosts is the cost breakdown of one line.
type LineCosts struct {
	ClientAmount    float64 `json:"client_amount"`
	MaterialCost    float64 `json:"material_cost"`
	LabourCost      float64 `json:"labour_cost"`
	MiscAmount      float64 `json:"misc_amount"`
	OverheadAmount  float64 `json:"overhead_amount"`
	TransportAmount float64 `json:"transport_amount"`
	InternalCost    float64 `json:"internal_cost"`
	ActualProfit    float64 `json:"actual_profit"`
	PlannedProfit   float64 `json:"planned_profit"`
}

// CalcMaterialCost sums the material line totals.
func CalcMaterialCost(lines []MaterialLine) float64 {
	var sum float64
	for _, m := range lines {
		sum += m.TotalPrice()
	}
	return sum
}

// CalcLabourCost sums the labour line totals.
func CalcLabourCost(lines []LabourLine) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.TotalCost()
	}
	return sum
}

// CalcLineCosts rolls material, labour and percentage add-ons into a line's
// internal cost and profit. Add-ons are taken on the client amount, never on
// the internal cost. When quantity × rate is zero and the line has materials
// or labour, the client amount falls back to their sum.
func CalcLineCosts(in LineInput) LineCosts {
	materialCost := CalcMaterialCost(in.Materials)
	labourCost := CalcLabourCost(in.Labour)

	clientAmount := in.Quantity * in.Rate
	if clientAmount == 0 && (len(in.Materials) > 0 || len(in.Labour) > 0) {
		clientAmount = materialCost + labourCost
	}

	misc := PercentOf(clientAmount, in.Percentages.Misc)
	overhead := PercentOf(clientAmount, in.Percentages.OverheadProfit)
	transport := PercentOf(clientAmount, in.Percentages.Transport)
	internal := materialCost + labourCost + misc + overhead + transport

	return LineCosts{
		ClientAmount:    clientAmount,
		MaterialCost:    materialCost,
		LabourCost:      labourCost,
		MiscAmount:      misc,
		OverheadAmount:  overhead,
		TransportAmount: transport,
		InternalCost:    internal,
		ActualProfit:    clientAmount - internal,
		PlannedProfit:   overhead,
	}
}

// CalcSubItemCosts applies CalcLineCosts to a sub-item.
func CalcSubItemCosts(s SubItem) LineCosts {
	return CalcLineCosts(LineInput{
		Quantity:    s.Quantity,
		Rate:        s.Rate,
		Materials:   s.Materials,
		Labour:      s.Labour,
		Percentages: ResolvePercentages(s.MiscPercent, s.OverheadProfitPercent, s.TransportPercent),
	})
}

// legacyPercentages maps item-level overhead and profit margin onto the
// overhead/profit add-on. Misc and transport are not stored on legacy items.
func legacyPercentages(it Item) Percentages {
	p := ResolvePercentages(nil, nil, nil)
	if it.OverheadPercent != nil || it.ProfitMarginPercent != nil {
		p.OverheadProfit = percentOr(it.OverheadPercent, 0) + percentOr(it.ProfitMarginPercent, 0)
	}
	return p
}

// ItemCosts aggregates the lines of one item.
type ItemCosts struct {
	Name          string      `json:"name"`
	ClientCost    float64     `json:"client_cost"`
	InternalCost  float64     `json:"internal_cost"`
	ProjectMargin float64     `json:"project_margin"`
	Legacy        bool        `json:"legacy"`
	Lines         []LineCosts `json:"lines"`
}

// CalcItemCosts sums sub-item costs, or treats a legacy item as a single line
// priced at its own quantity × rate.
func CalcItemCosts(it Item) ItemCosts {
	out := ItemCosts{Name: it.Name, Legacy: it.IsLegacy()}

	if out.Legacy {
		line := CalcLineCosts(LineInput{
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Materials:   it.Materials,
			Labour:      it.Labour,
			Percentages: legacyPercentages(it),
		})
		out.Lines = []LineCosts{line}
	} else {
		out.Lines = make([]LineCosts, 0, len(it.SubItems))
		for _, s := range it.SubItems {
			out.Lines = append(out.Lines, CalcSubItemCosts(s))
		}
	}

	for _, l := range out.Lines {
		out.ClientCost += l.ClientAmount
		out.InternalCost += l.InternalCost
	}
	out.ProjectMargin = out.ClientCost - out.InternalCost
	return out
}
