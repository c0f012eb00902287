package services

import (
	"math"

	"github.com/shopspring/decimal"
)

// DiffTolerance is the largest numeric difference that is not a change.
const DiffTolerance = 0.01

var diffTolerance = decimal.NewFromFloat(DiffTolerance)

// numChanged reports whether two numbers differ by more than DiffTolerance.
// The difference is taken on the shortest decimal form of each value, so a
// step of exactly 0.01 is never a change whatever the magnitude.
func numChanged(a, b float64) bool {
	if !isFinite(a) || !isFinite(b) {
		return a != b && !(math.IsNaN(a) && math.IsNaN(b))
	}
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs().GreaterThan(diffTolerance)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MaterialDiff flags the changed fields of one material line.
type MaterialDiff struct {
	Name             string `json:"name"`
	IsNew            bool   `json:"is_new"`
	QuantityChanged  bool   `json:"quantity_changed"`
	UnitChanged      bool   `json:"unit_changed"`
	UnitPriceChanged bool   `json:"unit_price_changed"`
	TotalChanged     bool   `json:"total_changed"`
}

// Changed reports whether anything about the line differs.
func (d MaterialDiff) Changed() bool {
	return d.IsNew || d.QuantityChanged || d.UnitChanged || d.UnitPriceChanged || d.TotalChanged
}

// LabourDiff flags the changed fields of one labour line.
type LabourDiff struct {
	Role         string `json:"role"`
	IsNew        bool   `json:"is_new"`
	HoursChanged bool   `json:"hours_changed"`
	RateChanged  bool   `json:"rate_changed"`
	TotalChanged bool   `json:"total_changed"`
}

// Changed reports whether anything about the line differs.
func (d LabourDiff) Changed() bool {
	return d.IsNew || d.HoursChanged || d.RateChanged || d.TotalChanged
}

// SubItemDiff flags the changed fields of one sub-item and its lines.
type SubItemDiff struct {
	Name                    string         `json:"name"`
	IsNew                   bool           `json:"is_new"`
	QuantityChanged         bool           `json:"quantity_changed"`
	RateChanged             bool           `json:"rate_changed"`
	MiscPercentChanged      bool           `json:"misc_percentage_changed"`
	OverheadPercentChanged  bool           `json:"overhead_profit_percentage_changed"`
	TransportPercentChanged bool           `json:"transport_percentage_changed"`
	ClientAmountChanged     bool           `json:"client_amount_changed"`
	ScopeChanged            bool           `json:"scope_changed"`
	SizeChanged             bool           `json:"size_changed"`
	LocationChanged         bool           `json:"location_changed"`
	BrandChanged            bool           `json:"brand_changed"`
	UnitChanged             bool           `json:"unit_changed"`
	Materials               []MaterialDiff `json:"materials"`
	Labour                  []LabourDiff   `json:"labour"`
}

// PercentChanged reports whether any of the three add-on percentages moved.
func (d SubItemDiff) PercentChanged() bool {
	return d.MiscPercentChanged || d.OverheadPercentChanged || d.TransportPercentChanged
}

// Changed reports whether the sub-item or any of its lines differ.
func (d SubItemDiff) Changed() bool {
	if d.IsNew || d.QuantityChanged || d.RateChanged || d.PercentChanged() || d.ClientAmountChanged ||
		d.ScopeChanged || d.SizeChanged || d.LocationChanged || d.BrandChanged || d.UnitChanged {
		return true
	}
	for _, m := range d.Materials {
		if m.Changed() {
			return true
		}
	}
	for _, l := range d.Labour {
		if l.Changed() {
			return true
		}
	}
	return false
}

// ItemDiff flags the changed fields of one item. Legacy items report their
// direct lines in Materials/Labour.
type ItemDiff struct {
	Name                string         `json:"name"`
	IsNew               bool           `json:"is_new"`
	QuantityChanged     bool           `json:"quantity_changed"`
	RateChanged         bool           `json:"rate_changed"`
	DescriptionChanged  bool           `json:"description_changed"`
	PercentChanged      bool           `json:"percentage_changed"`
	ClientCostChanged   bool           `json:"client_cost_changed"`
	InternalCostChanged bool           `json:"internal_cost_changed"`
	SubItems            []SubItemDiff  `json:"sub_items"`
	Materials           []MaterialDiff `json:"materials,omitempty"`
	Labour              []LabourDiff   `json:"labour,omitempty"`
}

// Changed reports whether the item or anything beneath it differs.
func (d ItemDiff) Changed() bool {
	if d.IsNew || d.QuantityChanged || d.RateChanged || d.DescriptionChanged || d.PercentChanged ||
		d.ClientCostChanged || d.InternalCostChanged {
		return true
	}
	for _, s := range d.SubItems {
		if s.Changed() {
			return true
		}
	}
	for _, m := range d.Materials {
		if m.Changed() {
			return true
		}
	}
	for _, l := range d.Labour {
		if l.Changed() {
			return true
		}
	}
	return false
}

// RevisionDiff is the forward view of current against previous: every entry
// of current is reported, entries only in previous are not.
type RevisionDiff struct {
	CurrentVersion       int        `json:"current_version"`
	PreviousVersion      int        `json:"previous_version"`
	Items                []ItemDiff `json:"items"`
	DiscountChanged      bool       `json:"discount_changed"`
	VATChanged           bool       `json:"vat_changed"`
	PreliminariesChanged bool       `json:"preliminaries_changed"`
}

// ChangedItemCount counts items that are new or differ.
func (d RevisionDiff) ChangedItemCount() int {
	n := 0
	for _, it := range d.Items {
		if it.Changed() {
			n++
		}
	}
	return n
}

// nameIndex matches names between two sibling lists. The k-th occurrence of
// a name in current pairs with the k-th occurrence in previous.
type nameIndex struct {
	positions map[string][]int
	seen      map[string]int
}

func newNameIndex(names []string) *nameIndex {
	idx := &nameIndex{
		positions: make(map[string][]int, len(names)),
		seen:      make(map[string]int, len(names)),
	}
	for i, n := range names {
		idx.positions[n] = append(idx.positions[n], i)
	}
	return idx
}

// next returns the index in previous matching the next occurrence of name.
func (x *nameIndex) next(name string) (int, bool) {
	k := x.seen[name]
	x.seen[name] = k + 1
	pos := x.positions[name]
	if k >= len(pos) {
		return 0, false
	}
	return pos[k], true
}

// DiffRevisions compares current against previous by name within each parent
// scope. Numbers within DiffTolerance are equal; strings compare exactly.
func DiffRevisions(current, previous BOQSnapshot) RevisionDiff {
	out := RevisionDiff{
		CurrentVersion:  current.VersionNumber,
		PreviousVersion: previous.VersionNumber,
		Items:           make([]ItemDiff, 0, len(current.Items)),
	}

	prevNames := make([]string, len(previous.Items))
	for i, it := range previous.Items {
		prevNames[i] = it.Name
	}
	idx := newNameIndex(prevNames)

	for _, cur := range current.Items {
		if j, ok := idx.next(cur.Name); ok {
			out.Items = append(out.Items, diffItem(cur, previous.Items[j]))
		} else {
			out.Items = append(out.Items, newItemDiff(cur))
		}
	}

	curTotals := CalcBOQTotals(current)
	prevTotals := CalcBOQTotals(previous)
	out.DiscountChanged = numChanged(curTotals.DiscountAmount, prevTotals.DiscountAmount) ||
		numChanged(current.DiscountPercent, previous.DiscountPercent) ||
		numChanged(current.DiscountAmount, previous.DiscountAmount)
	out.VATChanged = current.VATEnabled != previous.VATEnabled ||
		numChanged(curTotals.VATPercent, prevTotals.VATPercent)
	out.PreliminariesChanged = preliminariesChanged(current.Preliminaries, previous.Preliminaries)
	return out
}

func diffItem(cur, prev Item) ItemDiff {
	curCosts := CalcItemCosts(cur)
	prevCosts := CalcItemCosts(prev)

	d := ItemDiff{
		Name:                cur.Name,
		QuantityChanged:     numChanged(cur.Quantity, prev.Quantity),
		RateChanged:         numChanged(cur.Rate, prev.Rate),
		DescriptionChanged:  cur.Description != prev.Description,
		ClientCostChanged:   numChanged(curCosts.ClientCost, prevCosts.ClientCost),
		InternalCostChanged: numChanged(curCosts.InternalCost, prevCosts.InternalCost),
	}

	if cur.IsLegacy() {
		cp, pp := legacyPercentages(cur), legacyPercentages(prev)
		d.PercentChanged = percentagesChanged(cp, pp) ||
			numChanged(percentOr(cur.ItemDiscountPercent, 0), percentOr(prev.ItemDiscountPercent, 0)) ||
			numChanged(percentOr(cur.ItemVATPercent, 0), percentOr(prev.ItemVATPercent, 0))
		d.Materials = diffMaterials(cur.Materials, prev.Materials)
		d.Labour = diffLabour(cur.Labour, prev.Labour)
		return d
	}

	prevNames := make([]string, len(prev.SubItems))
	for i, s := range prev.SubItems {
		prevNames[i] = s.Name
	}
	idx := newNameIndex(prevNames)

	d.SubItems = make([]SubItemDiff, 0, len(cur.SubItems))
	for _, s := range cur.SubItems {
		if j, ok := idx.next(s.Name); ok {
			d.SubItems = append(d.SubItems, diffSubItem(s, prev.SubItems[j]))
		} else {
			d.SubItems = append(d.SubItems, newSubItemDiff(s))
		}
	}
	return d
}

func diffSubItem(cur, prev SubItem) SubItemDiff {
	cp := ResolvePercentages(cur.MiscPercent, cur.OverheadProfitPercent, cur.TransportPercent)
	pp := ResolvePercentages(prev.MiscPercent, prev.OverheadProfitPercent, prev.TransportPercent)

	return SubItemDiff{
		Name:                    cur.Name,
		QuantityChanged:         numChanged(cur.Quantity, prev.Quantity),
		RateChanged:             numChanged(cur.Rate, prev.Rate),
		MiscPercentChanged:      numChanged(cp.Misc, pp.Misc),
		OverheadPercentChanged:  numChanged(cp.OverheadProfit, pp.OverheadProfit),
		TransportPercentChanged: numChanged(cp.Transport, pp.Transport),
		ClientAmountChanged:     numChanged(CalcSubItemCosts(cur).ClientAmount, CalcSubItemCosts(prev).ClientAmount),
		ScopeChanged:            cur.Scope != prev.Scope,
		SizeChanged:             cur.Size != prev.Size,
		LocationChanged:         cur.Location != prev.Location,
		BrandChanged:            cur.Brand != prev.Brand,
		UnitChanged:             cur.Unit != prev.Unit,
		Materials:               diffMaterials(cur.Materials, prev.Materials),
		Labour:                  diffLabour(cur.Labour, prev.Labour),
	}
}

func diffMaterials(cur, prev []MaterialLine) []MaterialDiff {
	prevNames := make([]string, len(prev))
	for i, m := range prev {
		prevNames[i] = m.Name
	}
	idx := newNameIndex(prevNames)

	out := make([]MaterialDiff, 0, len(cur))
	for _, m := range cur {
		j, ok := idx.next(m.Name)
		if !ok {
			out = append(out, newMaterialDiff(m))
			continue
		}
		p := prev[j]
		out = append(out, MaterialDiff{
			Name:             m.Name,
			QuantityChanged:  numChanged(m.Quantity, p.Quantity),
			UnitChanged:      m.Unit != p.Unit,
			UnitPriceChanged: numChanged(m.UnitPrice, p.UnitPrice),
			TotalChanged:     numChanged(m.TotalPrice(), p.TotalPrice()),
		})
	}
	return out
}

func diffLabour(cur, prev []LabourLine) []LabourDiff {
	prevRoles := make([]string, len(prev))
	for i, l := range prev {
		prevRoles[i] = l.Role
	}
	idx := newNameIndex(prevRoles)

	out := make([]LabourDiff, 0, len(cur))
	for _, l := range cur {
		j, ok := idx.next(l.Role)
		if !ok {
			out = append(out, newLabourDiff(l))
			continue
		}
		p := prev[j]
		out = append(out, LabourDiff{
			Role:         l.Role,
			HoursChanged: numChanged(l.Hours, p.Hours),
			RateChanged:  numChanged(l.RatePerHour, p.RatePerHour),
			TotalChanged: numChanged(l.TotalCost(), p.TotalCost()),
		})
	}
	return out
}

func percentagesChanged(a, b Percentages) bool {
	return numChanged(a.Misc, b.Misc) ||
		numChanged(a.OverheadProfit, b.OverheadProfit) ||
		numChanged(a.Transport, b.Transport)
}

func preliminariesChanged(cur, prev *Preliminaries) bool {
	if cur == nil && prev == nil {
		return false
	}
	if cur == nil || prev == nil {
		return true
	}
	cp := ResolvePercentages(cur.MiscPercent, cur.OverheadProfitPercent, cur.TransportPercent)
	pp := ResolvePercentages(prev.MiscPercent, prev.OverheadProfitPercent, prev.TransportPercent)
	return numChanged(cur.Amount, prev.Amount) ||
		numChanged(cur.InternalCostBase, prev.InternalCostBase) ||
		percentagesChanged(cp, pp)
}

// New entries have every flag set so callers can highlight them uniformly.

func newItemDiff(it Item) ItemDiff {
	d := ItemDiff{
		Name:                it.Name,
		IsNew:               true,
		QuantityChanged:     true,
		RateChanged:         true,
		DescriptionChanged:  true,
		PercentChanged:      true,
		ClientCostChanged:   true,
		InternalCostChanged: true,
	}
	if it.IsLegacy() {
		d.Materials = diffMaterials(it.Materials, nil)
		d.Labour = diffLabour(it.Labour, nil)
		return d
	}
	d.SubItems = make([]SubItemDiff, 0, len(it.SubItems))
	for _, s := range it.SubItems {
		d.SubItems = append(d.SubItems, newSubItemDiff(s))
	}
	return d
}

func newSubItemDiff(s SubItem) SubItemDiff {
	return SubItemDiff{
		Name:                    s.Name,
		IsNew:                   true,
		QuantityChanged:         true,
		RateChanged:             true,
		MiscPercentChanged:      true,
		OverheadPercentChanged:  true,
		TransportPercentChanged: true,
		ClientAmountChanged:     true,
		ScopeChanged:            true,
		SizeChanged:             true,
		LocationChanged:         true,
		BrandChanged:            true,
		UnitChanged:             true,
		Materials:               diffMaterials(s.Materials, nil),
		Labour:                  diffLabour(s.Labour, nil),
	}
}

func newMaterialDiff(m MaterialLine) MaterialDiff {
	return MaterialDiff{
		Name:             m.Name,
		IsNew:            true,
		QuantityChanged:  true,
		UnitChanged:      true,
		UnitPriceChanged: true,
		TotalChanged:     true,
	}
}

func newLabourDiff(l LabourLine) LabourDiff {
	return LabourDiff{
		Role:         l.Role,
		IsNew:        true,
		HoursChanged: true,
		RateChanged:  true,
		TotalChanged: true,
	}
}
