package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// ErrInvalidSnapshot is returned when snapshot input is not a JSON object.
var ErrInvalidSnapshot = errors.New("invalid BOQ snapshot")

// timeLayouts are the timestamp shapes seen in stored and posted snapshots.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// first returns the first key of r that is present and not null.
func first(r gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

func floatField(r gjson.Result, keys ...string) float64 {
	return first(r, keys...).Float()
}

func optFloatField(r gjson.Result, keys ...string) *float64 {
	v := first(r, keys...)
	if !v.Exists() {
		return nil
	}
	f := v.Float()
	return &f
}

func stringField(r gjson.Result, keys ...string) string {
	return first(r, keys...).String()
}

func timeField(r gjson.Result, keys ...string) time.Time {
	s := stringField(r, keys...)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// NormalizeSnapshot maps a snapshot in any of its historical JSON shapes onto
// BOQSnapshot. Field aliases are resolved here and nowhere else.
func NormalizeSnapshot(raw []byte) (BOQSnapshot, error) {
	if !gjson.ValidBytes(raw) {
		return BOQSnapshot{}, fmt.Errorf("%w: not valid JSON", ErrInvalidSnapshot)
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return BOQSnapshot{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidSnapshot)
	}
	return normalizeSnapshot(root), nil
}

func normalizeSnapshot(root gjson.Result) BOQSnapshot {
	s := BOQSnapshot{
		VersionNumber:   int(first(root, "version_number", "revision_number", "version").Int()),
		CreatedAt:       timeField(root, "created_at", "created"),
		DiscountPercent: floatField(root, "discount_percentage", "discount_percent"),
		DiscountAmount:  floatField(root, "discount_amount"),
		VATPercent:      floatField(root, "vat_percentage", "vat_percent"),
	}

	if v := first(root, "vat_enabled"); v.Exists() {
		s.VATEnabled = v.Bool()
	} else {
		s.VATEnabled = s.VATPercent > 0
	}
	if !s.VATEnabled {
		s.VATPercent = 0
	}

	for _, it := range first(root, "items", "boq_items").Array() {
		s.Items = append(s.Items, normalizeItem(it))
	}

	if p := first(root, "preliminaries"); p.IsObject() {
		s.Preliminaries = normalizePreliminaries(p)
	}

	for _, t := range first(root, "terms_conditions", "terms").Array() {
		if t.Type == gjson.String {
			s.TermsConditions = append(s.TermsConditions, TermsClause{Text: t.String(), Selected: true})
			continue
		}
		s.TermsConditions = append(s.TermsConditions, TermsClause{
			Text:     stringField(t, "text", "terms_text", "description"),
			Selected: first(t, "selected", "is_checked", "checked").Bool(),
		})
	}
	return s
}

func normalizeItem(r gjson.Result) Item {
	it := Item{
		Name:                stringField(r, "item_name", "name", "description"),
		Description:         stringField(r, "description"),
		Unit:                stringField(r, "unit"),
		Quantity:            floatField(r, "quantity", "qty"),
		Rate:                floatField(r, "rate", "unit_rate"),
		OverheadPercent:     optFloatField(r, "overhead_percentage"),
		ProfitMarginPercent: optFloatField(r, "profit_margin_percentage"),
		ItemDiscountPercent: optFloatField(r, "discount_percentage"),
		ItemVATPercent:      optFloatField(r, "vat_percentage"),
	}
	for _, s := range first(r, "sub_items").Array() {
		it.SubItems = append(it.SubItems, normalizeSubItem(s))
	}
	it.Materials = normalizeMaterials(r)
	it.Labour = normalizeLabour(r)
	return it
}

func normalizeSubItem(r gjson.Result) SubItem {
	return SubItem{
		Name:                  stringField(r, "sub_item_name", "name"),
		Scope:                 stringField(r, "scope"),
		Size:                  stringField(r, "size"),
		Location:              stringField(r, "location"),
		Brand:                 stringField(r, "brand"),
		Unit:                  stringField(r, "unit"),
		Quantity:              floatField(r, "quantity", "qty"),
		Rate:                  floatField(r, "rate", "unit_rate"),
		Materials:             normalizeMaterials(r),
		Labour:                normalizeLabour(r),
		MiscPercent:           optFloatField(r, "misc_percentage"),
		OverheadProfitPercent: optFloatField(r, "overhead_profit_percentage", "overhead_percentage"),
		TransportPercent:      optFloatField(r, "transport_percentage"),
	}
}

func normalizeMaterials(parent gjson.Result) []MaterialLine {
	var out []MaterialLine
	for _, m := range first(parent, "materials").Array() {
		line := MaterialLine{
			Name:     stringField(m, "material_name", "name"),
			Quantity: floatField(m, "quantity", "qty"),
			Unit:     stringField(m, "unit"),
		}
		if price := first(m, "unit_price", "rate"); price.Exists() {
			line.UnitPrice = price.Float()
		} else if total := floatField(m, "total_price"); total != 0 && line.Quantity != 0 {
			line.UnitPrice = total / line.Quantity
		}
		out = append(out, line)
	}
	return out
}

func normalizeLabour(parent gjson.Result) []LabourLine {
	var out []LabourLine
	for _, l := range first(parent, "labour", "labor").Array() {
		out = append(out, LabourLine{
			Role:        stringField(l, "role", "labour_role", "labor_role"),
			Hours:       floatField(l, "hours", "no_of_hours"),
			RatePerHour: floatField(l, "rate_per_hour", "rate"),
		})
	}
	return out
}

func normalizePreliminaries(r gjson.Result) *Preliminaries {
	p := &Preliminaries{
		Amount:                floatField(r, "amount", "total_amount"),
		MiscPercent:           optFloatField(r, "misc_percentage"),
		OverheadProfitPercent: optFloatField(r, "overhead_profit_percentage", "overhead_percentage"),
		TransportPercent:      optFloatField(r, "transport_percentage"),
		InternalCostBase:      floatField(r, "internal_cost_base", "internal_cost"),
	}
	for _, c := range first(r, "items", "clauses").Array() {
		p.Clauses = append(p.Clauses, PreliminaryClause{
			Description: stringField(c, "description", "text"),
			Selected:    first(c, "selected", "checked").Bool(),
		})
	}
	return p
}
