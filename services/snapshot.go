// Package services holds the BOQ costing engine (line costs, snapshot totals,
// revision diffs) and the boundary code around it: snapshot normalization,
// currency formatting, catalog import, LPO and vendor email builders, and the
// client for the external document backend.
package services

import "time"

// Fallback percentages applied when a line does not carry its own value.
const (
	DefaultMiscPercent           = 10.0
	DefaultOverheadProfitPercent = 25.0
	DefaultTransportPercent      = 5.0
)

// MaterialLine is a raw material consumed by a sub-item.
type MaterialLine struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit,omitempty"`
	UnitPrice float64 `json:"unit_price"`
}

// TotalPrice is quantity × unit price.
func (m MaterialLine) TotalPrice() float64 {
	return m.Quantity * m.UnitPrice
}

// LabourLine is a labour allocation on a sub-item.
type LabourLine struct {
	Role        string  `json:"role"`
	Hours       float64 `json:"hours"`
	RatePerHour float64 `json:"rate_per_hour"`
}

// TotalCost is hours × rate per hour.
func (l LabourLine) TotalCost() float64 {
	return l.Hours * l.RatePerHour
}

// SubItem is a unit of work under an Item. Nil percentages mean "not set"
// and resolve to the Default* constants.
type SubItem struct {
	Name                  string         `json:"name"`
	Scope                 string         `json:"scope,omitempty"`
	Size                  string         `json:"size,omitempty"`
	Location              string         `json:"location,omitempty"`
	Brand                 string         `json:"brand,omitempty"`
	Unit                  string         `json:"unit,omitempty"`
	Quantity              float64        `json:"quantity"`
	Rate                  float64        `json:"rate"`
	Materials             []MaterialLine `json:"materials,omitempty"`
	Labour                []LabourLine   `json:"labour,omitempty"`
	MiscPercent           *float64       `json:"misc_percentage,omitempty"`
	OverheadProfitPercent *float64       `json:"overhead_profit_percentage,omitempty"`
	TransportPercent      *float64       `json:"transport_percentage,omitempty"`
}

// Item is a top-level BOQ entry. Current records carry SubItems; legacy
// records carry Materials/Labour directly with item-level percentages.
type Item struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	Quantity    float64   `json:"quantity"`
	Rate        float64   `json:"rate"`
	SubItems    []SubItem `json:"sub_items,omitempty"`

	// Legacy form.
	Materials           []MaterialLine `json:"materials,omitempty"`
	Labour              []LabourLine   `json:"labour,omitempty"`
	OverheadPercent     *float64       `json:"overhead_percentage,omitempty"`
	ProfitMarginPercent *float64       `json:"profit_margin_percentage,omitempty"`
	ItemDiscountPercent *float64       `json:"discount_percentage,omitempty"`
	ItemVATPercent      *float64       `json:"vat_percentage,omitempty"`
}

// IsLegacy reports whether the item predates sub-items.
func (it Item) IsLegacy() bool {
	return len(it.SubItems) == 0
}

// PreliminaryClause is one entry of the preliminaries checklist.
type PreliminaryClause struct {
	Description string `json:"description"`
	Selected    bool   `json:"selected"`
}

// Preliminaries is the lump-sum line added to the subtotal before discount.
type Preliminaries struct {
	Amount                float64             `json:"amount"`
	MiscPercent           *float64            `json:"misc_percentage,omitempty"`
	OverheadProfitPercent *float64            `json:"overhead_profit_percentage,omitempty"`
	TransportPercent      *float64            `json:"transport_percentage,omitempty"`
	InternalCostBase      float64             `json:"internal_cost_base"`
	Clauses               []PreliminaryClause `json:"items,omitempty"`
}

// TermsClause is a selectable terms & conditions line.
type TermsClause struct {
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

// BOQSnapshot is one revision of a BOQ. VersionNumber 0 is the original.
type BOQSnapshot struct {
	VersionNumber   int            `json:"version_number" validate:"gte=0"`
	CreatedAt       time.Time      `json:"created_at"`
	Items           []Item         `json:"items"`
	Preliminaries   *Preliminaries `json:"preliminaries,omitempty"`
	DiscountPercent float64        `json:"discount_percentage" validate:"gte=0,lte=100"`
	DiscountAmount  float64        `json:"discount_amount" validate:"gte=0"`
	VATEnabled      bool           `json:"vat_enabled"`
	VATPercent      float64        `json:"vat_percentage" validate:"gte=0,lte=100"`
	TermsConditions []TermsClause  `json:"terms_conditions,omitempty"`
}

// SetVATEnabled flips the VAT toggle. Disabling zeroes the percent as well;
// enabling with no percent restores defaultPercent.
func (s *BOQSnapshot) SetVATEnabled(enabled bool, defaultPercent float64) {
	s.VATEnabled = enabled
	if !enabled {
		s.VATPercent = 0
		return
	}
	if s.VATPercent <= 0 {
		s.VATPercent = defaultPercent
	}
}

// SelectedTerms returns the text of every selected clause, in order.
func (s BOQSnapshot) SelectedTerms() []string {
	var out []string
	for _, c := range s.TermsConditions {
		if c.Selected {
			out = append(out, c.Text)
		}
	}
	return out
}

// percentOr dereferences p, falling back to def when p is nil.
func percentOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Float returns a pointer to v, for building snapshots in code.
func Float(v float64) *float64 {
	return &v
}
