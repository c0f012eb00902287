package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/tidwall/gjson"
)

// Company is the issuing company shown on the LPO letterhead.
type Company struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	TRN     string `json:"trn"`
}

// BOQInfo is the header data of a BOQ record.
type BOQInfo struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	ProjectName     string `json:"project_name"`
	ClientName      string `json:"client_name"`
	ReferenceNumber string `json:"reference_number"`
}

// LPOVendor holds vendor details for the LPO.
type LPOVendor struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	TRN           string `json:"trn"`
	Address       string `json:"address"`
}

// LPOCustomization is what a technical director edits on top of a BOQ
// revision before the LPO is issued.
type LPOCustomization struct {
	ID             string   `json:"id,omitempty"`
	VendorID       string   `json:"vendor,omitempty"`
	LPONumber      string   `json:"lpo_number" validate:"max=60"`
	QuotationRef   string   `json:"quotation_ref" validate:"max=100"`
	DeliveryTerms  string   `json:"delivery_terms" validate:"max=2000"`
	PaymentTerms   string   `json:"payment_terms" validate:"max=2000"`
	WarrantyTerms  string   `json:"warranty_terms" validate:"max=2000"`
	Notes          string   `json:"notes" validate:"max=4000"`
	VATEnabled     bool     `json:"vat_enabled"`
	VATPercent     float64  `json:"vat_percent" validate:"gte=0,lte=100"`
	SelectedTerms  []string `json:"selected_terms"`
	SignatoryName  string   `json:"signatory_name" validate:"max=100"`
	SignatoryTitle string   `json:"signatory_title" validate:"max=100"`
}

// NormalizeLPOCustomization decodes a customization posted in any of its
// historical shapes. Delivery terms arrive as delivery_terms or
// completion_terms; VAT percent as vat_percent or vat_percentage.
func NormalizeLPOCustomization(raw []byte) (LPOCustomization, error) {
	if !gjson.ValidBytes(raw) {
		return LPOCustomization{}, fmt.Errorf("%w: not valid JSON", ErrInvalidSnapshot)
	}
	r := gjson.ParseBytes(raw)
	if !r.IsObject() {
		return LPOCustomization{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidSnapshot)
	}

	c := LPOCustomization{
		VendorID:       stringField(r, "vendor", "vendor_id"),
		LPONumber:      stringField(r, "lpo_number"),
		QuotationRef:   stringField(r, "quotation_ref", "quotation_reference"),
		DeliveryTerms:  stringField(r, "delivery_terms", "completion_terms"),
		PaymentTerms:   stringField(r, "payment_terms"),
		WarrantyTerms:  stringField(r, "warranty_terms"),
		Notes:          stringField(r, "notes", "custom_notes"),
		VATPercent:     floatField(r, "vat_percent", "vat_percentage"),
		SignatoryName:  stringField(r, "signatory_name"),
		SignatoryTitle: stringField(r, "signatory_title"),
	}
	if v := first(r, "vat_enabled", "include_vat"); v.Exists() {
		c.VATEnabled = v.Bool()
	} else {
		c.VATEnabled = c.VATPercent > 0
	}
	for _, t := range first(r, "selected_terms", "terms").Array() {
		if text := t.String(); text != "" {
			c.SelectedTerms = append(c.SelectedTerms, text)
		}
	}
	return c, nil
}

func customizationFromRecord(r *core.Record) LPOCustomization {
	c := LPOCustomization{
		ID:             r.Id,
		VendorID:       r.GetString("vendor"),
		LPONumber:      r.GetString("lpo_number"),
		QuotationRef:   r.GetString("quotation_ref"),
		DeliveryTerms:  r.GetString("delivery_terms"),
		PaymentTerms:   r.GetString("payment_terms"),
		WarrantyTerms:  r.GetString("warranty_terms"),
		Notes:          r.GetString("notes"),
		VATEnabled:     r.GetBool("vat_enabled"),
		VATPercent:     r.GetFloat("vat_percent"),
		SignatoryName:  r.GetString("signatory_name"),
		SignatoryTitle: r.GetString("signatory_title"),
	}
	if err := r.UnmarshalJSONField("selected_terms", &c.SelectedTerms); err != nil {
		log.Printf("lpo: could not decode selected_terms of %s: %v", r.Id, err)
	}
	return c
}

func findCustomizationRecord(app core.App, boqID, vendorID string) (*core.Record, error) {
	records, err := app.FindAllRecords("lpo_customizations", dbx.HashExp{
		"boq":    boqID,
		"vendor": vendorID,
	})
	if err != nil {
		return nil, fmt.Errorf("query LPO customization of BOQ %s: %w", boqID, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// LoadLPOCustomization returns the saved customization of a BOQ for a vendor
// ("" for none). found is false when nothing has been saved yet.
func LoadLPOCustomization(app *pocketbase.PocketBase, boqID, vendorID string) (c LPOCustomization, found bool, err error) {
	record, err := findCustomizationRecord(app, boqID, vendorID)
	if err != nil || record == nil {
		return LPOCustomization{}, false, err
	}
	return customizationFromRecord(record), true, nil
}

// SaveLPOCustomization creates or replaces the customization of a BOQ for
// c.VendorID.
func SaveLPOCustomization(app *pocketbase.PocketBase, boqID string, c LPOCustomization) (LPOCustomization, error) {
	if _, err := app.FindRecordById("boqs", boqID); err != nil {
		return LPOCustomization{}, fmt.Errorf("BOQ %s not found: %w", boqID, err)
	}

	record, err := findCustomizationRecord(app, boqID, c.VendorID)
	if err != nil {
		return LPOCustomization{}, err
	}
	if record == nil {
		col, err := app.FindCollectionByNameOrId("lpo_customizations")
		if err != nil {
			return LPOCustomization{}, fmt.Errorf("could not find lpo_customizations collection: %w", err)
		}
		record = core.NewRecord(col)
		record.Set("boq", boqID)
		record.Set("vendor", c.VendorID)
	}

	terms := c.SelectedTerms
	if terms == nil {
		terms = []string{}
	}
	termsJSON, err := json.Marshal(terms)
	if err != nil {
		return LPOCustomization{}, fmt.Errorf("encode selected terms: %w", err)
	}

	record.Set("lpo_number", c.LPONumber)
	record.Set("quotation_ref", c.QuotationRef)
	record.Set("delivery_terms", c.DeliveryTerms)
	record.Set("payment_terms", c.PaymentTerms)
	record.Set("warranty_terms", c.WarrantyTerms)
	record.Set("notes", c.Notes)
	record.Set("vat_enabled", c.VATEnabled)
	record.Set("vat_percent", c.VATPercent)
	record.Set("selected_terms", types.JSONRaw(termsJSON))
	record.Set("signatory_name", c.SignatoryName)
	record.Set("signatory_title", c.SignatoryTitle)
	if err := app.Save(record); err != nil {
		return LPOCustomization{}, fmt.Errorf("save LPO customization: %w", err)
	}
	return customizationFromRecord(record), nil
}

// LoadBOQInfo reads the header fields of a BOQ.
func LoadBOQInfo(app *pocketbase.PocketBase, boqID string) (BOQInfo, error) {
	r, err := app.FindRecordById("boqs", boqID)
	if err != nil {
		return BOQInfo{}, fmt.Errorf("BOQ not found: %w", err)
	}
	return BOQInfo{
		ID:              r.Id,
		Title:           r.GetString("title"),
		ProjectName:     r.GetString("project_name"),
		ClientName:      r.GetString("client_name"),
		ReferenceNumber: r.GetString("reference_number"),
	}, nil
}

// LoadVendor reads a vendor record.
func LoadVendor(app *pocketbase.PocketBase, vendorID string) (LPOVendor, error) {
	v, err := app.FindRecordById("vendors", vendorID)
	if err != nil {
		return LPOVendor{}, fmt.Errorf("vendor not found: %w", err)
	}
	return LPOVendor{
		ID:            v.Id,
		Name:          v.GetString("name"),
		Email:         v.GetString("email"),
		ContactPerson: v.GetString("contact_person"),
		Phone:         v.GetString("phone"),
		TRN:           v.GetString("trn"),
		Address:       v.GetString("address"),
	}, nil
}

// LPOLine is one priced line of the LPO.
type LPOLine struct {
	No          int     `json:"no"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// LPODocument is everything the document backend needs to render an LPO.
type LPODocument struct {
	LPONumber       string      `json:"lpo_number"`
	Date            time.Time   `json:"date"`
	QuotationRef    string      `json:"quotation_ref"`
	RevisionVersion int         `json:"revision_version"`
	Currency        string      `json:"currency"`
	Company         Company     `json:"company"`
	BOQ             BOQInfo     `json:"boq"`
	Vendor          LPOVendor   `json:"vendor"`
	Buyer           CurrentUser `json:"buyer"`
	Lines           []LPOLine   `json:"lines"`
	Preliminaries   *LPOLine    `json:"preliminaries,omitempty"`
	Totals          BOQTotals   `json:"totals"`
	AmountInWords   string      `json:"amount_in_words"`
	DeliveryTerms   string      `json:"delivery_terms"`
	PaymentTerms    string      `json:"payment_terms"`
	WarrantyTerms   string      `json:"warranty_terms"`
	Notes           string      `json:"notes"`
	Terms           []string    `json:"terms"`
	SignatoryName   string      `json:"signatory_name"`
	SignatoryTitle  string      `json:"signatory_title"`
}

// LPOInput gathers the pieces BuildLPODocument combines.
type LPOInput struct {
	Snapshot          BOQSnapshot
	Customization     LPOCustomization
	Company           Company
	BOQ               BOQInfo
	Vendor            LPOVendor
	Buyer             CurrentUser
	Currency          string
	DefaultVATPercent float64
	Date              time.Time
}

// BuildLPODocument prices the snapshot for the LPO. The customization's VAT
// toggle replaces the snapshot's own; its selected terms replace the
// snapshot's when any are set.
func BuildLPODocument(in LPOInput) LPODocument {
	s := in.Snapshot
	s.VATPercent = in.Customization.VATPercent
	s.SetVATEnabled(in.Customization.VATEnabled, in.DefaultVATPercent)

	currency := in.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	totals := CalcBOQTotals(s).Rounded()
	doc := LPODocument{
		LPONumber:       in.Customization.LPONumber,
		Date:            in.Date,
		QuotationRef:    in.Customization.QuotationRef,
		RevisionVersion: s.VersionNumber,
		Currency:        currency,
		Company:         in.Company,
		BOQ:             in.BOQ,
		Vendor:          in.Vendor,
		Buyer:           in.Buyer,
		Lines:           lpoLines(s.Items),
		Totals:          totals,
		AmountInWords:   AmountToWords(totals.GrandTotal),
		DeliveryTerms:   in.Customization.DeliveryTerms,
		PaymentTerms:    in.Customization.PaymentTerms,
		WarrantyTerms:   in.Customization.WarrantyTerms,
		Notes:           in.Customization.Notes,
		Terms:           in.Customization.SelectedTerms,
		SignatoryName:   in.Customization.SignatoryName,
		SignatoryTitle:  in.Customization.SignatoryTitle,
	}
	if len(doc.Terms) == 0 {
		doc.Terms = s.SelectedTerms()
	}
	if s.Preliminaries != nil && s.Preliminaries.Amount != 0 {
		doc.Preliminaries = &LPOLine{
			No:          len(doc.Lines) + 1,
			Description: "Preliminaries",
			Unit:        "lot",
			Quantity:    1,
			Rate:        Round2(s.Preliminaries.Amount),
			Amount:      Round2(s.Preliminaries.Amount),
		}
	}
	return doc
}

// lpoLines lists one line per sub-item, or one per legacy item.
func lpoLines(items []Item) []LPOLine {
	var lines []LPOLine
	add := func(desc, unit string, qty, rate float64, costs LineCosts) {
		if rate == 0 && qty != 0 {
			rate = costs.ClientAmount / qty
		}
		lines = append(lines, LPOLine{
			No:          len(lines) + 1,
			Description: desc,
			Unit:        unit,
			Quantity:    qty,
			Rate:        Round2(rate),
			Amount:      Round2(costs.ClientAmount),
		})
	}

	for _, it := range items {
		if it.IsLegacy() {
			costs := CalcItemCosts(it).Lines[0]
			add(it.Name, it.Unit, it.Quantity, it.Rate, costs)
			continue
		}
		for _, sub := range it.SubItems {
			desc := it.Name
			if sub.Name != "" && sub.Name != it.Name {
				desc += " – " + sub.Name
			}
			add(desc, sub.Unit, sub.Quantity, sub.Rate, CalcSubItemCosts(sub))
		}
	}
	return lines
}
