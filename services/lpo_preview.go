package services

import (
	"strconv"

	"github.com/a-h/templ"

	"boqrevisions/templates"
)

// LPOPreview renders an LPO document as an HTML fragment for on-screen
// review before the PDF is requested.
func LPOPreview(doc LPODocument) templ.Component {
	return templates.LPOPreview(lpoPreviewData(doc))
}

func lpoPreviewData(doc LPODocument) templates.LPOPreviewData {
	money := func(v float64) string { return FormatCurrency(doc.Currency, v) }

	data := templates.LPOPreviewData{
		CompanyName:    doc.Company.Name,
		CompanyAddress: doc.Company.Address,
		CompanyTRN:     doc.Company.TRN,
		Meta: nonEmpty([]templates.LabelValue{
			{Label: "LPO No.", Value: doc.LPONumber},
			{Label: "Date", Value: doc.Date.Format("02 Jan 2006")},
			{Label: "Project", Value: doc.BOQ.ProjectName},
			{Label: "Reference", Value: doc.BOQ.ReferenceNumber},
			{Label: "Revision", Value: strconv.Itoa(doc.RevisionVersion)},
			{Label: "Quotation Ref", Value: doc.QuotationRef},
		}),
		VendorName:    doc.Vendor.Name,
		VendorTRN:     doc.Vendor.TRN,
		AmountInWords: doc.AmountInWords,
		Conditions: nonEmpty([]templates.LabelValue{
			{Label: "Delivery", Value: doc.DeliveryTerms},
			{Label: "Payment", Value: doc.PaymentTerms},
			{Label: "Warranty", Value: doc.WarrantyTerms},
			{Label: "Notes", Value: doc.Notes},
		}),
		Terms:          doc.Terms,
		PreparedBy:     doc.Buyer.Name,
		SignatoryName:  doc.SignatoryName,
		SignatoryTitle: doc.SignatoryTitle,
	}

	for _, line := range []string{doc.Vendor.Address, doc.Vendor.ContactPerson, doc.Vendor.Phone, doc.Vendor.Email} {
		if line != "" {
			data.VendorLines = append(data.VendorLines, line)
		}
	}

	lines := doc.Lines
	if doc.Preliminaries != nil {
		lines = append(lines[:len(lines):len(lines)], *doc.Preliminaries)
	}
	for _, l := range lines {
		data.Lines = append(data.Lines, templates.LPOLineRow{
			No:          strconv.Itoa(l.No),
			Description: l.Description,
			Unit:        l.Unit,
			Quantity:    formatQuantity(l.Quantity),
			Rate:        money(l.Rate),
			Amount:      money(l.Amount),
		})
	}

	t := doc.Totals
	data.Totals = append(data.Totals, templates.LabelValue{Label: "Subtotal", Value: money(t.CombinedSubtotal)})
	if t.DiscountAmount != 0 {
		data.Totals = append(data.Totals, templates.LabelValue{
			Label: "Discount (" + FormatPercent(t.DiscountPercent) + ")",
			Value: money(-t.DiscountAmount),
		})
	}
	data.Totals = append(data.Totals, templates.LabelValue{Label: "Total excl. VAT", Value: money(t.GrandTotalExclVAT)})
	if t.VATEnabled {
		data.Totals = append(data.Totals, templates.LabelValue{
			Label: "VAT (" + FormatPercent(t.VATPercent) + ")",
			Value: money(t.VATAmount),
		})
	}
	data.Totals = append(data.Totals, templates.LabelValue{Label: "Grand Total", Value: money(t.GrandTotal)})
	return data
}

func nonEmpty(entries []templates.LabelValue) []templates.LabelValue {
	out := entries[:0]
	for _, e := range entries {
		if e.Value != "" {
			out = append(out, e)
		}
	}
	return out
}
