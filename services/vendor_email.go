package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"boqrevisions/templates"
)

// CurrentUser is the buyer identity attached to outgoing documents. It is
// resolved per request and never read from package state.
type CurrentUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// EmailMaterial is one requested material on a vendor email.
type EmailMaterial struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Quantity  float64 `json:"quantity" validate:"gt=0"`
	Unit      string  `json:"unit" validate:"max=30"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// LineTotal is quantity × unit price.
func (m EmailMaterial) LineTotal() float64 {
	return m.Quantity * m.UnitPrice
}

// VendorEmailRequest is the payload of the vendor purchase email screens.
type VendorEmailRequest struct {
	VendorID   string          `json:"vendor"`
	To         string          `json:"to" validate:"required,email"`
	CC         []string        `json:"cc" validate:"dive,email"`
	VendorName string          `json:"vendor_name" validate:"max=200"`
	LPONumber  string          `json:"lpo_number" validate:"max=60"`
	Message    string          `json:"message" validate:"max=4000"`
	Materials  []EmailMaterial `json:"materials" validate:"min=1,dive"`
}

// Subtotal sums the line totals of every requested material.
func (r VendorEmailRequest) Subtotal() float64 {
	var total float64
	for _, m := range r.Materials {
		total += m.LineTotal()
	}
	return total
}

// VendorEmail is a rendered email ready for the document backend.
type VendorEmail struct {
	To      string   `json:"to"`
	CC      []string `json:"cc,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// VendorEmailSubject builds the subject line for a purchase request.
func VendorEmailSubject(boq BOQInfo, lpoNumber string) string {
	subject := "Purchase Request"
	if boq.ProjectName != "" {
		subject += " - " + boq.ProjectName
	} else if boq.Title != "" {
		subject += " - " + boq.Title
	}
	if lpoNumber != "" {
		subject += " (" + lpoNumber + ")"
	}
	return subject
}

// BuildVendorEmail renders the purchase email for a vendor. The caller is
// expected to have validated req.
func BuildVendorEmail(ctx context.Context, req VendorEmailRequest, boq BOQInfo, buyer CurrentUser, currency string) (VendorEmail, error) {
	var body bytes.Buffer
	if err := VendorEmailBody(req, boq, buyer, currency).Render(ctx, &body); err != nil {
		return VendorEmail{}, fmt.Errorf("render vendor email: %w", err)
	}
	return VendorEmail{
		To:      req.To,
		CC:      req.CC,
		ReplyTo: buyer.Email,
		Subject: VendorEmailSubject(boq, req.LPONumber),
		HTML:    body.String(),
	}, nil
}

// VendorEmailBody is the HTML body listing the requested materials.
func VendorEmailBody(req VendorEmailRequest, boq BOQInfo, buyer CurrentUser, currency string) templ.Component {
	return templates.VendorEmailBody(vendorEmailData(req, boq, buyer, currency))
}

func vendorEmailData(req VendorEmailRequest, boq BOQInfo, buyer CurrentUser, currency string) templates.VendorEmailData {
	intro := "Please supply the following materials"
	if boq.ProjectName != "" {
		intro += " for " + boq.ProjectName
	}

	data := templates.VendorEmailData{
		RecipientName: req.VendorName,
		Intro:         intro + ".",
		LPONumber:     req.LPONumber,
		Message:       req.Message,
		Materials:     make([]templates.EmailMaterialRow, 0, len(req.Materials)),
		Subtotal:      FormatCurrency(currency, req.Subtotal()),
		BuyerName:     buyer.Name,
	}
	for i, m := range req.Materials {
		data.Materials = append(data.Materials, templates.EmailMaterialRow{
			No:        strconv.Itoa(i + 1),
			Name:      m.Name,
			Quantity:  formatQuantity(m.Quantity),
			Unit:      m.Unit,
			UnitPrice: FormatCurrency(currency, m.UnitPrice),
			Total:     FormatCurrency(currency, m.LineTotal()),
		})
	}
	for _, line := range []string{buyer.Email, buyer.Phone} {
		if line != "" {
			data.BuyerContact = append(data.BuyerContact, line)
		}
	}
	return data
}
