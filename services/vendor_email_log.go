package services

import (
	"fmt"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Vendor email delivery states.
const (
	EmailSent   = "sent"
	EmailFailed = "failed"
)

// SentEmail is one entry of the vendor email log.
type SentEmail struct {
	ID        string `json:"id"`
	VendorID  string `json:"vendor,omitempty"`
	To        string `json:"to"`
	CC        string `json:"cc,omitempty"`
	Subject   string `json:"subject"`
	Status    string `json:"status"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// LogVendorEmail records the outcome of sending msg for a BOQ. sendErr is
// the delivery error, if any.
func LogVendorEmail(app *pocketbase.PocketBase, boqID, vendorID string, msg VendorEmail, receipt EmailReceipt, sendErr error) (SentEmail, error) {
	col, err := app.FindCollectionByNameOrId("vendor_emails")
	if err != nil {
		return SentEmail{}, fmt.Errorf("could not find vendor_emails collection: %w", err)
	}

	record := core.NewRecord(col)
	record.Set("boq", boqID)
	record.Set("vendor", vendorID)
	record.Set("to", msg.To)
	record.Set("cc", strings.Join(msg.CC, ", "))
	record.Set("subject", msg.Subject)
	if sendErr != nil {
		record.Set("status", EmailFailed)
		record.Set("error", sendErr.Error())
	} else {
		record.Set("status", EmailSent)
		record.Set("message_id", receipt.MessageID)
	}
	if err := app.Save(record); err != nil {
		return SentEmail{}, fmt.Errorf("save vendor email log: %w", err)
	}
	return sentEmailFromRecord(record), nil
}

// SentEmailFromReceipt describes a delivered email that has no log record.
// ID is empty.
func SentEmailFromReceipt(vendorID string, msg VendorEmail, receipt EmailReceipt) SentEmail {
	return SentEmail{
		VendorID:  vendorID,
		To:        msg.To,
		CC:        strings.Join(msg.CC, ", "),
		Subject:   msg.Subject,
		Status:    EmailSent,
		MessageID: receipt.MessageID,
	}
}

func sentEmailFromRecord(r *core.Record) SentEmail {
	return SentEmail{
		ID:        r.Id,
		VendorID:  r.GetString("vendor"),
		To:        r.GetString("to"),
		CC:        r.GetString("cc"),
		Subject:   r.GetString("subject"),
		Status:    r.GetString("status"),
		MessageID: r.GetString("message_id"),
		Error:     r.GetString("error"),
	}
}

// ListVendorEmails returns the email log of a BOQ, newest first.
func ListVendorEmails(app *pocketbase.PocketBase, boqID string) ([]SentEmail, error) {
	records, err := app.FindRecordsByFilter(
		"vendor_emails",
		"boq = {:boqId}",
		"-created",
		0,
		0,
		dbx.Params{"boqId": boqID},
	)
	if err != nil {
		return nil, fmt.Errorf("list vendor emails of BOQ %s: %w", boqID, err)
	}
	out := make([]SentEmail, 0, len(records))
	for _, r := range records {
		out = append(out, sentEmailFromRecord(r))
	}
	return out, nil
}
