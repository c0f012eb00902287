package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"boqrevisions/metrics"
	"boqrevisions/services"
)

// readVendorEmail decodes and validates a vendor email request, filling the
// recipient and vendor name from the vendor record when omitted. On failure
// the response has already been written and ok is false.
func readVendorEmail(app *pocketbase.PocketBase, e *core.RequestEvent) (req services.VendorEmailRequest, ok bool, err error) {
	body, err := readBody(e)
	if err != nil {
		return req, false, jsonError(e, http.StatusBadRequest, "could not read request body")
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, false, jsonError(e, http.StatusBadRequest, "invalid JSON body")
	}

	if req.VendorID != "" {
		vendor, err := services.LoadVendor(app, req.VendorID)
		if err != nil {
			return req, false, validationError(e, map[string]string{"vendor": "exists"})
		}
		if req.To == "" {
			req.To = vendor.Email
		}
		if req.VendorName == "" {
			req.VendorName = vendor.ContactPerson
		}
		if req.VendorName == "" {
			req.VendorName = vendor.Name
		}
	}

	if fields := services.Validate(req); fields != nil {
		return req, false, validationError(e, fields)
	}
	return req, true, nil
}

// HandleVendorEmailPreview returns a handler that renders a vendor purchase
// email without sending it.
func HandleVendorEmailPreview(app *pocketbase.PocketBase, settings Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, ok, err := findBOQ(app, e)
		if !ok {
			return err
		}
		req, ok, err := readVendorEmail(app, e)
		if !ok {
			return err
		}

		info, err := services.LoadBOQInfo(app, boq.Id)
		if err != nil {
			return serviceError(e, err)
		}
		email, err := services.BuildVendorEmail(e.Request.Context(), req, info, GetCurrentUser(e.Request), settings.Currency)
		if err != nil {
			log.Printf("vendor_email_preview: %v", err)
			return serviceError(e, err)
		}
		return e.JSON(http.StatusOK, email)
	}
}

// HandleVendorEmailSend returns a handler that sends a vendor purchase email
// through the document backend and records the outcome in vendor_emails.
func HandleVendorEmailSend(app *pocketbase.PocketBase, settings Settings, docs services.DocumentService) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, ok, err := findBOQ(app, e)
		if !ok {
			return err
		}
		req, ok, err := readVendorEmail(app, e)
		if !ok {
			return err
		}

		info, err := services.LoadBOQInfo(app, boq.Id)
		if err != nil {
			return serviceError(e, err)
		}
		email, err := services.BuildVendorEmail(e.Request.Context(), req, info, GetCurrentUser(e.Request), settings.Currency)
		if err != nil {
			log.Printf("vendor_email_send: %v", err)
			return serviceError(e, err)
		}

		receipt, sendErr := docs.SendEmail(e.Request.Context(), email)
		metrics.ObserveDocumentRequest(metrics.KindEmail, sendErr)
		if sendErr != nil {
			log.Printf("vendor_email_send: BOQ %s to %s: %v", boq.Id, email.To, sendErr)
		}

		sent, err := services.LogVendorEmail(app, boq.Id, req.VendorID, email, receipt, sendErr)
		if err != nil {
			log.Printf("vendor_email_send: %v", err)
		}
		if sendErr != nil {
			return serviceError(e, sendErr)
		}
		if err != nil {
			// The email went out; report it even though the log write failed.
			sent = services.SentEmailFromReceipt(req.VendorID, email, receipt)
		}
		return e.JSON(http.StatusOK, sent)
	}
}

// HandleVendorEmailList returns a handler that lists the emails sent for a BOQ.
func HandleVendorEmailList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, ok, err := findBOQ(app, e)
		if !ok {
			return err
		}
		emails, err := services.ListVendorEmails(app, boq.Id)
		if err != nil {
			log.Printf("vendor_email_list: %v", err)
			return serviceError(e, err)
		}
		return e.JSON(http.StatusOK, map[string]any{"emails": emails})
	}
}
