package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"boqrevisions/config"
	"boqrevisions/metrics"
	"boqrevisions/services"
)

// Settings carries the configured values the LPO and email screens need.
type Settings struct {
	Company           services.Company
	Currency          string
	DefaultVATPercent float64
	LPOPrefix         string
}

// SettingsFromConfig extracts handler settings from the application config.
func SettingsFromConfig(c config.Config) Settings {
	return Settings{
		Company: services.Company{
			Name:    c.Company.Name,
			Address: c.Company.Address,
			TRN:     c.Company.TRN,
		},
		Currency:          c.Currency.Code,
		DefaultVATPercent: c.VAT.DefaultPercent,
		LPOPrefix:         c.LPO.NumberPrefix,
	}
}

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

// loadRevisionForLPO loads ?version=N, or the latest revision when absent.
func loadRevisionForLPO(app *pocketbase.PocketBase, e *core.RequestEvent, boqID string) (services.Revision, error) {
	if v := e.Request.URL.Query().Get("version"); v != "" {
		version, err := strconv.Atoi(v)
		if err != nil {
			return services.Revision{}, fmt.Errorf("%w: invalid version %q", services.ErrRevisionNotFound, v)
		}
		return services.LoadRevision(app, boqID, version)
	}

	versions, err := services.ListVersions(app, boqID)
	if err != nil {
		return services.Revision{}, err
	}
	if len(versions) == 0 {
		return services.Revision{}, fmt.Errorf("%w: BOQ %s has no revisions", services.ErrRevisionNotFound, boqID)
	}
	return services.LoadRevision(app, boqID, versions[len(versions)-1])
}

// lpoState is everything the LPO screens show.
type lpoState struct {
	Customization services.LPOCustomization `json:"customization"`
	Saved         bool                      `json:"saved"`
	Document      services.LPODocument      `json:"document"`
}

// buildLPOState assembles the LPO for a BOQ and vendor. When custom is nil
// the saved customization is used, or a fresh one derived from the
// revision when nothing has been saved.
func buildLPOState(app *pocketbase.PocketBase, e *core.RequestEvent, settings Settings, boqID, vendorID string, custom *services.LPOCustomization) (lpoState, error) {
	rev, err := loadRevisionForLPO(app, e, boqID)
	if err != nil {
		return lpoState{}, err
	}
	info, err := services.LoadBOQInfo(app, boqID)
	if err != nil {
		return lpoState{}, err
	}

	var vendor services.LPOVendor
	if vendorID != "" {
		if vendor, err = services.LoadVendor(app, vendorID); err != nil {
			return lpoState{}, err
		}
	}

	state := lpoState{}
	if custom != nil {
		state.Customization = *custom
		state.Saved = true
	} else {
		c, found, err := services.LoadLPOCustomization(app, boqID, vendorID)
		if err != nil {
			return lpoState{}, err
		}
		if !found {
			c = services.LPOCustomization{
				VendorID:      vendorID,
				VATEnabled:    rev.Snapshot.VATEnabled,
				VATPercent:    rev.Snapshot.VATPercent,
				SelectedTerms: rev.Snapshot.SelectedTerms(),
			}
			if c.LPONumber, err = services.GenerateLPONumber(app, settings.LPOPrefix, boqID, time.Now()); err != nil {
				return lpoState{}, err
			}
		}
		state.Customization = c
		state.Saved = found
	}

	state.Document = services.BuildLPODocument(services.LPOInput{
		Snapshot:          rev.Snapshot,
		Customization:     state.Customization,
		Company:           settings.Company,
		BOQ:               info,
		Vendor:            vendor,
		Buyer:             GetCurrentUser(e.Request),
		Currency:          settings.Currency,
		DefaultVATPercent: settings.DefaultVATPercent,
		Date:              time.Now(),
	})
	metrics.TotalsComputed.Inc()
	return state, nil
}

// HandleLPOGet returns a handler that shows the saved customization and the
// computed LPO document for ?vendor=.
func HandleLPOGet(app *pocketbase.PocketBase, settings Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, ok, err := findBOQ(app, e)
		if !ok {
			return err
		}

		state, err := buildLPOState(app, e, settings, boq.Id, e.Request.URL.Query().Get("vendor"), nil)
		if err != nil {
			log.Printf("lpo: BOQ %s: %v", boq.Id, err)
			return serviceError(e, err)
		}
		return e.JSON(http.StatusOK, state)
	}
}

// HandleLPOSave returns a handler that validates and stores an LPO
// customization. A blank LPO number is generated.
func HandleLPOSave(app *pocketbase.PocketBase, settings Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, ok, err := findBOQ(app, e)
		if !ok {
			return err
		}

		body, err := readBody(e)
		if err != nil {
			return jsonError(e, http.StatusBadRequest, "could not read request body")
		}
		custom, err := services.NormalizeLPOCustomization(body)
		if err != nil {
			return serviceError(e, err)
		}
		if fields := services.Validate(custom); fields != nil {
			return validationError(e, fields)
		}
		if custom.VendorID != "" {
			if _, err := app.FindRecordById("vendors", custom.VendorID); err != nil {
				return validationError(e, map[string]string{"vendor": "exists"})
			}
		}
		if custom.LPONumber == "" {
			if custom.LPONumber, err = services.GenerateLPONumber(app, settings.LPOPrefix, boq.Id, time.Now()); err != nil {
				log.Printf("lpo_save: generate number: %v", err)
				return serviceError(e, err)
			}
		}

		saved, err := services.SaveLPOCustomization(app, boq.Id, custom)
		if err != nil {
			log.Printf("lpo_save: BOQ %s: %v", boq.Id, err)
			return serviceError(e, err)
		}

		state, err := buildLPOState(app, e, settings, boq.Id, saved.VendorID, &saved)
		if err != nil {
			log.Printf("lpo_save: BOQ %s: %v", boq.Id, err)
			return serviceError(e, err)
		}
		return e.JSON(http.StatusOK, state)
	}
}

// HandleLPOPreview returns a handler that renders the LPO as HTML.
func HandleLPOPreview(app *pocketbase.PocketBase, settings Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, ok, err := findBOQ(app, e)
		if !ok {
			return err
		}

		state, err := buildLPOState(app, e, settings, boq.Id, e.Request.URL.Query().Get("vendor"), nil)
		if err != nil {
			log.Printf("lpo_preview: BOQ %s: %v", boq.Id, err)
			return serviceError(e, err)
		}

		var buf bytes.Buffer
		if err := services.LPOPreview(state.Document).Render(e.Request.Context(), &buf); err != nil {
			log.Printf("lpo_preview: render: %v", err)
			return jsonError(e, http.StatusInternalServerError, "failed to render preview")
		}
		return e.HTML(http.StatusOK, buf.String())
	}
}

// HandleLPOPDF returns a handler that asks the document backend for the LPO
// PDF and streams it back as a download.
func HandleLPOPDF(app *pocketbase.PocketBase, settings Settings, docs services.DocumentService) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, ok, err := findBOQ(app, e)
		if !ok {
			return err
		}

		state, err := buildLPOState(app, e, settings, boq.Id, e.Request.URL.Query().Get("vendor"), nil)
		if err != nil {
			log.Printf("lpo_pdf: BOQ %s: %v", boq.Id, err)
			return serviceError(e, err)
		}

		pdf, err := docs.RenderLPO(e.Request.Context(), state.Document)
		metrics.ObserveDocumentRequest(metrics.KindLPOPDF, err)
		if err != nil {
			log.Printf("lpo_pdf: render %s: %v", state.Document.LPONumber, err)
			return serviceError(e, err)
		}

		filename := fmt.Sprintf("%s.pdf", sanitizeFilename(state.Document.LPONumber))
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		return e.Blob(http.StatusOK, "application/pdf", pdf)
	}
}
