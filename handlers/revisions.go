package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"boqrevisions/metrics"
	"boqrevisions/services"
)

// RevisionSummary is one row of the revision list.
type RevisionSummary struct {
	ID                  string    `json:"id"`
	VersionNumber       int       `json:"version_number"`
	Status              string    `json:"status"`
	DecisionNote        string    `json:"decision_note,omitempty"`
	DecidedBy           string    `json:"decided_by,omitempty"`
	Created             time.Time `json:"created"`
	ItemCount           int       `json:"item_count"`
	GrandTotalExclVAT   float64   `json:"grand_total_excl_vat"`
	GrandTotal          float64   `json:"grand_total"`
	FormattedGrandTotal string    `json:"formatted_grand_total"`
}

func summarizeRevision(rev services.Revision, currency string) RevisionSummary {
	totals := services.CalcBOQTotals(rev.Snapshot).Rounded()
	metrics.TotalsComputed.Inc()
	return RevisionSummary{
		ID:                  rev.ID,
		VersionNumber:       rev.VersionNumber,
		Status:              rev.Status,
		DecisionNote:        rev.DecisionNote,
		DecidedBy:           rev.DecidedBy,
		Created:             rev.Created,
		ItemCount:           len(rev.Snapshot.Items),
		GrandTotalExclVAT:   totals.GrandTotalExclVAT,
		GrandTotal:          totals.GrandTotal,
		FormattedGrandTotal: services.FormatCurrency(currency, totals.GrandTotal),
	}
}

// HandleRevisionList returns a handler that lists the revisions of a BOQ with
// their grand totals.
func HandleRevisionList(app *pocketbase.PocketBase, currency string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, ok, err := findBOQ(app, e)
		if !ok {
			return err
		}

		revisions, err := services.ListRevisions(app, boq.Id)
		if err != nil {
			log.Printf("revision_list: %v", err)
			return serviceError(e, err)
		}

		out := make([]RevisionSummary, 0, len(revisions))
		for _, rev := range revisions {
			out = append(out, summarizeRevision(rev, currency))
		}
		return e.JSON(http.StatusOK, map[string]any{
			"boq":       boq.Id,
			"revisions": out,
		})
	}
}

// HandleRevisionCreate returns a handler that stores a posted snapshot as the
// next revision of a BOQ.
func HandleRevisionCreate(app *pocketbase.PocketBase, currency string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, ok, err := findBOQ(app, e)
		if !ok {
			return err
		}

		body, err := readBody(e)
		if err != nil {
			return jsonError(e, http.StatusBadRequest, "could not read request body")
		}
		snapshot, err := services.NormalizeSnapshot(body)
		if err != nil {
			return serviceError(e, err)
		}
		if fields := services.Validate(snapshot); fields != nil {
			return validationError(e, fields)
		}

		rev, err := services.SaveRevision(app, boq.Id, snapshot)
		if err != nil {
			log.Printf("revision_create: BOQ %s: %v", boq.Id, err)
			return serviceError(e, err)
		}
		return e.JSON(http.StatusCreated, summarizeRevision(rev, currency))
	}
}

// HandleRevisionTotals returns a handler that recomputes the totals of one
// revision together with its per-item cost breakdown.
func HandleRevisionTotals(app *pocketbase.PocketBase, currency string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, ok, err := findBOQ(app, e)
		if !ok {
			return err
		}
		version, ok := pathVersion(e)
		if !ok {
			return jsonError(e, http.StatusBadRequest, "invalid version")
		}

		rev, err := services.LoadRevision(app, boq.Id, version)
		if err != nil {
			log.Printf("revision_totals: %v", err)
			return serviceError(e, err)
		}

		totals := services.CalcBOQTotals(rev.Snapshot)
		rounded := totals.Rounded()
		metrics.TotalsComputed.Inc()

		prelimCost := services.Round2(services.CalcPreliminariesInternalCost(rev.Snapshot.Preliminaries))

		return e.JSON(http.StatusOK, map[string]any{
			"version_number":     rev.VersionNumber,
			"status":             rev.Status,
			"totals":             totals,
			"rounded":            rounded,
			"items":              services.CalcAllItemCosts(rev.Snapshot),
			"preliminaries_cost": prelimCost,
			"formatted": map[string]string{
				"grand_total_excl_vat": services.FormatCurrency(currency, rounded.GrandTotalExclVAT),
				"grand_total":          services.FormatCurrency(currency, rounded.GrandTotal),
				"actual_profit":        services.FormatCurrency(currency, rounded.ActualProfit),
				"profit_margin":        services.FormatPercent(rounded.ProfitMarginPercent),
				"amount_in_words":      services.AmountToWords(rounded.GrandTotal),
			},
		})
	}
}

// decisionRequest is the body of a revision decision.
type decisionRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Note   string `json:"note" validate:"max=2000"`
}

// HandleRevisionDecision returns a handler that approves or rejects a
// revision on behalf of the current user.
func HandleRevisionDecision(app *pocketbase.PocketBase, currency string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, ok, err := findBOQ(app, e)
		if !ok {
			return err
		}
		version, ok := pathVersion(e)
		if !ok {
			return jsonError(e, http.StatusBadRequest, "invalid version")
		}

		body, err := readBody(e)
		if err != nil {
			return jsonError(e, http.StatusBadRequest, "could not read request body")
		}
		var req decisionRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return jsonError(e, http.StatusBadRequest, "invalid JSON body")
		}
		if fields := services.Validate(req); fields != nil {
			return validationError(e, fields)
		}

		user := GetCurrentUser(e.Request)
		decidedBy := user.Name
		if decidedBy == "" {
			decidedBy = user.Email
		}

		rev, err := services.DecideRevision(app, boq.Id, version, req.Status, req.Note, decidedBy)
		if err != nil {
			log.Printf("revision_decision: %v", err)
			return serviceError(e, err)
		}
		return e.JSON(http.StatusOK, summarizeRevision(rev, currency))
	}
}
