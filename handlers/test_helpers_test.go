package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"boqrevisions/services"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// withUser stores user in the request context as CurrentUserMiddleware would.
func withUser(req *http.Request, user services.CurrentUser) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), CurrentUserKey, user))
}

// decodeJSON unmarshals a recorded response body into v.
func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON response: %v\nbody: %s", err, rec.Body.String())
	}
}

// Snapshot fixtures: one item, one sub-item priced at quantity × 100 with
// 5% VAT. Revision 0 totals 1,050.00 and revision 1 totals 1,260.00.
const (
	snapshotV0 = `{"items": [{"item_name": "Works", "sub_items": [{"sub_item_name": "Paint", "unit": "sqm", "quantity": 10, "rate": 100}]}], "vat_percentage": 5, "terms_conditions": [{"text": "Payment 30 days", "selected": true}]}`
	snapshotV1 = `{"items": [{"item_name": "Works", "sub_items": [{"sub_item_name": "Paint", "unit": "sqm", "quantity": 12, "rate": 100}]}], "vat_percentage": 5, "terms_conditions": [{"text": "Payment 30 days", "selected": true}]}`
)

var testSettings = Settings{
	Company:           services.Company{Name: "Acme Interiors"},
	Currency:          "AED",
	DefaultVATPercent: 5,
	LPOPrefix:         "LPO",
}

// fakeDocs is an in-memory DocumentService.
type fakeDocs struct {
	err      error
	rendered []services.LPODocument
	sent     []services.VendorEmail
}

func (f *fakeDocs) RenderLPO(_ context.Context, doc services.LPODocument) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.rendered = append(f.rendered, doc)
	return []byte("%PDF-1.7 test"), nil
}

func (f *fakeDocs) SendEmail(_ context.Context, msg services.VendorEmail) (services.EmailReceipt, error) {
	if f.err != nil {
		return services.EmailReceipt{}, f.err
	}
	f.sent = append(f.sent, msg)
	return services.EmailReceipt{MessageID: "msg-1"}, nil
}
