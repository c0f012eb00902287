package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"boqrevisions/testhelpers"
)

func TestHandleSnapshotSchema(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/schema/boq-snapshot", nil)
	rec := httptest.NewRecorder()

	if err := HandleSnapshotSchema()(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var schema struct {
		Title      string         `json:"title"`
		Properties map[string]any `json:"properties"`
	}
	decodeJSON(t, rec, &schema)
	if schema.Title != "BOQ snapshot" {
		t.Errorf("unexpected title %q", schema.Title)
	}
	for _, key := range []string{"items", "preliminaries", "vat_enabled", "discount_percentage"} {
		if _, ok := schema.Properties[key]; !ok {
			t.Errorf("expected property %q", key)
		}
	}
}
