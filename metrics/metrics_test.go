package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// counterValue reads a counter from Registry by name and label values.
func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestObserveDocumentRequest(t *testing.T) {
	ok := map[string]string{"kind": KindEmail, "outcome": "ok"}
	failed := map[string]string{"kind": KindEmail, "outcome": "error"}
	beforeOK := counterValue(t, "boq_document_requests_total", ok)
	beforeFailed := counterValue(t, "boq_document_requests_total", failed)

	ObserveDocumentRequest(KindEmail, nil)
	ObserveDocumentRequest(KindEmail, nil)
	ObserveDocumentRequest(KindEmail, errors.New("boom"))

	if got := counterValue(t, "boq_document_requests_total", ok) - beforeOK; got != 2 {
		t.Errorf("ok delta = %v, want 2", got)
	}
	if got := counterValue(t, "boq_document_requests_total", failed) - beforeFailed; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	TotalsComputed.Inc()
	RevisionDiffs.Inc()
	MaterialsImported.Add(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{
		"boq_totals_computed_total",
		"boq_revision_diffs_total",
		"boq_materials_imported_total",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected exposition to contain %s", name)
		}
	}
}
