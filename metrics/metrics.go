// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Document request kinds.
const (
	KindLPOPDF = "lpo_pdf"
	KindEmail  = "email"
)

var (
	Registry = prometheus.NewRegistry()

	TotalsComputed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "boq_totals_computed_total",
		Help: "Number of BOQ snapshot totals computed.",
	})

	RevisionDiffs = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "boq_revision_diffs_total",
		Help: "Number of revision comparisons computed.",
	})

	DocumentRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "boq_document_requests_total",
		Help: "Calls to the document backend by kind and outcome.",
	}, []string{"kind", "outcome"})

	MaterialsImported = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "boq_materials_imported_total",
		Help: "Raw-material catalog rows created or updated by imports.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		TotalsComputed,
		RevisionDiffs,
		DocumentRequests,
		MaterialsImported,
	)
}

// ObserveDocumentRequest counts one document backend call.
func ObserveDocumentRequest(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	DocumentRequests.WithLabelValues(kind, outcome).Inc()
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
