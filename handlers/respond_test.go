package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"boqrevisions/services"
	"boqrevisions/testhelpers"
)

func TestServiceError(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid snapshot", fmt.Errorf("decode: %w", services.ErrInvalidSnapshot), http.StatusBadRequest},
		{"missing revision", services.ErrRevisionNotFound, http.StatusNotFound},
		{"missing record", fmt.Errorf("vendor not found: %w", sql.ErrNoRows), http.StatusNotFound},
		{"version conflict", fmt.Errorf("save: %w", services.ErrVersionNotIncreasing), http.StatusConflict},
		{"backend off", services.ErrDocumentServiceDisabled, http.StatusServiceUnavailable},
		{"backend failed", fmt.Errorf("%w: 500", services.ErrDocumentService), http.StatusBadGateway},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := newTestRequestEvent(app, httptest.NewRequest(http.MethodGet, "/", nil), rec)
			if err := serviceError(e, tt.err); err != nil {
				t.Fatalf("serviceError returned error: %v", err)
			}
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON body: %v", err)
			}
			if body["error"] == "" || body["error"] == nil {
				t.Error("expected error message in body")
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, httptest.NewRequest(http.MethodPost, "/", nil), rec)

	if err := validationError(e, map[string]string{"to": "email"}); err != nil {
		t.Fatalf("validationError returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Fields["to"] != "email" {
		t.Errorf("fields = %v", body.Fields)
	}
}
