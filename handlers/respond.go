package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"boqrevisions/services"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 5 << 20

// jsonError writes {"error": msg}.
func jsonError(e *core.RequestEvent, status int, msg string) error {
	return e.JSON(status, map[string]any{"error": msg})
}

// validationError writes a 400 carrying the failing fields.
func validationError(e *core.RequestEvent, fields map[string]string) error {
	return e.JSON(http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": fields,
	})
}

// serviceError maps the sentinel errors of services to a status code.
func serviceError(e *core.RequestEvent, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidSnapshot):
		return jsonError(e, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrRevisionNotFound), errors.Is(err, sql.ErrNoRows):
		return jsonError(e, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrVersionNotIncreasing):
		return jsonError(e, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrDocumentServiceDisabled):
		return jsonError(e, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, services.ErrDocumentService):
		return jsonError(e, http.StatusBadGateway, err.Error())
	default:
		return jsonError(e, http.StatusInternalServerError, "internal error")
	}
}

// readBody reads the request body up to maxBodyBytes.
func readBody(e *core.RequestEvent) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(e.Response, e.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// pathVersion parses the {version} path value.
func pathVersion(e *core.RequestEvent) (int, bool) {
	v, err := strconv.Atoi(e.Request.PathValue("version"))
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// findBOQ loads the {id} BOQ, writing a 404 when it does not exist.
func findBOQ(app *pocketbase.PocketBase, e *core.RequestEvent) (*core.Record, bool, error) {
	id := e.Request.PathValue("id")
	if id == "" {
		return nil, false, jsonError(e, http.StatusBadRequest, "missing BOQ ID")
	}
	boq, err := app.FindRecordById("boqs", id)
	if err != nil {
		log.Printf("boq: BOQ %s not found: %v", id, err)
		return nil, false, jsonError(e, http.StatusNotFound, "BOQ not found")
	}
	return boq, true, nil
}
