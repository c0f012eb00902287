package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"boqrevisions/services"
)

// HandleSnapshotSchema serves the JSON Schema of a stored BOQ snapshot.
func HandleSnapshotSchema() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return e.JSON(http.StatusOK, services.BOQSnapshotSchema())
	}
}
