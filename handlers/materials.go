package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"boqrevisions/metrics"
	"boqrevisions/services"
)

const (
	defaultMaterialLimit = 20
	maxMaterialLimit     = 200
)

// HandleMaterialSearch returns a handler that searches the raw-material
// catalog by name, category or brand.
// Route: GET /api/materials?q=&limit=
func HandleMaterialSearch(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		q := e.Request.URL.Query()

		limit := defaultMaterialLimit
		if raw := q.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				return jsonError(e, http.StatusBadRequest, "invalid limit")
			}
			limit = min(n, maxMaterialLimit)
		}

		materials, err := services.SearchMaterials(app, q.Get("q"), limit)
		if err != nil {
			log.Printf("material_search: %v", err)
			return serviceError(e, err)
		}
		return e.JSON(http.StatusOK, map[string]any{"materials": materials})
	}
}

// HandleMaterialImport returns a handler that validates an uploaded catalog
// file and imports it. A file with invalid rows is only imported when
// ?partial=true, in which case the valid rows are written.
// Route: POST /api/materials/import
func HandleMaterialImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		// Parse multipart form (max 10MB)
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return jsonError(e, http.StatusBadRequest, "file too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return jsonError(e, http.StatusBadRequest, "please select a file to upload")
		}
		defer file.Close()

		result, err := services.ParseMaterialCatalog(file, header.Filename)
		if err != nil {
			log.Printf("material_import: %v", err)
			return jsonError(e, http.StatusBadRequest, err.Error())
		}

		partial := e.Request.URL.Query().Get("partial") == "true"
		if result.ErrorRows > 0 && !partial {
			return e.JSON(http.StatusUnprocessableEntity, map[string]any{
				"error":      "file has invalid rows",
				"validation": result,
				"committed":  false,
			})
		}

		summary, err := services.ImportMaterials(app, result.Rows)
		if err != nil {
			log.Printf("material_import: %v", err)
			return serviceError(e, err)
		}
		metrics.MaterialsImported.Add(float64(summary.Created + summary.Updated))

		return e.JSON(http.StatusOK, map[string]any{
			"validation": result,
			"imported":   summary,
			"committed":  true,
		})
	}
}
