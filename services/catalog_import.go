package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/xuri/excelize/v2"
)

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MaterialRow is one catalog entry read from an import file.
type MaterialRow struct {
	Row         int     `json:"row"`
	Name        string  `json:"name" validate:"required,max=200"`
	Category    string  `json:"category" validate:"max=100"`
	Brand       string  `json:"brand" validate:"max=100"`
	Unit        string  `json:"unit" validate:"max=30"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	Description string  `json:"description"`
}

// CatalogImport is the result of parsing and validating an uploaded catalog.
type CatalogImport struct {
	FileName  string            `json:"file_name"`
	TotalRows int               `json:"total_rows"`
	ValidRows int               `json:"valid_rows"`
	ErrorRows int               `json:"error_rows"`
	Errors    []ValidationError `json:"errors"`
	Ignored   []string          `json:"ignored_columns,omitempty"`
	Rows      []MaterialRow     `json:"-"`
}

// catalogColumns maps accepted header spellings to MaterialRow fields.
var catalogColumns = map[string]string{
	"name":          "name",
	"material":      "name",
	"material name": "name",
	"category":      "category",
	"brand":         "brand",
	"unit":          "unit",
	"uom":           "unit",
	"unit price":    "unit_price",
	"unit_price":    "unit_price",
	"rate":          "unit_price",
	"price":         "unit_price",
	"description":   "description",
}

var catalogFieldLabels = map[string]string{
	"name":       "Name",
	"category":   "Category",
	"brand":      "Brand",
	"unit":       "Unit",
	"unit_price": "Unit Price",
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// mapCatalogHeaders returns the field key for each column ("" when the
// column is not recognised) and the unrecognised headers.
func mapCatalogHeaders(headers []string) ([]string, []string) {
	mapped := make([]string, len(headers))
	var ignored []string
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSpace(strings.TrimSuffix(norm, "*"))
		if key, ok := catalogColumns[norm]; ok {
			mapped[i] = key
			continue
		}
		if strings.TrimSpace(h) != "" {
			ignored = append(ignored, h)
		}
	}
	return mapped, ignored
}

// ParseMaterialCatalog reads a .csv or .xlsx raw-material catalog and
// validates every row. Rows with errors are reported and left out of Rows.
func ParseMaterialCatalog(file io.Reader, fileName string) (*CatalogImport, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	columnKeys, ignored := mapCatalogHeaders(headers)
	hasName := false
	for _, k := range columnKeys {
		if k == "name" {
			hasName = true
		}
	}
	if !hasName {
		return nil, fmt.Errorf("file has no Name column")
	}

	result := &CatalogImport{FileName: fileName, Ignored: ignored}
	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row

		values := make(map[string]string, len(columnKeys))
		blank := true
		for colIdx, key := range columnKeys {
			if key == "" || colIdx >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[colIdx])
			if v != "" {
				blank = false
			}
			values[key] = v
		}
		if blank {
			continue
		}
		result.TotalRows++

		m := MaterialRow{
			Row:         rowNum,
			Name:        values["name"],
			Category:    values["category"],
			Brand:       values["brand"],
			Unit:        values["unit"],
			Description: values["description"],
		}

		var rowErrors []ValidationError
		if raw := values["unit_price"]; raw != "" {
			price, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
			if err != nil {
				rowErrors = append(rowErrors, ValidationError{
					Row: rowNum, Field: "Unit Price", Message: fmt.Sprintf("%q is not a number", raw),
				})
			}
			m.UnitPrice = price
		}
		fieldErrs := Validate(m)
		for _, field := range slices.Sorted(maps.Keys(fieldErrs)) {
			label := catalogFieldLabels[field]
			rowErrors = append(rowErrors, ValidationError{
				Row: rowNum, Field: label, Message: catalogRuleMessage(label, fieldErrs[field]),
			})
		}

		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorRows++
			continue
		}
		result.Rows = append(result.Rows, m)
	}
	result.ValidRows = len(result.Rows)
	return result, nil
}

func catalogRuleMessage(label, tag string) string {
	switch tag {
	case "required":
		return label + " is required"
	case "gte":
		return label + " cannot be negative"
	case "max":
		return label + " is too long"
	default:
		return label + " is invalid"
	}
}

// ImportSummary counts what ImportMaterials changed.
type ImportSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// ImportMaterials upserts rows into raw_materials, matching existing records
// by case-insensitive name. All rows are written in one transaction.
func ImportMaterials(app *pocketbase.PocketBase, rows []MaterialRow) (ImportSummary, error) {
	var summary ImportSummary

	col, err := app.FindCollectionByNameOrId("raw_materials")
	if err != nil {
		return summary, fmt.Errorf("could not find raw_materials collection: %w", err)
	}

	err = app.RunInTransaction(func(txApp core.App) error {
		existing, err := txApp.FindAllRecords(col)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		byName := make(map[string]*core.Record, len(existing))
		for _, r := range existing {
			byName[strings.ToLower(r.GetString("name"))] = r
		}

		for _, m := range rows {
			key := strings.ToLower(m.Name)
			record, ok := byName[key]
			if !ok {
				record = core.NewRecord(col)
			}
			record.Set("name", m.Name)
			record.Set("category", m.Category)
			record.Set("brand", m.Brand)
			record.Set("unit", m.Unit)
			record.Set("unit_price", m.UnitPrice)
			record.Set("description", m.Description)
			if err := txApp.Save(record); err != nil {
				return fmt.Errorf("save failed at row %d: %w", m.Row, err)
			}
			if ok {
				summary.Updated++
			} else {
				summary.Created++
				byName[key] = record
			}
		}
		return nil
	})
	if err != nil {
		return ImportSummary{}, err
	}
	return summary, nil
}

// Material is a raw_materials record as returned by catalog search.
type Material struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	Description string  `json:"description,omitempty"`
}

// SearchMaterials finds catalog entries whose name, category or brand
// contains q, ordered by name. An empty q lists the catalog.
func SearchMaterials(app *pocketbase.PocketBase, q string, limit int) ([]Material, error) {
	filter := "id != ''"
	params := dbx.Params{}
	if q = strings.TrimSpace(q); q != "" {
		filter = "name ~ {:q} || category ~ {:q} || brand ~ {:q}"
		params["q"] = q
	}

	records, err := app.FindRecordsByFilter("raw_materials", filter, "name", limit, 0, params)
	if err != nil {
		return nil, fmt.Errorf("search materials: %w", err)
	}

	out := make([]Material, 0, len(records))
	for _, r := range records {
		out = append(out, Material{
			ID:          r.Id,
			Name:        r.GetString("name"),
			Category:    r.GetString("category"),
			Brand:       r.GetString("brand"),
			Unit:        r.GetString("unit"),
			UnitPrice:   r.GetFloat("unit_price"),
			Description: r.GetString("description"),
		})
	}
	return out, nil
}
