package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"boqrevisions/testhelpers"
)

func TestParseCSV_Valid(t *testing.T) {
	input := "Name,Unit,Rate\nCement,bag,18.5\nSand,ton,40\n"
	headers, rows, err := parseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseCSV() error = %v", err)
	}
	if len(headers) != 3 {
		t.Errorf("expected 3 headers, got %d", len(headers))
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 data rows, got %d", len(rows))
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	_, _, err := parseCSV(strings.NewReader("Name,Unit\n"))
	if err == nil {
		t.Fatal("expected error for header-only file")
	}
	if !strings.Contains(err.Error(), "at least one data row") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMapCatalogHeaders(t *testing.T) {
	mapped, ignored := mapCatalogHeaders([]string{" Material Name ", "UOM", "Unit Price *", "Supplier", ""})
	assert.Equal(t, []string{"name", "unit", "unit_price", "", ""}, mapped)
	assert.Equal(t, []string{"Supplier"}, ignored)
}

func TestParseMaterialCatalog_CSV(t *testing.T) {
	input := strings.Join([]string{
		"Name,Category,Brand,Unit,Unit Price,Description",
		"Gypsum Board,Drywall,Gyproc,sheet,28.50,12.5mm board",
		",Drywall,Gyproc,sheet,10,missing name",
		"Stud,Drywall,,length,abc,",
		"Paint,Finishes,Jotun,litre,-4,",
		",,,,,",
		"Tile Adhesive,Flooring,Mapei,bag,\"1,032.00\",",
	}, "\n")

	got, err := ParseMaterialCatalog(strings.NewReader(input), "catalog.CSV")
	require.NoError(t, err)

	assert.Equal(t, 5, got.TotalRows, "blank rows are skipped")
	assert.Equal(t, 2, got.ValidRows)
	assert.Equal(t, 3, got.ErrorRows)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, MaterialRow{
		Row: 2, Name: "Gypsum Board", Category: "Drywall", Brand: "Gyproc", Unit: "sheet", UnitPrice: 28.5, Description: "12.5mm board",
	}, got.Rows[0])
	assert.Equal(t, 1032.0, got.Rows[1].UnitPrice)
	assert.Equal(t, 7, got.Rows[1].Row)

	byRow := map[int]ValidationError{}
	for _, e := range got.Errors {
		byRow[e.Row] = e
	}
	assert.Equal(t, ValidationError{Row: 3, Field: "Name", Message: "Name is required"}, byRow[3])
	assert.Equal(t, "Unit Price", byRow[4].Field)
	assert.Contains(t, byRow[4].Message, "not a number")
	assert.Equal(t, ValidationError{Row: 5, Field: "Unit Price", Message: "Unit Price cannot be negative"}, byRow[5])
}

func TestParseMaterialCatalog_RowErrorOrder(t *testing.T) {
	input := strings.Join([]string{
		"Name,Category,Brand,Unit,Unit Price",
		"," + strings.Repeat("c", 101) + "," + strings.Repeat("b", 101) + "," + strings.Repeat("u", 31) + ",-1",
	}, "\n")

	for i := 0; i < 5; i++ {
		got, err := ParseMaterialCatalog(strings.NewReader(input), "catalog.csv")
		require.NoError(t, err)
		assert.Equal(t, 1, got.ErrorRows)
		assert.Equal(t, []ValidationError{
			{Row: 2, Field: "Brand", Message: "Brand is too long"},
			{Row: 2, Field: "Category", Message: "Category is too long"},
			{Row: 2, Field: "Name", Message: "Name is required"},
			{Row: 2, Field: "Unit", Message: "Unit is too long"},
			{Row: 2, Field: "Unit Price", Message: "Unit Price cannot be negative"},
		}, got.Errors)
	}
}

func TestParseMaterialCatalog_Excel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Material", "UOM", "Rate"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Ceiling Tile", "pcs", 14}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Grid Main Tee", "length", 6.25}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	got, err := ParseMaterialCatalog(bytesReader(buf.Bytes()), "catalog.xlsx")
	require.NoError(t, err)

	assert.Empty(t, got.Errors)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Ceiling Tile", got.Rows[0].Name)
	assert.Equal(t, "pcs", got.Rows[0].Unit)
	assert.Equal(t, 6.25, got.Rows[1].UnitPrice)
}

func TestParseMaterialCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		body     string
		errPart  string
	}{
		{"unsupported extension", "catalog.pdf", "Name\nX\n", "unsupported file format"},
		{"no name column", "catalog.csv", "Unit,Rate\nbag,10\n", "no Name column"},
		{"header only", "catalog.csv", "Name\n", "at least one data row"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMaterialCatalog(strings.NewReader(tt.body), tt.fileName)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestImportMaterials_Upserts(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	existing := testhelpers.CreateTestMaterial(t, app, "Cement OPC", "Civil", 17)

	summary, err := ImportMaterials(app, []MaterialRow{
		{Row: 2, Name: "cement opc", Category: "Civil", Unit: "bag", UnitPrice: 18.5},
		{Row: 3, Name: "Sand", Category: "Civil", Unit: "ton", UnitPrice: 40},
	})
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Created: 1, Updated: 1}, summary)

	updated, err := app.FindRecordById("raw_materials", existing.Id)
	require.NoError(t, err)
	assert.Equal(t, 18.5, updated.GetFloat("unit_price"))
	assert.Equal(t, "bag", updated.GetString("unit"))

	all, err := app.FindAllRecords("raw_materials")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSearchMaterials(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestMaterial(t, app, "Gypsum Board", "Drywall", 28.5)
	testhelpers.CreateTestMaterial(t, app, "Metal Stud", "Drywall", 9.75)
	testhelpers.CreateTestMaterial(t, app, "Emulsion Paint", "Finishes", 22)

	got, err := SearchMaterials(app, "drywall", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Gypsum Board", got[0].Name)
	assert.Equal(t, "Metal Stud", got[1].Name)

	got, err = SearchMaterials(app, "", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
