// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"boqrevisions/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestBOQ creates a BOQ record and returns it.
func CreateTestBOQ(t *testing.T, app *pocketbase.PocketBase, title string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("boqs")
	if err != nil {
		t.Fatalf("failed to find boqs collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("title", title)
	record.Set("project_name", "Test Project")
	record.Set("client_name", "Test Client")
	record.Set("reference_number", "TST-001")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test BOQ: %v", err)
	}

	return record
}

// CreateTestRevision stores a raw snapshot as the given version of a BOQ.
func CreateTestRevision(t *testing.T, app *pocketbase.PocketBase, boqID string, version int, snapshot string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("boq_revisions")
	if err != nil {
		t.Fatalf("failed to find boq_revisions collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("boq", boqID)
	record.Set("version_number", version)
	record.Set("snapshot", types.JSONRaw(snapshot))
	record.Set("status", collections.StatusPending)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test revision: %v", err)
	}

	return record
}

// CreateTestVendor creates a vendor record with the given name and returns it.
func CreateTestVendor(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("vendors")
	if err != nil {
		t.Fatalf("failed to find vendors collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("email", "vendor@example.com")
	record.Set("contact_person", "Test Contact")
	record.Set("phone", "+971 4 000 0000")
	record.Set("trn", "100000000000003")
	record.Set("address", "Dubai")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test vendor: %v", err)
	}

	return record
}

// CreateTestMaterial creates a raw material record and returns it.
func CreateTestMaterial(t *testing.T, app *pocketbase.PocketBase, name, category string, unitPrice float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("raw_materials")
	if err != nil {
		t.Fatalf("failed to find raw_materials collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("category", category)
	record.Set("unit", "pcs")
	record.Set("unit_price", unitPrice)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test material: %v", err)
	}

	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
