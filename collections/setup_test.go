package collections_test

import (
	"testing"

	"boqrevisions/collections"
	"boqrevisions/testhelpers"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	"boqs",
	"boq_revisions",
	"raw_materials",
	"vendors",
	"lpo_customizations",
	"vendor_emails",
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t) // Setup() already called once via NewTestApp

	ids := make(map[string]string)
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		ids[name] = col.Id
	}

	collections.Setup(app)

	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q missing after second Setup(): %v", name, err)
			continue
		}
		if col.Id != ids[name] {
			t.Errorf("collection %q id changed after second Setup(): %s -> %s", name, ids[name], col.Id)
		}
	}
}

func TestSetup_Fields(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	tests := []struct {
		collection string
		fields     []string
	}{
		{"boqs", []string{"title", "project_name", "client_name", "reference_number", "created", "updated"}},
		{"boq_revisions", []string{"boq", "version_number", "snapshot", "status", "decision_note", "decided_by", "created"}},
		{"raw_materials", []string{"name", "category", "brand", "unit", "unit_price", "description"}},
		{"vendors", []string{"name", "email", "contact_person", "phone", "trn", "address"}},
		{"lpo_customizations", []string{
			"boq", "vendor", "lpo_number", "quotation_ref", "delivery_terms", "payment_terms",
			"warranty_terms", "notes", "vat_enabled", "vat_percent", "selected_terms",
			"signatory_name", "signatory_title",
		}},
		{"vendor_emails", []string{"boq", "vendor", "to", "cc", "subject", "status", "message_id", "error", "created"}},
	}
	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			col, err := app.FindCollectionByNameOrId(tt.collection)
			if err != nil {
				t.Fatalf("collection %q not found: %v", tt.collection, err)
			}
			for _, f := range tt.fields {
				if col.Fields.GetByName(f) == nil {
					t.Errorf("%s: missing field %q", tt.collection, f)
				}
			}
		})
	}
}

func TestSetup_RevisionsCascadeWithBOQ(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	boq := testhelpers.CreateTestBOQ(t, app, "Cascade BOQ")
	rev := testhelpers.CreateTestRevision(t, app, boq.Id, 0, `{"items": []}`)

	if err := app.Delete(boq); err != nil {
		t.Fatalf("delete boq: %v", err)
	}
	if _, err := app.FindRecordById("boq_revisions", rev.Id); err == nil {
		t.Error("expected revision to be cascade deleted")
	}
}
