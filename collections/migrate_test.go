package collections_test

import (
	"sort"
	"testing"

	"boqrevisions/collections"
	"boqrevisions/testhelpers"
)

func TestMigrateRevisionVersions_RenumbersDuplicates(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	boq := testhelpers.CreateTestBOQ(t, app, "Legacy BOQ")
	for i := 0; i < 3; i++ {
		testhelpers.CreateTestRevision(t, app, boq.Id, 0, `{"items": []}`)
	}

	if err := collections.MigrateRevisionVersions(app); err != nil {
		t.Fatalf("MigrateRevisionVersions() error: %v", err)
	}

	revisions, err := app.FindAllRecords("boq_revisions")
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	var got []int
	for _, r := range revisions {
		got = append(got, r.GetInt("version_number"))
	}
	sort.Ints(got)
	want := []int{0, 1, 2}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("versions = %v, want %v", got, want)
		}
	}
}

func TestMigrateRevisionVersions_LeavesOrderedAlone(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	boq := testhelpers.CreateTestBOQ(t, app, "Ordered BOQ")
	r0 := testhelpers.CreateTestRevision(t, app, boq.Id, 0, `{"items": []}`)
	r5 := testhelpers.CreateTestRevision(t, app, boq.Id, 5, `{"items": []}`)

	if err := collections.MigrateRevisionVersions(app); err != nil {
		t.Fatalf("MigrateRevisionVersions() error: %v", err)
	}

	got0, _ := app.FindRecordById("boq_revisions", r0.Id)
	got5, _ := app.FindRecordById("boq_revisions", r5.Id)
	if got0.GetInt("version_number") != 0 || got5.GetInt("version_number") != 5 {
		t.Errorf("versions changed: %d, %d", got0.GetInt("version_number"), got5.GetInt("version_number"))
	}
}

func TestMigrateRevisionVersions_NoBOQs(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if err := collections.MigrateRevisionVersions(app); err != nil {
		t.Fatalf("MigrateRevisionVersions() error: %v", err)
	}
}
