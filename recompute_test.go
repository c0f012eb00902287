package main

import (
	"bytes"
	"strings"
	"testing"

	"boqrevisions/testhelpers"
)

const (
	paintV0 = `{"items": [{"item_name": "Works", "sub_items": [{"sub_item_name": "Paint", "unit": "sqm", "quantity": 10, "rate": 100}]}], "vat_percentage": 5}`
	paintV1 = `{"items": [{"item_name": "Works", "sub_items": [{"sub_item_name": "Paint", "unit": "sqm", "quantity": 12, "rate": 100}]}, {"item_name": "Ceiling"}], "vat_percentage": 5}`
)

func TestRunRecompute_LatestTotals(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	boq := testhelpers.CreateTestBOQ(t, app, "Fit-Out")
	testhelpers.CreateTestRevision(t, app, boq.Id, 0, paintV0)

	var out bytes.Buffer
	if err := runRecompute(app, &out, "AED", boq.Id, -1, -1); err != nil {
		t.Fatalf("runRecompute: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Fit-Out", "revision 0 [pending]", "AED 1,000.00", "VAT (5%)", "AED 50.00", "AED 1,050.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Changes since") {
		t.Errorf("no diff expected without --previous:\n%s", got)
	}
}

func TestRunRecompute_WithPrevious(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	boq := testhelpers.CreateTestBOQ(t, app, "Fit-Out")
	testhelpers.CreateTestRevision(t, app, boq.Id, 0, paintV0)
	testhelpers.CreateTestRevision(t, app, boq.Id, 1, paintV1)

	var out bytes.Buffer
	if err := runRecompute(app, &out, "AED", boq.Id, 1, 0); err != nil {
		t.Fatalf("runRecompute: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"revision 1",
		"AED 1,260.00",
		"Changes since revision 0: 2 item(s)",
		"~ Works: client cost",
		"~ Paint: quantity",
		"+ Ceiling (new)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunRecompute_Errors(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	empty := testhelpers.CreateTestBOQ(t, app, "Empty")

	tests := []struct {
		name    string
		boqID   string
		version int
	}{
		{"unknown boq", "missing", -1},
		{"no revisions", empty.Id, -1},
		{"unknown version", empty.Id, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := runRecompute(app, &out, "AED", tt.boqID, tt.version, -1); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRecomputeCmd_Flags(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	boq := testhelpers.CreateTestBOQ(t, app, "Fit-Out")
	testhelpers.CreateTestRevision(t, app, boq.Id, 0, paintV0)
	testhelpers.CreateTestRevision(t, app, boq.Id, 1, paintV1)

	cmd := newRecomputeCmd(app, "AED")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{boq.Id, "--version", "0"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "revision 0") {
		t.Errorf("output = %q, want revision 0", out.String())
	}

	cmd = newRecomputeCmd(app, "AED")
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error without a BOQ id")
	}
}
