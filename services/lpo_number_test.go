package services

import (
	"strings"
	"testing"
	"time"

	"boqrevisions/testhelpers"
)

func TestFormatLPONumber(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		ref    string
		year   int
		seq    int
		expect string
	}{
		{"first", "LPO", "BBT-004", 2026, 1, "LPO-BBT-004-2026-001"},
		{"sequential", "LPO", "BBT-004", 2026, 4, "LPO-BBT-004-2026-004"},
		{"custom prefix", "PO", "X1", 2025, 99, "PO-X1-2025-099"},
		{"four digit sequence", "LPO", "X1", 2025, 1000, "LPO-X1-2025-1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatLPONumber(tt.prefix, tt.ref, tt.year, tt.seq)
			if got != tt.expect {
				t.Errorf("formatLPONumber() = %q, want %q", got, tt.expect)
			}
		})
	}
}

func TestGenerateLPONumber_Sequence(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	boq := testhelpers.CreateTestBOQ(t, app, "LPO BOQ")
	now := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)

	first, err := GenerateLPONumber(app, "", boq.Id, now)
	if err != nil {
		t.Fatalf("GenerateLPONumber() error: %v", err)
	}
	if first != "LPO-TST-001-2026-001" {
		t.Errorf("first = %q, want LPO-TST-001-2026-001", first)
	}

	if _, err := SaveLPOCustomization(app, boq.Id, LPOCustomization{LPONumber: first}); err != nil {
		t.Fatalf("SaveLPOCustomization() error: %v", err)
	}

	second, err := GenerateLPONumber(app, "", boq.Id, now)
	if err != nil {
		t.Fatalf("GenerateLPONumber() error: %v", err)
	}
	if !strings.HasSuffix(second, "-002") {
		t.Errorf("second = %q, want sequence 002", second)
	}
}

func TestGenerateLPONumber_UnknownBOQ(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if _, err := GenerateLPONumber(app, "LPO", "missing", time.Now()); err == nil {
		t.Error("expected error for unknown BOQ")
	}
}
