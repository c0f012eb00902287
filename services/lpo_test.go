package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boqrevisions/testhelpers"
)

func lpoSnapshot() BOQSnapshot {
	return BOQSnapshot{
		VersionNumber: 2,
		Items: []Item{
			{
				Name: "Partitions",
				SubItems: []SubItem{
					{Name: "P1", Unit: "sqm", Quantity: 10, Rate: 50},
					{Name: "Partitions", Unit: "sqm", Quantity: 2, Rate: 25},
				},
			},
			{Name: "Skirting", Unit: "m", Quantity: 4, Rate: 12.5},
		},
		Preliminaries: &Preliminaries{Amount: 400},
		TermsConditions: []TermsClause{
			{Text: "Payment 30 days", Selected: true},
			{Text: "Validity 15 days", Selected: false},
		},
	}
}

func TestNormalizeLPOCustomization(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		expect LPOCustomization
	}{
		{
			name: "current field names",
			raw:  `{"delivery_terms": "2 weeks", "vat_enabled": true, "vat_percent": 5, "selected_terms": ["A", "", "B"]}`,
			expect: LPOCustomization{
				DeliveryTerms: "2 weeks",
				VATEnabled:    true,
				VATPercent:    5,
				SelectedTerms: []string{"A", "B"},
			},
		},
		{
			name: "completion terms alias",
			raw:  `{"completion_terms": "On site by May", "vat_percentage": 5}`,
			expect: LPOCustomization{
				DeliveryTerms: "On site by May",
				VATEnabled:    true,
				VATPercent:    5,
			},
		},
		{
			name:   "explicit vat off wins over percent",
			raw:    `{"vat_enabled": false, "vat_percent": 5, "custom_notes": "n"}`,
			expect: LPOCustomization{VATPercent: 5, Notes: "n"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeLPOCustomization([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestNormalizeLPOCustomization_Invalid(t *testing.T) {
	for _, raw := range []string{`not json`, `[1, 2]`} {
		if _, err := NormalizeLPOCustomization([]byte(raw)); err == nil {
			t.Errorf("NormalizeLPOCustomization(%q) expected error", raw)
		}
	}
}

func TestBuildLPODocument_Lines(t *testing.T) {
	doc := BuildLPODocument(LPOInput{
		Snapshot:          lpoSnapshot(),
		Customization:     LPOCustomization{LPONumber: "LPO-1", VATEnabled: true},
		DefaultVATPercent: 5,
	})

	require.Len(t, doc.Lines, 3)
	assert.Equal(t, "Partitions – P1", doc.Lines[0].Description)
	assert.Equal(t, 500.0, doc.Lines[0].Amount)
	assert.Equal(t, "Partitions", doc.Lines[1].Description)
	assert.Equal(t, "Skirting", doc.Lines[2].Description)
	assert.Equal(t, 3, doc.Lines[2].No)

	require.NotNil(t, doc.Preliminaries)
	assert.Equal(t, 4, doc.Preliminaries.No)
	assert.Equal(t, 400.0, doc.Preliminaries.Amount)

	assert.Equal(t, DefaultCurrency, doc.Currency)
	assert.Equal(t, 2, doc.RevisionVersion)
	assert.Equal(t, "LPO-1", doc.LPONumber)
}

func TestBuildLPODocument_VATToggle(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		percent   float64
		wantVAT   float64
		wantGrand float64
		wantWords string
	}{
		{"enabled restores default", true, 0, 50, 1050, "One Thousand and Fifty Dirhams Only"},
		{"enabled keeps custom percent", true, 10, 100, 1100, "One Thousand One Hundred Dirhams Only"},
		{"disabled ignores percent", false, 5, 0, 1000, "One Thousand Dirhams Only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := BuildLPODocument(LPOInput{
				Snapshot:          lpoSnapshot(),
				Customization:     LPOCustomization{VATEnabled: tt.enabled, VATPercent: tt.percent},
				DefaultVATPercent: 5,
			})
			assert.InDelta(t, 1000, doc.Totals.GrandTotalExclVAT, 1e-9)
			assert.InDelta(t, tt.wantVAT, doc.Totals.VATAmount, 1e-9)
			assert.InDelta(t, tt.wantGrand, doc.Totals.GrandTotal, 1e-9)
			assert.Equal(t, tt.wantWords, doc.AmountInWords)
		})
	}
}

func TestBuildLPODocument_Terms(t *testing.T) {
	fromSnapshot := BuildLPODocument(LPOInput{Snapshot: lpoSnapshot()})
	assert.Equal(t, []string{"Payment 30 days"}, fromSnapshot.Terms)

	custom := BuildLPODocument(LPOInput{
		Snapshot:      lpoSnapshot(),
		Customization: LPOCustomization{SelectedTerms: []string{"Delivery to site"}},
	})
	assert.Equal(t, []string{"Delivery to site"}, custom.Terms)
}

func TestBuildLPODocument_NoPreliminaries(t *testing.T) {
	s := lpoSnapshot()
	s.Preliminaries = nil
	doc := BuildLPODocument(LPOInput{Snapshot: s})
	assert.Nil(t, doc.Preliminaries)
	assert.InDelta(t, 600, doc.Totals.GrandTotal, 1e-9)
}

func TestLPOCustomization_SaveAndLoad(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	boq := testhelpers.CreateTestBOQ(t, app, "Customization BOQ")
	vendor := testhelpers.CreateTestVendor(t, app, "Custom Vendor")

	_, found, err := LoadLPOCustomization(app, boq.Id, vendor.Id)
	require.NoError(t, err)
	assert.False(t, found)

	saved, err := SaveLPOCustomization(app, boq.Id, LPOCustomization{
		VendorID:      vendor.Id,
		LPONumber:     "LPO-TST-001-2026-001",
		DeliveryTerms: "Two weeks",
		VATEnabled:    true,
		VATPercent:    5,
		SelectedTerms: []string{"Payment 30 days"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	// A second save replaces the first.
	_, err = SaveLPOCustomization(app, boq.Id, LPOCustomization{
		VendorID:      vendor.Id,
		LPONumber:     "LPO-TST-001-2026-001",
		DeliveryTerms: "Three weeks",
	})
	require.NoError(t, err)

	got, found, err := LoadLPOCustomization(app, boq.Id, vendor.Id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "Three weeks", got.DeliveryTerms)
	assert.False(t, got.VATEnabled)
	assert.Empty(t, got.SelectedTerms)

	// Customizations are per vendor.
	_, found, err = LoadLPOCustomization(app, boq.Id, "")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLPOPreview(t *testing.T) {
	doc := BuildLPODocument(LPOInput{
		Snapshot:          lpoSnapshot(),
		Customization:     LPOCustomization{LPONumber: "LPO-9", VATEnabled: true, DeliveryTerms: "Site <B2>"},
		Company:           Company{Name: "Acme Interiors"},
		Vendor:            LPOVendor{Name: "Gulf Supplies"},
		Buyer:             CurrentUser{Name: "Priya"},
		DefaultVATPercent: 5,
		Date:              time.Date(2026, time.May, 4, 0, 0, 0, 0, time.UTC),
	})

	var buf bytes.Buffer
	require.NoError(t, LPOPreview(doc).Render(context.Background(), &buf))

	testhelpers.AssertHTMLContains(t, buf.String(),
		"Acme Interiors",
		"LPO-9",
		"04 May 2026",
		"Gulf Supplies",
		"Partitions – P1",
		"Preliminaries",
		"AED 1,050.00",
		"VAT (5%)",
		"One Thousand and Fifty Dirhams Only",
		"Site &lt;B2&gt;",
		"Prepared by: Priya",
	)
}
