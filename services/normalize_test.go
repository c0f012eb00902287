package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSnapshot_CurrentShape(t *testing.T) {
	raw := []byte(`{
		"version_number": 2,
		"created_at": "2026-03-14T09:30:00Z",
		"items": [{
			"item_name": "Partitions",
			"description": "Gypsum partitions to office floor",
			"sub_items": [{
				"sub_item_name": "Wall type A",
				"scope": "Supply and install",
				"quantity": 10,
				"rate": 100,
				"misc_percentage": 0,
				"materials": [{"material_name": "Board", "quantity": 4, "unit": "sheet", "unit_price": 25}],
				"labour": [{"labour_role": "Fixer", "hours": 8, "rate_per_hour": 15}]
			}]
		}],
		"preliminaries": {
			"amount": 200,
			"internal_cost_base": 100,
			"items": [{"description": "Site mobilisation", "selected": true}]
		},
		"discount_percentage": 10,
		"vat_percentage": 5,
		"terms_conditions": [
			{"terms_text": "Payment 30 days", "is_checked": true},
			{"terms_text": "Validity 15 days", "is_checked": false}
		]
	}`)

	s, err := NormalizeSnapshot(raw)
	require.NoError(t, err)

	assert.Equal(t, 2, s.VersionNumber)
	assert.True(t, s.CreatedAt.Equal(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)))
	require.Len(t, s.Items, 1)

	it := s.Items[0]
	assert.Equal(t, "Partitions", it.Name)
	assert.False(t, it.IsLegacy())
	require.Len(t, it.SubItems, 1)

	sub := it.SubItems[0]
	assert.Equal(t, "Wall type A", sub.Name)
	assert.Equal(t, "Supply and install", sub.Scope)
	require.NotNil(t, sub.MiscPercent)
	assert.Zero(t, *sub.MiscPercent)
	assert.Nil(t, sub.OverheadProfitPercent)
	assert.Equal(t, []MaterialLine{{Name: "Board", Quantity: 4, Unit: "sheet", UnitPrice: 25}}, sub.Materials)
	assert.Equal(t, []LabourLine{{Role: "Fixer", Hours: 8, RatePerHour: 15}}, sub.Labour)

	require.NotNil(t, s.Preliminaries)
	assert.Equal(t, 200.0, s.Preliminaries.Amount)
	assert.Equal(t, 100.0, s.Preliminaries.InternalCostBase)
	assert.Equal(t, []PreliminaryClause{{Description: "Site mobilisation", Selected: true}}, s.Preliminaries.Clauses)

	assert.Equal(t, 10.0, s.DiscountPercent)
	assert.True(t, s.VATEnabled, "a positive VAT percent with no toggle means enabled")
	assert.Equal(t, 5.0, s.VATPercent)
	assert.Equal(t, []string{"Payment 30 days"}, s.SelectedTerms())
}

func TestNormalizeSnapshot_LegacyAliases(t *testing.T) {
	raw := []byte(`{
		"revision_number": 1,
		"created": "2025-11-02 08:15:00.000Z",
		"boq_items": [{
			"description": "Blockwork",
			"qty": 10,
			"unit_rate": 80,
			"overhead_percentage": 10,
			"profit_margin_percentage": 15,
			"materials": [{"name": "Block", "qty": 100, "total_price": 350}],
			"labor": [{"role": "Mason", "no_of_hours": 16, "rate": 20}]
		}],
		"discount_amount": 50,
		"vat_enabled": false,
		"vat_percentage": 5,
		"terms": ["Prices exclude civil works"]
	}`)

	s, err := NormalizeSnapshot(raw)
	require.NoError(t, err)

	assert.Equal(t, 1, s.VersionNumber)
	assert.Equal(t, 2025, s.CreatedAt.Year())
	require.Len(t, s.Items, 1)

	it := s.Items[0]
	assert.Equal(t, "Blockwork", it.Name)
	assert.True(t, it.IsLegacy())
	assert.Equal(t, 10.0, it.Quantity)
	assert.Equal(t, 80.0, it.Rate)
	require.NotNil(t, it.OverheadPercent)
	assert.Equal(t, 10.0, *it.OverheadPercent)
	require.Len(t, it.Materials, 1)
	assert.InDelta(t, 3.5, it.Materials[0].UnitPrice, 1e-9)
	assert.Equal(t, []LabourLine{{Role: "Mason", Hours: 16, RatePerHour: 20}}, it.Labour)

	assert.Equal(t, 50.0, s.DiscountAmount)
	assert.False(t, s.VATEnabled)
	assert.Zero(t, s.VATPercent, "disabled VAT carries no percent")
	assert.Equal(t, []string{"Prices exclude civil works"}, s.SelectedTerms())
}

func TestNormalizeSnapshot_NullsAreAbsent(t *testing.T) {
	raw := []byte(`{"items": [{"name": "X", "sub_items": [{"name": "Y", "quantity": 1, "rate": 10, "transport_percentage": null}]}], "preliminaries": null}`)

	s, err := NormalizeSnapshot(raw)
	require.NoError(t, err)

	assert.Nil(t, s.Items[0].SubItems[0].TransportPercent)
	assert.Nil(t, s.Preliminaries)
}

func TestNormalizeSnapshot_Empty(t *testing.T) {
	s, err := NormalizeSnapshot([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, s.Items)
	assert.Equal(t, BOQTotals{}, CalcBOQTotals(s))
}

func TestNormalizeSnapshot_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"items": [`},
		{"array", `[1, 2, 3]`},
		{"string", `"snapshot"`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeSnapshot([]byte(tt.raw))
			if !errors.Is(err, ErrInvalidSnapshot) {
				t.Errorf("NormalizeSnapshot(%q) error = %v, want ErrInvalidSnapshot", tt.raw, err)
			}
		})
	}
}

func TestNormalizeSnapshot_TotalsMatchTyped(t *testing.T) {
	raw := []byte(`{
		"items": [{"name": "Works", "sub_items": [{"name": "Works", "quantity": 10, "rate": 100}]}],
		"preliminaries": {"amount": 200, "internal_cost_base": 100},
		"discount_percentage": 10,
		"vat_enabled": true,
		"vat_percentage": 5
	}`)

	s, err := NormalizeSnapshot(raw)
	require.NoError(t, err)

	assert.Equal(t, CalcBOQTotals(scenarioSnapshot()), CalcBOQTotals(s))
}
