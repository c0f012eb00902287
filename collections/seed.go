package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type materialDef struct {
	name        string
	category    string
	brand       string
	unit        string
	unitPrice   float64
	description string
}

type vendorDef struct {
	name          string
	email         string
	contactPerson string
	phone         string
	trn           string
	address       string
}

// ── Seed data ────────────────────────────────────────────────────────────

var seedMaterials = []materialDef{
	{"Gypsum Board 12.5mm", "Drywall", "Gyproc", "sheet", 28.50, "Standard plasterboard 1200x2400"},
	{"Metal Stud 70mm", "Drywall", "Gyproc", "length", 9.75, "C-stud 3m length"},
	{"Ceiling Tile 600x600", "Ceilings", "Armstrong", "pcs", 14.00, "Mineral fibre lay-in tile"},
	{"Emulsion Paint", "Finishes", "Jotun", "litre", 22.00, "Interior matt emulsion"},
	{"Porcelain Tile 600x600", "Flooring", "RAK Ceramics", "sqm", 45.00, "Polished porcelain"},
	{"Tile Adhesive", "Flooring", "Mapei", "bag", 32.00, "20kg cementitious adhesive"},
	{"Cement OPC", "Civil", "", "bag", 18.50, "50kg ordinary portland cement"},
}

var seedVendors = []vendorDef{
	{"Gulf Drywall Supplies LLC", "sales@gulfdrywall.example", "Rahul Menon", "+971 4 555 0101", "100234567800003", "Al Quoz Industrial 3, Dubai"},
	{"Emirates Flooring Trading", "orders@emiratesflooring.example", "Sara Haddad", "+971 6 555 0202", "100765432100003", "Industrial Area 12, Sharjah"},
}

// originalSnapshot is revision 0 of the seed BOQ, stored in the shape the
// estimating screens post.
func originalSnapshot() map[string]any {
	return map[string]any{
		"version_number": 0,
		"items": []map[string]any{
			{
				"item_name":   "Partitions",
				"description": "Gypsum board partitions to office floor",
				"sub_items": []map[string]any{
					{
						"sub_item_name": "Partition type P1",
						"scope":         "Supply and install",
						"size":          "2.7m high",
						"unit":          "sqm",
						"quantity":      120,
						"rate":          95,
						"materials": []map[string]any{
							{"material_name": "Gypsum Board 12.5mm", "quantity": 90, "unit": "sheet", "unit_price": 28.5},
							{"material_name": "Metal Stud 70mm", "quantity": 160, "unit": "length", "unit_price": 9.75},
						},
						"labour": []map[string]any{
							{"labour_role": "Drywall fixer", "hours": 96, "rate_per_hour": 18},
						},
					},
				},
			},
			{
				"item_name":   "Flooring",
				"description": "Porcelain tiling to open office",
				"sub_items": []map[string]any{
					{
						"sub_item_name": "Floor tiling",
						"unit":          "sqm",
						"quantity":      250,
						"rate":          110,
						"materials": []map[string]any{
							{"material_name": "Porcelain Tile 600x600", "quantity": 265, "unit": "sqm", "unit_price": 45},
							{"material_name": "Tile Adhesive", "quantity": 60, "unit": "bag", "unit_price": 32},
						},
						"labour": []map[string]any{
							{"labour_role": "Tiler", "hours": 160, "rate_per_hour": 20},
						},
					},
				},
			},
		},
		"preliminaries": map[string]any{
			"amount":             4500,
			"internal_cost_base": 2500,
			"items": []map[string]any{
				{"description": "Site mobilisation and hoarding", "selected": true},
				{"description": "Authority approvals", "selected": true},
			},
		},
		"discount_percentage": 0,
		"vat_enabled":         true,
		"vat_percentage":      5,
		"terms_conditions": []map[string]any{
			{"text": "Payment 30 days from invoice", "selected": true},
			{"text": "Quotation valid for 15 days", "selected": true},
		},
	}
}

// revisedSnapshot is revision 1: P1 rate revised, a ceiling item added and a
// 5% discount applied.
func revisedSnapshot() map[string]any {
	s := originalSnapshot()
	s["version_number"] = 1
	items := s["items"].([]map[string]any)
	p1 := items[0]["sub_items"].([]map[string]any)[0]
	p1["rate"] = 102
	items = append(items, map[string]any{
		"item_name":   "Ceilings",
		"description": "Suspended ceiling to office floor",
		"sub_items": []map[string]any{
			{
				"sub_item_name":        "Lay-in ceiling",
				"unit":                 "sqm",
				"quantity":             250,
				"rate":                 65,
				"transport_percentage": 3,
				"materials": []map[string]any{
					{"material_name": "Ceiling Tile 600x600", "quantity": 700, "unit": "pcs", "unit_price": 14},
				},
				"labour": []map[string]any{
					{"labour_role": "Ceiling fixer", "hours": 80, "rate_per_hour": 18},
				},
			},
		},
	})
	s["items"] = items
	s["discount_percentage"] = 5
	return s
}

// Seed populates the collections with a fit-out BOQ carrying two revisions,
// a small raw-material catalog and two vendors. It is safe to call on every
// startup because it returns early if any BOQ records already exist.
func Seed(app *pocketbase.PocketBase) error {
	// ── idempotency: skip if BOQs already exist ──────────────────────
	boqsCol, err := app.FindCollectionByNameOrId("boqs")
	if err != nil {
		return fmt.Errorf("seed: could not find boqs collection: %w", err)
	}
	existing, err := app.FindAllRecords(boqsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query boqs: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: boqs collection is empty – inserting seed data …")

	revisionsCol, err := app.FindCollectionByNameOrId("boq_revisions")
	if err != nil {
		return fmt.Errorf("seed: could not find boq_revisions collection: %w", err)
	}
	materialsCol, err := app.FindCollectionByNameOrId("raw_materials")
	if err != nil {
		return fmt.Errorf("seed: could not find raw_materials collection: %w", err)
	}
	vendorsCol, err := app.FindCollectionByNameOrId("vendors")
	if err != nil {
		return fmt.Errorf("seed: could not find vendors collection: %w", err)
	}

	boq := core.NewRecord(boqsCol)
	boq.Set("title", "Office Fit-Out Level 4")
	boq.Set("project_name", "Business Bay Tower")
	boq.Set("client_name", "Al Noor Holdings")
	boq.Set("reference_number", "BBT-004")
	if err := app.Save(boq); err != nil {
		return fmt.Errorf("seed: save boq: %w", err)
	}

	revisions := []struct {
		version  int
		status   string
		snapshot map[string]any
	}{
		{0, StatusApproved, originalSnapshot()},
		{1, StatusPending, revisedSnapshot()},
	}
	for _, rv := range revisions {
		r := core.NewRecord(revisionsCol)
		r.Set("boq", boq.Id)
		r.Set("version_number", rv.version)
		r.Set("snapshot", rv.snapshot)
		r.Set("status", rv.status)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save revision %d: %w", rv.version, err)
		}
	}

	for _, d := range seedMaterials {
		r := core.NewRecord(materialsCol)
		r.Set("name", d.name)
		r.Set("category", d.category)
		r.Set("brand", d.brand)
		r.Set("unit", d.unit)
		r.Set("unit_price", d.unitPrice)
		r.Set("description", d.description)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save material %q: %w", d.name, err)
		}
	}

	for _, d := range seedVendors {
		r := core.NewRecord(vendorsCol)
		r.Set("name", d.name)
		r.Set("email", d.email)
		r.Set("contact_person", d.contactPerson)
		r.Set("phone", d.phone)
		r.Set("trn", d.trn)
		r.Set("address", d.address)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save vendor %q: %w", d.name, err)
		}
	}

	log.Printf("seed: inserted 1 BOQ, %d revisions, %d materials, %d vendors\n",
		len(revisions), len(seedMaterials), len(seedVendors))
	return nil
}
