package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
)

// MigrateRevisionVersions renumbers the revisions of any BOQ where two
// revisions share a version_number, which is what rows stored before
// versioning look like. Affected revisions are numbered 0, 1, 2... by
// created timestamp.
// Safe to call on every startup -- returns early if nothing to migrate.
func MigrateRevisionVersions(app *pocketbase.PocketBase) error {
	revisionsCol, err := app.FindCollectionByNameOrId("boq_revisions")
	if err != nil {
		return fmt.Errorf("migrate: could not find boq_revisions collection: %w", err)
	}

	boqs, err := app.FindAllRecords("boqs")
	if err != nil {
		return fmt.Errorf("migrate: could not query BOQs: %w", err)
	}

	migrated := 0
	for _, boq := range boqs {
		revisions, err := app.FindRecordsByFilter(
			revisionsCol,
			"boq = {:boqId}",
			"created,id",
			0,
			0,
			dbx.Params{"boqId": boq.Id},
		)
		if err != nil {
			log.Printf("migrate: could not query revisions of BOQ %s: %v\n", boq.Id, err)
			continue
		}

		seen := make(map[int]bool, len(revisions))
		duplicated := false
		for _, rev := range revisions {
			v := rev.GetInt("version_number")
			if seen[v] {
				duplicated = true
				break
			}
			seen[v] = true
		}
		if !duplicated {
			continue
		}

		for i, rev := range revisions {
			if rev.GetInt("version_number") == i {
				continue
			}
			rev.Set("version_number", i)
			if err := app.Save(rev); err != nil {
				log.Printf("migrate: failed to renumber revision %s of BOQ %s: %v\n", rev.Id, boq.Id, err)
				continue
			}
		}
		migrated++
		log.Printf("migrate: renumbered %d revision(s) of BOQ %q (%s)\n", len(revisions), boq.GetString("title"), boq.Id)
	}

	if migrated > 0 {
		log.Println("migrate: revision version backfill complete.")
	}
	return nil
}
