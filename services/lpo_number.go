package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
)

// DefaultLPOPrefix is used when no prefix is configured.
const DefaultLPOPrefix = "LPO"

// formatLPONumber constructs the LPO number string from components.
func formatLPONumber(prefix, boqRef string, year, sequence int) string {
	return fmt.Sprintf("%s-%s-%d-%03d", prefix, boqRef, year, sequence)
}

// GenerateLPONumber creates the next LPO number for a BOQ.
// Format: {prefix}-{boq_ref}-{year}-{sequence}
//   - boq_ref: the BOQ's reference_number, or its ID when empty
//   - year: calendar year of now
//   - sequence: 3-digit zero-padded, per BOQ per year
func GenerateLPONumber(app *pocketbase.PocketBase, prefix, boqID string, now time.Time) (string, error) {
	boq, err := app.FindRecordById("boqs", boqID)
	if err != nil {
		return "", fmt.Errorf("BOQ not found: %w", err)
	}

	if prefix = strings.TrimSpace(prefix); prefix == "" {
		prefix = DefaultLPOPrefix
	}
	boqRef := boq.GetString("reference_number")
	if boqRef == "" {
		boqRef = boqID
	}

	stem := fmt.Sprintf("%s-%s-%d-", prefix, boqRef, now.Year())
	existing, err := app.FindRecordsByFilter(
		"lpo_customizations",
		"boq = {:boqId} && lpo_number ~ {:stem}",
		"",
		0,
		0,
		dbx.Params{
			"boqId": boqID,
			"stem":  stem + "%",
		},
	)
	if err != nil {
		// No customizations yet: start at 1.
		existing = nil
	}

	return formatLPONumber(prefix, boqRef, now.Year(), len(existing)+1), nil
}
