package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

var (
	// ErrVersionNotIncreasing is returned when a stored revision would not
	// have a higher version number than every existing revision of its BOQ.
	ErrVersionNotIncreasing = errors.New("revision version must be greater than the latest version")

	// ErrRevisionNotFound is returned when a BOQ has no revision with the
	// requested version number.
	ErrRevisionNotFound = errors.New("revision not found")
)

// Revision review states.
const (
	RevisionPending  = "pending"
	RevisionApproved = "approved"
	RevisionRejected = "rejected"
)

// Revision is a stored snapshot together with its review state.
type Revision struct {
	ID            string      `json:"id"`
	BOQID         string      `json:"boq"`
	VersionNumber int         `json:"version_number"`
	Status        string      `json:"status"`
	DecisionNote  string      `json:"decision_note,omitempty"`
	DecidedBy     string      `json:"decided_by,omitempty"`
	Created       time.Time   `json:"created"`
	Snapshot      BOQSnapshot `json:"snapshot"`
}

func snapshotBytes(r *core.Record) []byte {
	if raw, ok := r.Get("snapshot").(types.JSONRaw); ok {
		return raw
	}
	return []byte(r.GetString("snapshot"))
}

func revisionFromRecord(r *core.Record) (Revision, error) {
	snap, err := NormalizeSnapshot(snapshotBytes(r))
	if err != nil {
		return Revision{}, fmt.Errorf("revision %s: %w", r.Id, err)
	}

	rev := Revision{
		ID:            r.Id,
		BOQID:         r.GetString("boq"),
		VersionNumber: r.GetInt("version_number"),
		Status:        r.GetString("status"),
		DecisionNote:  r.GetString("decision_note"),
		DecidedBy:     r.GetString("decided_by"),
		Snapshot:      snap,
	}
	if rev.Status == "" {
		rev.Status = RevisionPending
	}
	if dt := r.GetDateTime("created"); !dt.IsZero() {
		rev.Created = dt.Time()
	}

	// The record column is authoritative for ordering.
	rev.Snapshot.VersionNumber = rev.VersionNumber
	if rev.Snapshot.CreatedAt.IsZero() {
		rev.Snapshot.CreatedAt = rev.Created
	}
	return rev, nil
}

func findRevisionRecord(app core.App, boqID string, version int) (*core.Record, error) {
	records, err := app.FindAllRecords("boq_revisions", dbx.HashExp{
		"boq":            boqID,
		"version_number": version,
	})
	if err != nil {
		return nil, fmt.Errorf("query revision %d of BOQ %s: %w", version, boqID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: BOQ %s version %d", ErrRevisionNotFound, boqID, version)
	}
	return records[0], nil
}

// LoadRevision loads one version of a BOQ and normalizes its snapshot.
func LoadRevision(app *pocketbase.PocketBase, boqID string, version int) (Revision, error) {
	record, err := findRevisionRecord(app, boqID, version)
	if err != nil {
		return Revision{}, err
	}
	return revisionFromRecord(record)
}

// ListRevisions returns every revision of a BOQ ordered by version number.
func ListRevisions(app *pocketbase.PocketBase, boqID string) ([]Revision, error) {
	records, err := app.FindRecordsByFilter(
		"boq_revisions",
		"boq = {:boqId}",
		"version_number",
		0,
		0,
		dbx.Params{"boqId": boqID},
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions of BOQ %s: %w", boqID, err)
	}

	out := make([]Revision, 0, len(records))
	for _, r := range records {
		rev, err := revisionFromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, nil
}

// ListVersions returns the stored version numbers of a BOQ in ascending
// order without decoding any snapshot.
func ListVersions(app *pocketbase.PocketBase, boqID string) ([]int, error) {
	records, err := app.FindRecordsByFilter(
		"boq_revisions",
		"boq = {:boqId}",
		"version_number",
		0,
		0,
		dbx.Params{"boqId": boqID},
	)
	if err != nil {
		return nil, fmt.Errorf("list versions of BOQ %s: %w", boqID, err)
	}
	versions := make([]int, 0, len(records))
	for _, r := range records {
		versions = append(versions, r.GetInt("version_number"))
	}
	return versions, nil
}

// latestVersion returns the highest stored version of a BOQ, or -1 when it
// has none.
func latestVersion(app core.App, boqID string) (int, error) {
	records, err := app.FindRecordsByFilter(
		"boq_revisions",
		"boq = {:boqId}",
		"-version_number",
		1,
		0,
		dbx.Params{"boqId": boqID},
	)
	if err != nil {
		return 0, fmt.Errorf("latest revision of BOQ %s: %w", boqID, err)
	}
	if len(records) == 0 {
		return -1, nil
	}
	return records[0].GetInt("version_number"), nil
}

// SaveRevision stores snapshot as a new pending revision of a BOQ. A
// snapshot with VersionNumber 0 is given the next version; a non-zero
// VersionNumber is kept but must exceed every stored version.
func SaveRevision(app *pocketbase.PocketBase, boqID string, snapshot BOQSnapshot) (Revision, error) {
	if _, err := app.FindRecordById("boqs", boqID); err != nil {
		return Revision{}, fmt.Errorf("BOQ %s not found: %w", boqID, err)
	}

	col, err := app.FindCollectionByNameOrId("boq_revisions")
	if err != nil {
		return Revision{}, fmt.Errorf("could not find boq_revisions collection: %w", err)
	}

	var saved *core.Record
	err = app.RunInTransaction(func(txApp core.App) error {
		latest, err := latestVersion(txApp, boqID)
		if err != nil {
			return err
		}

		version := latest + 1
		if snapshot.VersionNumber != 0 {
			if snapshot.VersionNumber <= latest {
				return fmt.Errorf("%w: got %d, latest is %d", ErrVersionNotIncreasing, snapshot.VersionNumber, latest)
			}
			version = snapshot.VersionNumber
		}
		snapshot.VersionNumber = version
		if snapshot.CreatedAt.IsZero() {
			snapshot.CreatedAt = time.Now().UTC()
		}

		data, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}

		record := core.NewRecord(col)
		record.Set("boq", boqID)
		record.Set("version_number", version)
		record.Set("snapshot", types.JSONRaw(data))
		record.Set("status", RevisionPending)
		if err := txApp.Save(record); err != nil {
			return fmt.Errorf("save revision %d: %w", version, err)
		}
		saved = record
		return nil
	})
	if err != nil {
		return Revision{}, err
	}
	return revisionFromRecord(saved)
}

// DecideRevision records an approval or rejection on a revision.
func DecideRevision(app *pocketbase.PocketBase, boqID string, version int, status, note, decidedBy string) (Revision, error) {
	if status != RevisionApproved && status != RevisionRejected {
		return Revision{}, fmt.Errorf("invalid decision %q", status)
	}

	record, err := findRevisionRecord(app, boqID, version)
	if err != nil {
		return Revision{}, err
	}

	record.Set("status", status)
	record.Set("decision_note", note)
	record.Set("decided_by", decidedBy)
	if err := app.Save(record); err != nil {
		return Revision{}, fmt.Errorf("save decision on revision %d: %w", version, err)
	}
	return revisionFromRecord(record)
}
