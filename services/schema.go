package services

import (
	"sync"

	"github.com/invopop/jsonschema"
)

var (
	snapshotSchemaOnce sync.Once
	snapshotSchema     *jsonschema.Schema
)

// BOQSnapshotSchema returns the JSON Schema of the canonical snapshot shape
// stored in boq_revisions.snapshot.
func BOQSnapshotSchema() *jsonschema.Schema {
	snapshotSchemaOnce.Do(func() {
		reflector := jsonschema.Reflector{
			AllowAdditionalProperties: true,
			DoNotReference:            true,
		}
		snapshotSchema = reflector.Reflect(&BOQSnapshot{})
		snapshotSchema.Title = "BOQ snapshot"
		snapshotSchema.Description = "One revision of a bill of quantities."
	})
	return snapshotSchema
}
