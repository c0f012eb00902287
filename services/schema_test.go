package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestBOQSnapshotSchema(t *testing.T) {
	data, err := json.Marshal(BOQSnapshotSchema())
	require.NoError(t, err)
	schema := gjson.ParseBytes(data)

	assert.Equal(t, "BOQ snapshot", schema.Get("title").String())
	assert.Equal(t, "object", schema.Get("type").String())
	assert.Equal(t, "array", schema.Get("properties.items.type").String())
	assert.Equal(t, "integer", schema.Get("properties.version_number.type").String())
	assert.True(t, schema.Get("properties.items.items.properties.sub_items").Exists())
	assert.True(t, schema.Get("properties.preliminaries.properties.internal_cost_base").Exists())

	// Cached.
	assert.Same(t, BOQSnapshotSchema(), BOQSnapshotSchema())
}
