package merge

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pysymbols/internal/diag"
)

// Test Plan for Merge:
// - Each inventory file appears under its full-version key
// - Values carry the file content verbatim as JSON
// - noPatch collapses patch releases onto the minor key, first file wins,
//   one warning per collision
// - Non-JSON files are skipped with a debug record, not an error
// - Invalid JSON inside a .json file is an error
// - Encode emits one indented JSON object

func writeInventory(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestMerge_FullVersionKeys(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeInventory(t, dir, "1.0.0.json", `["tf.zeros"]`)
	writeInventory(t, dir, "1.0.1.json", `["tf.zeros", "tf.ones"]`)
	writeInventory(t, dir, "2.0.0.json", `["tf.audio.decode_wav"]`)

	sink := diag.NewSink(nil, diag.LevelInfo)
	result, err := Merge(dir, false, sink)

	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.JSONEq(t, `["tf.zeros"]`, string(result["1.0.0"]))
	assert.JSONEq(t, `["tf.zeros", "tf.ones"]`, string(result["1.0.1"]))
	assert.JSONEq(t, `["tf.audio.decode_wav"]`, string(result["2.0.0"]))
	assert.Equal(t, 0, sink.CountAt(diag.LevelWarning))
}

func TestMerge_NoPatchCollapses(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeInventory(t, dir, "1.0.0.json", `["first"]`)
	writeInventory(t, dir, "1.0.1.json", `["second"]`)
	writeInventory(t, dir, "2.0.0.json", `["third"]`)

	sink := diag.NewSink(nil, diag.LevelInfo)
	result, err := Merge(dir, true, sink)

	require.NoError(t, err)
	require.Len(t, result, 2)
	// Entries merge in lexicographic name order, so 1.0.0 wins the 1.0 key.
	assert.JSONEq(t, `["first"]`, string(result["1.0"]))
	assert.JSONEq(t, `["third"]`, string(result["2.0"]))
	assert.Equal(t, 1, sink.CountAt(diag.LevelWarning))
}

func TestMerge_SkipsNonInventoryFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeInventory(t, dir, "1.0.0.json", `["tf.zeros"]`)
	writeInventory(t, dir, "README.md", "not json")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.json"), 0755))

	sink := diag.NewSink(nil, diag.LevelInfo)
	result, err := Merge(dir, false, sink)

	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.GreaterOrEqual(t, sink.CountAt(diag.LevelDebug), 2)
}

func TestMerge_InvalidJSONFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeInventory(t, dir, "1.0.0.json", `{truncated`)

	sink := diag.NewSink(nil, diag.LevelInfo)
	_, err := Merge(dir, false, sink)
	assert.Error(t, err)
}

func TestMerge_MissingDirectory(t *testing.T) {
	t.Parallel()

	sink := diag.NewSink(nil, diag.LevelInfo)
	_, err := Merge(filepath.Join(t.TempDir(), "absent"), false, sink)
	assert.Error(t, err)
}

func TestConsolidated_Encode(t *testing.T) {
	t.Parallel()

	c := Consolidated{
		"2.0": json.RawMessage(`["b"]`),
		"1.0": json.RawMessage(`["a"]`),
	}

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf))

	var decoded map[string][]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, map[string][]string{"1.0": {"a"}, "2.0": {"b"}}, decoded)

	// Keys come out sorted.
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(`"1.0"`)), bytes.Index(buf.Bytes(), []byte(`"2.0"`)))
}
