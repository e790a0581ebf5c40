package extract

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pysymbols/internal/diag"
)

// Test Plan for Gatherer:
// - Symbols are fully qualified with the normalized module name and sorted
// - Underscore-prefixed bound names never appear in the result
// - Two files normalizing to the same module keep duplicate symbols
// - An empty root propagates ErrNoFiles
// - WriteInventory round-trips through a version-keyed JSON array

func writeSource(t *testing.T, root, relPath, source string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(source), 0644))
}

func newGatherer(t *testing.T, sink *diag.Sink) *Gatherer {
	t.Helper()
	locator, err := NewLocator(DefaultPattern)
	require.NoError(t, err)
	return NewGatherer(locator, sink, GatherOptions{IgnoreErrors: true})
}

func TestGatherer_QualifiesAndSorts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSource(t, root, "pkg/_api/v2/v2/sub/__init__.py",
		"import a.b as c\nfrom d import pub\n")

	sink := diag.NewSink(nil, diag.LevelInfo)
	symbols, err := newGatherer(t, sink).Gather(context.Background(), root, "2.0.0")

	require.NoError(t, err)
	assert.Equal(t, []string{"pkg.v2.sub.c", "pkg.v2.sub.pub"}, symbols)
	assert.True(t, sort.StringsAreSorted(symbols))
}

func TestGatherer_DropsPrivateNames(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSource(t, root, "pkg/mod.py",
		"from m import _hidden\nimport _internal\nfrom m import __all_of_it\nfrom m import visible\n")

	sink := diag.NewSink(nil, diag.LevelInfo)
	symbols, err := newGatherer(t, sink).Gather(context.Background(), root, "1.0.0")

	require.NoError(t, err)
	assert.Equal(t, []string{"pkg.mod.visible"}, symbols)
}

func TestGatherer_DuplicateModulesNotDeduplicated(t *testing.T) {
	t.Parallel()

	// Both files normalize to pkg.sub: the package init and the shim copy.
	root := t.TempDir()
	writeSource(t, root, "pkg/sub/__init__.py", "from x import thing\n")
	writeSource(t, root, "pkg/_api/sub/__init__.py", "from y import thing\n")

	sink := diag.NewSink(nil, diag.LevelInfo)
	symbols, err := newGatherer(t, sink).Gather(context.Background(), root, "1.0.0")

	require.NoError(t, err)
	assert.Equal(t, []string{"pkg.sub.thing", "pkg.sub.thing"}, symbols)
}

func TestGatherer_PathPrefix(t *testing.T) {
	t.Parallel()

	// Gathering starts inside the API subdirectory of an extracted wheel;
	// the prefix restores the leading segments for normalization.
	root := t.TempDir()
	writeSource(t, root, "v2/audio/__init__.py", "from ops import decode_wav\n")

	locator, err := NewLocator(DefaultPattern)
	require.NoError(t, err)

	sink := diag.NewSink(nil, diag.LevelInfo)
	g := NewGatherer(locator, sink, GatherOptions{
		IgnoreErrors: true,
		PathPrefix:   "tensorflow/_api",
	})

	symbols, err := g.Gather(context.Background(), root, "2.4.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"tensorflow.audio.decode_wav"}, symbols)
}

func TestGatherer_EmptyRootFails(t *testing.T) {
	t.Parallel()

	sink := diag.NewSink(nil, diag.LevelInfo)
	_, err := newGatherer(t, sink).Gather(context.Background(), t.TempDir(), "1.0.0")

	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestWriteInventory_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "data")
	symbols := []string{"tf.audio.decode_wav", "tf.zeros"}

	path, err := WriteInventory(dir, "2.4.0", symbols)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2.4.0.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, symbols, got)
}

func TestWriteInventory_EmptyStaysArray(t *testing.T) {
	t.Parallel()

	path, err := WriteInventory(t.TempDir(), "0.1.0", []string{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}
