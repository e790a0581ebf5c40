// Package merge folds many per-version inventory files into one
// consolidated JSON object keyed by version.
package merge

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pysymbols/internal/diag"
)

const inventoryExt = ".json"

// Consolidated maps a reconciliation key to that version's inventory,
// carried verbatim as raw JSON. Marshaling emits keys in sorted order.
type Consolidated map[string]json.RawMessage

// Merge reads every inventory file in dir and folds them into one mapping.
//
// Entries are processed in lexicographic name order, so duplicate keys
// resolve deterministically: the first file wins and later ones are
// discarded unread, with a warning. With noPatch set the reconciliation
// key drops its last dot-separated component, collapsing patch releases
// of one minor line onto a single key. Files that are not regular or do
// not end in .json are skipped with a debug record.
func Merge(dir string, noPatch bool, sink *diag.Sink) (Consolidated, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	result := make(Consolidated)
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !strings.HasSuffix(name, inventoryExt) {
			sink.Debug("skipping file", diag.Fields{"file": name})
			continue
		}

		key := reconciliationKey(name, noPatch)
		if _, ok := result[key]; ok {
			sink.Warning("multiple versions detected", diag.Fields{
				"key":  key,
				"file": name,
			})
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}

		var inventory json.RawMessage
		if err := json.Unmarshal(data, &inventory); err != nil {
			return nil, fmt.Errorf("invalid inventory %s: %w", name, err)
		}
		result[key] = inventory
	}

	return result, nil
}

// reconciliationKey derives the output key for one inventory file name:
// the name without its extension, optionally without the patch component.
func reconciliationKey(name string, noPatch bool) string {
	key := strings.TrimSuffix(name, inventoryExt)
	if noPatch {
		if i := strings.LastIndex(key, "."); i >= 0 {
			key = key[:i]
		}
	}
	return key
}

// Encode writes the consolidated mapping as one indented JSON object.
func (c Consolidated) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
