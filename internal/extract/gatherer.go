package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"

	"pysymbols/internal/diag"
	"pysymbols/internal/pyast"
)

// GatherOptions tunes one extraction run.
type GatherOptions struct {
	// IgnoreErrors skips files that fail to parse instead of aborting the
	// run. This is the mode the CLI relies on.
	IgnoreErrors bool

	// Progress renders a per-file progress bar on stderr.
	Progress bool

	// PathPrefix is prepended to each file's root-relative path before
	// module-path normalization. When gathering starts inside a package's
	// API subdirectory, this carries the stripped leading segments (e.g.
	// "tensorflow/_api") so normalization still sees the full path.
	PathPrefix string
}

// Gatherer drives discovery, parsing, and module-path normalization across
// every file of one materialized release.
type Gatherer struct {
	locator *Locator
	sink    *diag.Sink
	opts    GatherOptions
}

// NewGatherer creates a gatherer reporting through the given sink.
func NewGatherer(locator *Locator, sink *diag.Sink, opts GatherOptions) *Gatherer {
	return &Gatherer{locator: locator, sink: sink, opts: opts}
}

// Gather extracts every fully qualified public symbol reachable through the
// files below root, sorted lexicographically.
//
// Underscore-prefixed bound names are private and dropped. Two files that
// normalize to the same module name contribute independently, so the result
// may repeat a fully qualified name. An empty root is ErrNoFiles; a parse
// failure is fatal only when IgnoreErrors is off.
func (g *Gatherer) Gather(ctx context.Context, root, version string) ([]string, error) {
	files, err := g.locator.Locate(root)
	if err != nil {
		return nil, err
	}

	g.sink.Info("gathering symbols", diag.Fields{
		"version": version,
		"files":   fmt.Sprintf("%d", len(files)),
	})

	var bar *progressbar.ProgressBar
	if g.opts.Progress {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Parsing "+version),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	symbols := []string{}
	for _, path := range files {
		if bar != nil {
			bar.Add(1)
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil, err
		}
		if g.opts.PathPrefix != "" {
			relPath = g.opts.PathPrefix + "/" + filepath.ToSlash(relPath)
		}

		fileSymbols, err := g.gatherFile(ctx, path, relPath)
		if err != nil {
			if !g.opts.IgnoreErrors {
				return nil, fmt.Errorf("gathering %s: %w", path, err)
			}
			g.sink.Warning("skipping unparseable file", diag.Fields{
				"file":  path,
				"error": err.Error(),
			})
			continue
		}
		symbols = append(symbols, fileSymbols...)
	}

	sort.Strings(symbols)
	return symbols, nil
}

// gatherFile parses one file and qualifies its public bound names with the
// module name the file represents.
func (g *Gatherer) gatherFile(ctx context.Context, path, relPath string) ([]string, error) {
	file, err := pyast.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	imports := pyast.CollectImports(file, g.sink)
	module := ModuleName(relPath)

	var symbols []string
	for _, name := range imports.BoundNames() {
		if strings.HasPrefix(name, "_") {
			continue
		}
		symbols = append(symbols, module+"."+name)
	}
	return symbols, nil
}

// WriteInventory persists one version's symbols as an indented JSON array
// at <dir>/<version>.json, creating dir if needed. Returns the written path.
func WriteInventory(dir, version string, symbols []string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(symbols, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal inventory: %w", err)
	}

	path := filepath.Join(dir, version+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write inventory: %w", err)
	}
	return path, nil
}
