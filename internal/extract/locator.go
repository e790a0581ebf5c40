// Package extract walks a materialized package release and produces its
// sorted inventory of fully qualified public symbols.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// ErrNoFiles means the locator found nothing to process at the given path.
var ErrNoFiles = errors.New("no source files found")

// DefaultPattern matches Python source files at any depth.
const DefaultPattern = "**/*.py"

// Locator discovers the source files to parse below a root path.
type Locator struct {
	pattern  string
	compiled glob.Glob
}

// NewLocator compiles the source-file pattern used during discovery.
func NewLocator(pattern string) (*Locator, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid source pattern %q: %w", pattern, err)
	}
	return &Locator{pattern: pattern, compiled: g}, nil
}

// Locate returns the files to parse under root.
//
// A root naming a single file yields exactly that file. A directory root
// yields every file below it matching the pattern, in filepath.Walk's
// lexical traversal order. An empty result is ErrNoFiles.
func (l *Locator) Locate(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if l.matches(filepath.ToSlash(relPath)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s (pattern %s)", ErrNoFiles, root, l.pattern)
	}
	return files, nil
}

// matches checks the relative path against the pattern. Paths in the root
// itself have no directory component, so a "**/" prefix is also tried
// without it.
func (l *Locator) matches(relPath string) bool {
	if l.compiled.Match(relPath) {
		return true
	}

	if len(l.pattern) > 3 && l.pattern[:3] == "**/" {
		if g, err := glob.Compile(l.pattern[3:], '/'); err == nil {
			return g.Match(relPath)
		}
	}
	return false
}
