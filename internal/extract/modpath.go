package extract

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	sourceExt  = ".py"
	initModule = "__init__"
	apiShimDir = "_api"
)

var versionSegment = regexp.MustCompile(`^v\d+$`)

// ModuleName derives the dotted public module name a file represents from
// its path relative to the gather root.
//
// Packages that expose a versioned API shim directory mirror their real
// namespace one level down: tensorflow/_api/v2/audio/__init__.py is
// imported as tensorflow.audio. The shim segment and its API version are
// not part of the public name and are removed. This rewrite is specific to
// that layout and deliberately not generalized.
func ModuleName(relPath string) string {
	segments := strings.Split(filepath.ToSlash(relPath), "/")

	// Package directories re-export through their index file.
	last := len(segments) - 1
	if strings.TrimSuffix(segments[last], sourceExt) == initModule {
		segments = segments[:last]
	} else {
		segments[last] = strings.TrimSuffix(segments[last], sourceExt)
	}

	segments = dropAPIShim(segments)

	return strings.Join(segments, ".")
}

// dropAPIShim removes the "_api" pseudo-segment together with the version
// segment that qualifies it. A doubled version segment ("_api/v2/v2/...")
// therefore collapses to a single occurrence.
func dropAPIShim(segments []string) []string {
	result := make([]string, 0, len(segments))
	for i := 0; i < len(segments); i++ {
		if segments[i] == apiShimDir {
			if i+1 < len(segments) && versionSegment.MatchString(segments[i+1]) {
				i++
			}
			continue
		}
		result = append(result, segments[i])
	}
	return result
}
