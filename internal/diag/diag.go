// Package diag collects structured diagnostics produced while gathering
// and merging symbol inventories.
//
// Components receive an explicit *Sink instead of writing to a process-wide
// logger. This keeps them independently testable: tests assert on the
// collected records, while the CLI attaches a logger so records are still
// echoed to stderr as they arrive.
package diag

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Level classifies the severity of a single diagnostic record.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// String returns the level name used in echoed log lines.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// Fields carries structured key/value context for one record.
type Fields map[string]string

// Record is one collected diagnostic.
type Record struct {
	Level   Level
	Message string
	Fields  Fields
}

// Sink accumulates diagnostic records for one run.
//
// Every record is tagged with the sink's run ID when echoed, so interleaved
// output from repeated runs stays attributable. A nil logger collects
// silently.
type Sink struct {
	runID   string
	logger  *log.Logger
	minEcho Level
	records []Record
}

// NewSink creates a sink that echoes records at or above minEcho to logger.
// Pass a nil logger to collect without echoing.
func NewSink(logger *log.Logger, minEcho Level) *Sink {
	return &Sink{
		runID:   uuid.NewString(),
		logger:  logger,
		minEcho: minEcho,
	}
}

// RunID returns the identifier tagged onto every echoed record.
func (s *Sink) RunID() string {
	return s.runID
}

// Debug records a debug-level diagnostic.
func (s *Sink) Debug(msg string, fields Fields) {
	s.add(LevelDebug, msg, fields)
}

// Info records an info-level diagnostic.
func (s *Sink) Info(msg string, fields Fields) {
	s.add(LevelInfo, msg, fields)
}

// Warning records a warning-level diagnostic.
func (s *Sink) Warning(msg string, fields Fields) {
	s.add(LevelWarning, msg, fields)
}

// Error records an error-level diagnostic.
func (s *Sink) Error(msg string, fields Fields) {
	s.add(LevelError, msg, fields)
}

func (s *Sink) add(level Level, msg string, fields Fields) {
	s.records = append(s.records, Record{Level: level, Message: msg, Fields: fields})

	if s.logger != nil && level >= s.minEcho {
		s.logger.Printf("%s %s%s run=%s", level, msg, formatFields(fields), shortID(s.runID))
	}
}

// Records returns all collected records in arrival order.
// The returned slice points at the sink's internal storage.
func (s *Sink) Records() []Record {
	return s.records
}

// CountAt returns the number of records collected at exactly the given level.
func (s *Sink) CountAt(level Level) int {
	n := 0
	for i := range s.records {
		if s.records[i].Level == level {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error-level record was collected.
func (s *Sink) HasErrors() bool {
	return s.CountAt(LevelError) > 0
}

// formatFields renders fields as " k=v" pairs in key order, so echoed
// lines are stable across runs.
func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, fields[k])
	}
	return b.String()
}

// shortID truncates a UUID to its first group for log readability.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
