// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package polling

import "fmt"

// Severity of a Diagnostic.
type Severity int

const (
	// SeverityInfo is informational, no action needed.
	SeverityInfo Severity = iota
	// SeverityWarning is suspicious but not blocking.
	SeverityWarning
	// SeverityError marks data that must be fixed.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Diagnostic is one anomaly found while processing a file. Line is the
// 1-based CSV line, 0 for file-level diagnostics. The core only emits
// diagnostics; rendering and persistence are the caller's concern.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	File     string   `json:"file"`
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s %s %d行目: %s", d.Severity, d.File, d.Line, d.Message)
	}

	return fmt.Sprintf("%s %s: %s", d.Severity, d.File, d.Message)
}

// Diagnostics is an ordered list of diagnostics for one file or batch.
type Diagnostics []Diagnostic

// Add appends a diagnostic with a formatted message.
func (ds *Diagnostics) Add(severity Severity, file string, line int, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Severity: severity,
		File:     file,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

// HasErrors reports whether any diagnostic is ERROR severity.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}

	return false
}

// Count returns the number of diagnostics at the given severity.
func (ds Diagnostics) Count(severity Severity) int {
	n := 0

	for _, d := range ds {
		if d.Severity == severity {
			n++
		}
	}

	return n
}

// SkipList is the set of municipalities whose coordinate diagnostics are
// reported at INFO and whose files are never rewritten with geocoded
// coordinates. It is static configuration, read-only for the core.
type SkipList struct {
	set map[Municipality]struct{}
}

// NewSkipList builds a SkipList from (prefecture, city) pairs as they
// appear in the settings file. Malformed entries are ignored.
func NewSkipList(pairs [][]string) SkipList {
	set := make(map[Municipality]struct{}, len(pairs))

	for _, pair := range pairs {
		if len(pair) < 2 {
			continue
		}

		set[Municipality{Prefecture: pair[0], City: pair[1]}] = struct{}{}
	}

	return SkipList{set: set}
}

// Contains reports whether the municipality is on the skip list.
func (s SkipList) Contains(m Municipality) bool {
	_, ok := s.set[m]

	return ok
}

// CoordinateSeverity decides how a coordinate problem on a row is
// reported: INFO when the row is marked 削除/不明 or the municipality is
// on the skip list, ERROR otherwise. Only coordinate diagnostics go
// through this; every other kind keeps its natural severity.
func (s SkipList) CoordinateSeverity(m Municipality, note string) Severity {
	if note == NoteDeleted || note == NoteUnknown {
		return SeverityInfo
	}

	if s.Contains(m) {
		return SeverityInfo
	}

	return SeverityError
}
