// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

// Package polling validates and normalizes per-municipality polling place
// CSV files: encoding detection, schema checks, duplicate detection and
// the file naming conventions of the shared drive.
package polling

import (
	"strconv"

	"github.com/tohyomap/pollcsv/spatial"
)

// Municipality identifies a municipality by prefecture and city name.
type Municipality struct {
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
}

func (m Municipality) String() string {
	return m.Prefecture + m.City
}

// Role distinguishes the primary per-municipality CSV from supplementary
// append files merged into it.
type Role int

const (
	// RoleBase is the primary file, {city}_normalized.csv.
	RoleBase Role = iota
	// RoleAppend is a supplementary file, {city}_normalized_*append.csv.
	RoleAppend
)

// Note values that mark a row as intentionally unresolvable. Rows carrying
// them report coordinate problems at INFO instead of ERROR.
const (
	NoteDeleted = "削除"
	NoteUnknown = "不明"
)

// Row is one polling place. Lat and Long are carried as the source text so
// that an untouched file round-trips byte for byte; they are parsed only
// for validation and distance math.
type Row struct {
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
	Number     string `json:"number"`
	Address    string `json:"address"`
	Name       string `json:"name"`
	Lat        string `json:"lat"`
	Long       string `json:"long"`
	Note       string `json:"note"`

	// Line is the 1-based CSV line the row was read from (header is line 1).
	Line int `json:"-"`
}

// Fields returns the row's values in canonical column order.
func (r Row) Fields(withNote bool) []string {
	fields := []string{r.Prefecture, r.City, r.Number, r.Address, r.Name, r.Lat, r.Long}
	if withNote {
		fields = append(fields, r.Note)
	}

	return fields
}

// HasCoordinates reports whether both lat and long carry a value,
// parseable or not.
func (r Row) HasCoordinates() bool {
	return r.Lat != "" && r.Long != ""
}

// Point parses the row's coordinates. ok is false when either value is
// empty or not a number.
func (r Row) Point() (spatial.Point, bool) {
	if !r.HasCoordinates() {
		return spatial.Point{}, false
	}

	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return spatial.Point{}, false
	}

	lng, err := strconv.ParseFloat(r.Long, 64)
	if err != nil {
		return spatial.Point{}, false
	}

	return spatial.Point{Lat: lat, Lng: lng}, true
}

// CoordinatesValid reports whether the row's coordinates parse and fall
// inside the Japan bounding region. Rows failing this are candidates for
// geocoding correction.
func (r Row) CoordinatesValid() bool {
	p, ok := r.Point()

	return ok && p.InJapanBounds()
}

// SourceFile is one CSV document through its in-memory lifecycle: decoded
// on ingestion, annotated with diagnostics, consumed by the final merge.
type SourceFile struct {
	Name         string
	Municipality Municipality
	Role         Role

	// Encoding and HadBOM describe the original bytes; together they decide
	// whether a write-back is needed even without content changes.
	Encoding string
	HadBOM   bool

	// HasNote records the detected header variant. CanonicalOrder is false
	// when the recognized columns appeared in a non-canonical order.
	HasNote        bool
	CanonicalOrder bool

	Rows []Row

	// Text is the decoded content, kept so an uncorrected file can be
	// re-encoded without going through the CSV writer.
	Text string
}

// NeedsEncodingNormalization reports whether the file must be rewritten as
// BOM-less UTF-8 even if no row changed.
func (f *SourceFile) NeedsEncodingNormalization() bool {
	return f.HadBOM || f.Encoding == EncodingShiftJIS
}

// HasCoordinateErrors reports whether any row is a candidate for
// geocoding correction.
func (f *SourceFile) HasCoordinateErrors() bool {
	for _, r := range f.Rows {
		if !r.CoordinatesValid() {
			return true
		}
	}

	return false
}
