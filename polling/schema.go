// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package polling

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// baseColumns is the required header, in canonical order. The only other
// recognized variant carries a trailing note column.
var baseColumns = []string{"prefecture", "city", "number", "address", "name", "lat", "long"}

const noteColumn = "note"

// SchemaError is fatal for a file: the header is not one of the two
// recognized shapes and no rows are parsed.
type SchemaError struct {
	File   string
	Header []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: unrecognized CSV header %v", e.File, e.Header)
}

// headerVariant matches a header line against the two recognized column
// sets. Columns may appear in any order; canonical reports whether they
// were in the documented order.
func headerVariant(header []string) (hasNote, canonical, ok bool) {
	set := make(map[string]bool, len(header))
	for _, col := range header {
		set[col] = true
	}

	if len(set) != len(header) {
		return false, false, false
	}

	for _, col := range baseColumns {
		if !set[col] {
			return false, false, false
		}
	}

	switch len(header) {
	case len(baseColumns):
		hasNote = false
	case len(baseColumns) + 1:
		if !set[noteColumn] {
			return false, false, false
		}

		hasNote = true
	default:
		return false, false, false
	}

	canonical = true

	for i, col := range baseColumns {
		if header[i] != col {
			canonical = false

			break
		}
	}

	if canonical && hasNote && header[len(header)-1] != noteColumn {
		canonical = false
	}

	return hasNote, canonical, true
}

// ParseFile parses decoded text into typed rows for the given
// municipality. A bad header rejects the whole file (SchemaError); a bad
// data line is skipped with an ERROR diagnostic and processing continues.
func ParseFile(name string, d *Decoded, m Municipality, role Role) (*SourceFile, Diagnostics, error) {
	var diags Diagnostics

	reader := csv.NewReader(strings.NewReader(d.Text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		diags.Add(SeverityError, name, 0, "CSVの解析に失敗しました: %v", err)

		return nil, diags, fmt.Errorf("parsing %s: %w", name, err)
	}

	if len(records) == 0 {
		diags.Add(SeverityError, name, 0, "CSVが空です")

		return nil, diags, &SchemaError{File: name}
	}

	header := records[0]

	hasNote, canonical, ok := headerVariant(header)
	if !ok {
		diags.Add(SeverityError, name, 1, "CSVヘッダが不正: %v", header)

		return nil, diags, &SchemaError{File: name, Header: header}
	}

	if !canonical {
		diags.Add(SeverityInfo, name, 1, "ヘッダの順番が異なります: %v", header)
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}

	file := &SourceFile{
		Name:           name,
		Municipality:   m,
		Role:           role,
		Encoding:       d.Encoding,
		HadBOM:         d.HadBOM,
		HasNote:        hasNote,
		CanonicalOrder: canonical,
		Rows:           make([]Row, 0, len(records)-1),
		Text:           d.Text,
	}

	for i, fields := range records[1:] {
		line := i + 2
		expected := len(header)

		// A note-variant file may carry rows written before the note column
		// was added; they get an empty note.
		if hasNote && len(fields) == len(baseColumns) {
			fields = append(fields, "")
		} else if len(fields) != expected {
			diags.Add(SeverityError, name, line, "列数不一致(%d != %d)", len(fields), expected)

			continue
		}

		row := Row{
			Prefecture: fields[idx["prefecture"]],
			City:       fields[idx["city"]],
			Number:     fields[idx["number"]],
			Address:    fields[idx["address"]],
			Name:       fields[idx["name"]],
			Lat:        fields[idx["lat"]],
			Long:       fields[idx["long"]],
			Line:       line,
		}
		if hasNote {
			row.Note = fields[idx[noteColumn]]
		}

		if row.Number == "" || row.Name == "" {
			diags.Add(SeverityError, name, line, "number/name列が空です")

			continue
		}

		if row.Prefecture != m.Prefecture || row.City != m.City {
			diags.Add(SeverityError, name, line, "prefecture/city列値が不一致 (%s/%s)", row.Prefecture, row.City)
		}

		file.Rows = append(file.Rows, row)
	}

	return file, diags, nil
}

// Validate runs the single-file checks: coordinate validity for every row
// and duplicate detection on the (number, name, address) key. Coordinate
// diagnostics are downgraded to INFO for skip-listed municipalities and
// for rows marked 削除/不明; duplicates always report at ERROR.
func (f *SourceFile) Validate(skip SkipList) Diagnostics {
	var diags Diagnostics

	for _, row := range f.Rows {
		if !row.CoordinatesValid() {
			severity := skip.CoordinateSeverity(f.Municipality, row.Note)
			diags.Add(severity, f.Name, row.Line,
				"lat/long列が空または実数値でありません (lat='%s', long='%s', note='%s')",
				row.Lat, row.Long, row.Note)
		}
	}

	key := func(r Row) (string, bool) {
		if !r.CoordinatesValid() {
			return "", false
		}

		return ValidationKey(r)
	}

	for _, c := range FindDuplicates(f.Rows, key) {
		first := f.Rows[c.First]
		dup := f.Rows[c.Duplicate]
		diags.Add(SeverityError, f.Name, dup.Line,
			"number, name, addressの組み合わせが重複しています (number='%s', name='%s', address='%s', 初出: %d行目)",
			dup.Number, dup.Name, dup.Address, first.Line)
	}

	return diags
}
