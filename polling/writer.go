// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package polling

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// NormalizedText returns the decoded content re-encoded as BOM-less
// UTF-8, for write-backs where only the encoding changed. Nothing else is
// touched so the file round-trips byte for byte.
func (f *SourceFile) NormalizedText() []byte {
	return []byte(f.Text)
}

// MarshalCSV serializes the file in canonical column order with \n line
// endings. The note column is included when the source had one or when a
// correction recorded a note on any row.
func (f *SourceFile) MarshalCSV() ([]byte, error) {
	withNote := f.HasNote
	if !withNote {
		for _, r := range f.Rows {
			if r.Note != "" {
				withNote = true

				break
			}
		}
	}

	header := append([]string(nil), baseColumns...)
	if withNote {
		header = append(header, noteColumn)
	}

	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for _, row := range f.Rows {
		if err := w.Write(row.Fields(withNote)); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", row.Line, err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return buf.Bytes(), nil
}

// MarshalRows serializes an already merged row sequence (the final
// export). The note column is written only when some row carries a note.
func MarshalRows(rows []Row) ([]byte, error) {
	withNote := false

	for _, r := range rows {
		if r.Note != "" {
			withNote = true

			break
		}
	}

	header := append([]string(nil), baseColumns...)
	if withNote {
		header = append(header, noteColumn)
	}

	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		if err := w.Write(row.Fields(withNote)); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return buf.Bytes(), nil
}
