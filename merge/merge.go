// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

// Package merge combines a municipality's base file with its append
// files into the final export: rows without coordinates are dropped,
// exact duplicates collapse to their first occurrence, and the result
// is sorted by administrative ward and district number.
package merge

import (
	"sort"

	"github.com/tohyomap/pollcsv/polling"
)

// Stats counts what happened to the combined rows.
type Stats struct {
	Read             int
	DroppedEmpty     int
	DroppedDuplicate int
	Retained         int
}

type sourcedRow struct {
	row  polling.Row
	file string
}

// Merge builds the final row set for a municipality. Appends may be
// empty. Diagnostics report dropped duplicates and append files whose
// header shape differs from the base.
func Merge(base *polling.SourceFile, appends []*polling.SourceFile) ([]polling.Row, Stats, polling.Diagnostics) {
	var (
		stats Stats
		diags polling.Diagnostics
	)

	combined := make([]sourcedRow, 0, len(base.Rows))
	for _, r := range base.Rows {
		combined = append(combined, sourcedRow{row: r, file: base.Name})
	}

	for _, a := range appends {
		if a.HasNote != base.HasNote {
			diags.Add(polling.SeverityWarning, a.Name, 1, "ヘッダーが%sと異なります", base.Name)
		}

		for _, r := range a.Rows {
			combined = append(combined, sourcedRow{row: r, file: a.Name})
		}
	}

	stats.Read = len(combined)

	seen := make(map[string]struct{})
	rows := make([]polling.Row, 0, len(combined))

	for _, sr := range combined {
		if sr.row.Lat == "" || sr.row.Long == "" {
			stats.DroppedEmpty++

			continue
		}

		// Rows with an incomplete key are never treated as duplicates.
		if key, ok := polling.FinalMergeKey(sr.row); ok {
			if _, dup := seen[key]; dup {
				stats.DroppedDuplicate++
				diags.Add(polling.SeverityInfo, sr.file, sr.row.Line,
					"重複行を除去しました (number: %s, name: %s, lat: %s, long: %s)",
					sr.row.Number, sr.row.Name, sr.row.Lat, sr.row.Long)

				continue
			}

			seen[key] = struct{}{}
		}

		rows = append(rows, sr.row)
	}

	stats.Retained = len(rows)

	SortRows(rows)

	return rows, stats, diags
}

// SortRows orders rows by administrative ward, then district number.
// Rows without a ward come first, in natural number order.
func SortRows(rows []polling.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		wi, wj := ExtractWard(rows[i].Address), ExtractWard(rows[j].Address)
		if wi != wj {
			return wi < wj
		}

		return parseNumberKey(rows[i].Number).less(parseNumberKey(rows[j].Number))
	})
}
