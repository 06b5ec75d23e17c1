// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package polling

import "strings"

// keySep joins key parts; it cannot appear in CSV field values.
const keySep = "\x1f"

// ValidationKey is the duplicate key for single-file validation:
// (number, name, address). ok is false when any part is empty, in which
// case the row is exempt from duplicate checking.
func ValidationKey(r Row) (string, bool) {
	if r.Number == "" || r.Name == "" || r.Address == "" {
		return "", false
	}

	return strings.Join([]string{r.Number, r.Name, r.Address}, keySep), true
}

// FinalMergeKey is the duplicate key used when combining base and append
// files: (number, name, lat, long). ok is false when any part is empty.
func FinalMergeKey(r Row) (string, bool) {
	if r.Number == "" || r.Name == "" || r.Lat == "" || r.Long == "" {
		return "", false
	}

	return strings.Join([]string{r.Number, r.Name, r.Lat, r.Long}, keySep), true
}

// Collision records a row that shares its key with an earlier row.
// Indexes refer to the input slice.
type Collision struct {
	First     int
	Duplicate int
}

// FindDuplicates scans rows in order and reports every row whose key was
// already seen. Rows for which key returns ok=false are skipped.
func FindDuplicates(rows []Row, key func(Row) (string, bool)) []Collision {
	seen := make(map[string]int, len(rows))

	var collisions []Collision

	for i, row := range rows {
		k, ok := key(row)
		if !ok {
			continue
		}

		if first, ok := seen[k]; ok {
			collisions = append(collisions, Collision{First: first, Duplicate: i})

			continue
		}

		seen[k] = i
	}

	return collisions
}
