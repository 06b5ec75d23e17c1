// Copyright 2026 The PollCSV Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"

	"github.com/uber/h3-go/v4"
)

// CellToken returns the H3 cell token for a point at the given resolution.
// Resolution 8 cells are roughly 460m across, which matches the scale of
// geocoding disagreements we want to bucket together.
func CellToken(p Point, res int) (string, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return "", fmt.Errorf("converting to h3 cell at res %d: %w", res, err)
	}

	return cell.String(), nil
}

// GroupByCell buckets points into H3 cells at the given resolution.
// Points that cannot be converted are dropped.
func GroupByCell(points []Point, res int) map[string][]Point {
	groups := make(map[string][]Point)

	for _, p := range points {
		token, err := CellToken(p, res)
		if err != nil {
			continue
		}

		groups[token] = append(groups[token], p)
	}

	return groups
}
