// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves polling place addresses to coordinates using
// two independent providers and cross-checks them against each other.
package geocode

import (
	"context"
	"strings"

	"github.com/tohyomap/pollcsv/polling"
	"github.com/tohyomap/pollcsv/spatial"
)

// Result is a single provider answer for an address.
type Result struct {
	Point    spatial.Point
	Provider string
}

// Geocoder resolves a full Japanese address to a point.
type Geocoder interface {
	// Name identifies the provider, e.g. for cache keys and diagnostics.
	Name() string
	Geocode(ctx context.Context, fullAddress string) (*Result, error)
}

// FullAddress builds the query address for a row. Source files often
// repeat the prefecture or the city at the start of the address column;
// the duplicate prefix is stripped before prepending both.
func FullAddress(m polling.Municipality, address string) string {
	addr := strings.TrimPrefix(address, m.Prefecture)
	addr = strings.TrimPrefix(addr, m.City)

	return m.Prefecture + m.City + addr
}
