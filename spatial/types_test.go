// Copyright 2026 The PollCSV Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"math"
	"testing"
)

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name string
		a    Point
		b    Point
		want float64 // meters
		tol  float64
	}{
		{
			name: "same point",
			a:    Point{Lat: 35.6812, Lng: 139.7671},
			b:    Point{Lat: 35.6812, Lng: 139.7671},
			want: 0,
			tol:  0.001,
		},
		{
			name: "tokyo station to shinjuku station",
			a:    Point{Lat: 35.6812, Lng: 139.7671},
			b:    Point{Lat: 35.6896, Lng: 139.7006},
			want: 6100,
			tol:  200,
		},
		{
			name: "about 200 meters",
			a:    Point{Lat: 35.0, Lng: 135.0},
			b:    Point{Lat: 35.0018, Lng: 135.0},
			want: 200,
			tol:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineDistance(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("HaversineDistance() = %f, want %f ± %f", got, tt.want, tt.tol)
			}

			if method := tt.a.HaversineDistance(&tt.b); method != got {
				t.Errorf("method form = %f, function form = %f", method, got)
			}
		})
	}
}

func TestPointValueScanRoundTrip(t *testing.T) {
	p := Point{Lat: 35.681236, Lng: 139.767125}

	v, err := p.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var got Point
	if err := got.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if got != p {
		t.Errorf("round trip = %v, want %v", got, p)
	}

	// DuckDB renders WKT with a space after the geometry type.
	var spaced Point
	if err := spaced.Scan("POINT (139.767125 35.681236)"); err != nil {
		t.Fatalf("Scan spaced: %v", err)
	}

	if spaced != p {
		t.Errorf("spaced scan = %v, want %v", spaced, p)
	}
}

func TestInJapanBounds(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{name: "sapporo", p: Point{Lat: 43.0621, Lng: 141.3544}, want: true},
		{name: "naha", p: Point{Lat: 26.2124, Lng: 127.6809}, want: true},
		{name: "yonaguni", p: Point{Lat: 24.4668, Lng: 122.9986}, want: true},
		{name: "seoul", p: Point{Lat: 37.5665, Lng: 126.978}, want: false},
		{name: "zero island", p: Point{Lat: 0, Lng: 0}, want: false},
		{name: "latitude out of range", p: Point{Lat: 91, Lng: 140}, want: false},
		{name: "longitude out of range", p: Point{Lat: 35, Lng: 181}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.InJapanBounds(); got != tt.want {
				t.Errorf("InJapanBounds(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestGroupByCell(t *testing.T) {
	near1 := Point{Lat: 35.68120, Lng: 139.76710}
	near2 := Point{Lat: 35.68121, Lng: 139.76711} // a meter away, same cell
	far := Point{Lat: 43.0621, Lng: 141.3544}

	groups := GroupByCell([]Point{near1, near2, far}, 8)

	if len(groups) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(groups))
	}

	token, err := CellToken(near1, 8)
	if err != nil {
		t.Fatalf("CellToken: %v", err)
	}

	if len(groups[token]) != 2 {
		t.Errorf("expected 2 points in cell %s, got %d", token, len(groups[token]))
	}
}
