// Copyright 2026 The PollCSV Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strings"
)

const earthRadius = 6371e3 // meters

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Value implements the driver.Valuer interface for database serialization.
func (p Point) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (p *Point) Scan(value interface{}) error {
	if value == nil {
		p.Lat, p.Lng = 0, 0

		return nil
	}

	var s string

	switch v := value.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("spatial: unsupported type for Point scan: %T", value)
	}

	// Accepts "POINT(lng lat)" and DuckDB's spelling "POINT (lng lat)".
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "POINT"))

	_, err := fmt.Sscanf(s, "(%f %f)", &p.Lng, &p.Lat)

	return err
}

// HaversineDistance returns the great-circle distance between two
// points in meters.
func HaversineDistance(a, b Point) float64 {
	return a.HaversineDistance(&b)
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Bounds that cover the whole Japanese territory with some margin:
// Yonaguni to Minamitorishima, Okinotorishima to Etorofu.
const (
	japanMinLat = 20.0
	japanMaxLat = 46.0
	japanMinLng = 122.0
	japanMaxLng = 154.0
)

// InJapanBounds reports whether the point falls inside the Japan bounding
// region. Globally valid coordinates outside of it are still treated as
// invalid for polling place data.
func (p Point) InJapanBounds() bool {
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return false
	}

	return p.Lat >= japanMinLat && p.Lat <= japanMaxLat &&
		p.Lng >= japanMinLng && p.Lng <= japanMaxLng
}
