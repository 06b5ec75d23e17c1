// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ProviderGSI identifies the GSI address search API run by the
// Geospatial Information Authority of Japan.
const ProviderGSI = "gsi"

const gsiBaseURL = "https://msearch.gsi.go.jp/address-search/AddressSearch"

// GSIGeocoder uses the GSI address search API. It takes no credentials.
type GSIGeocoder struct {
	baseURL    string
	httpClient *http.Client
}

// NewGSIGeocoder creates a new GSI geocoder.
func NewGSIGeocoder() *GSIGeocoder {
	return &GSIGeocoder{
		baseURL: gsiBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (g *GSIGeocoder) Name() string {
	return ProviderGSI
}

// The API answers a GeoJSON feature list. Coordinates come as
// [longitude, latitude].
type gsiFeature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
}

func (g *GSIGeocoder) Geocode(ctx context.Context, fullAddress string) (*Result, error) {
	params := url.Values{}
	params.Set("q", fullAddress)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Type: ErrorTypeNetwork, Message: "geocoding request failed", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var features []gsiFeature
	if err := json.NewDecoder(resp.Body).Decode(&features); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(features) == 0 || len(features[0].Geometry.Coordinates) < 2 {
		return nil, &Error{
			Type:    ErrorTypeNotFound,
			Message: fmt.Sprintf("no results for address: %s", fullAddress),
		}
	}

	coords := features[0].Geometry.Coordinates

	res := &Result{Provider: ProviderGSI}
	res.Point.Lat = coords[1]
	res.Point.Lng = coords[0]

	return res, nil
}
