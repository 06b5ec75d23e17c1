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

// ProviderGoogleMaps identifies the Google Maps Geocoding API.
const ProviderGoogleMaps = "google_maps"

const googleMapsBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleMapsGeocoder uses Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder.
func NewGoogleMapsGeocoder(apiKey string) *GoogleMapsGeocoder {
	return &GoogleMapsGeocoder{
		apiKey:  apiKey,
		baseURL: googleMapsBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (g *GoogleMapsGeocoder) Name() string {
	return ProviderGoogleMaps
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status string `json:"status"` // OK, ZERO_RESULTS, OVER_QUERY_LIMIT, etc.
}

func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, fullAddress string) (*Result, error) {
	params := url.Values{}
	params.Set("address", fullAddress)
	params.Set("key", g.apiKey)
	params.Set("language", "ja")
	params.Set("region", "jp")

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

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	switch gmResp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, &Error{
			Type:    ErrorTypeNotFound,
			Message: fmt.Sprintf("no results for address: %s", fullAddress),
		}
	case "OVER_QUERY_LIMIT":
		return nil, &Error{Type: ErrorTypeRateLimit, Message: "over query limit"}
	default:
		return nil, &Error{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("google maps status: %s", gmResp.Status),
		}
	}

	if len(gmResp.Results) == 0 {
		return nil, &Error{
			Type:    ErrorTypeNotFound,
			Message: fmt.Sprintf("no results for address: %s", fullAddress),
		}
	}

	loc := gmResp.Results[0].Geometry.Location

	res := &Result{Provider: ProviderGoogleMaps}
	res.Point.Lat = loc.Lat
	res.Point.Lng = loc.Lng

	return res, nil
}
