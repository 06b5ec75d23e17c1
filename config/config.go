// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads runtime settings from my_settings.json and the
// POLLCSV_* environment, with the environment taking precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/tohyomap/pollcsv/polling"
)

// DefaultFile is the settings file looked up in the working directory
// when no explicit path is given.
const DefaultFile = "my_settings.json"

// Settings holds everything the commands need beyond their flags.
type Settings struct {
	// GoogleAPIKey authenticates Google Maps geocoding requests. When
	// empty the key is looked up through Application Default
	// Credentials, see ResolveGoogleAPIKey.
	GoogleAPIKey string `mapstructure:"google_api_key"`
	// GoogleProjectID overrides the project inferred from ADC.
	GoogleProjectID string `mapstructure:"google_project_id"`

	// SpreadsheetID names the municipality registry spreadsheet.
	SpreadsheetID string `mapstructure:"spreadsheet_id"`
	// BaseFolderID is the Drive folder holding the per-municipality tree.
	BaseFolderID string `mapstructure:"base_folder_id"`
	// DestFolderID is the target folder for backup and copy runs.
	DestFolderID string `mapstructure:"dest_folder_id"`

	// SkipLatLongUpdateList lists [prefecture, city] pairs whose
	// coordinate problems are reported but never written back.
	SkipLatLongUpdateList [][]string `mapstructure:"skip_latlong_update_list"`

	Parallelism            int     `mapstructure:"parallelism"`
	RequestsPerSecond      float64 `mapstructure:"requests_per_second"`
	SuspectThresholdMeters float64 `mapstructure:"suspect_threshold_meters"`
	GeocodeCachePath       string  `mapstructure:"geocode_cache_path"`
	ListenAddr             string  `mapstructure:"listen_addr"`
}

// SkipList converts the configured pair list.
func (s *Settings) SkipList() polling.SkipList {
	return polling.NewSkipList(s.SkipLatLongUpdateList)
}

// Load reads settings from path, or from DefaultFile when path is
// empty. A missing DefaultFile is fine; a missing explicit path is not.
func Load(path string) (*Settings, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigFile(DefaultFile)
	}

	v.SetConfigType("json")
	v.SetEnvPrefix("POLLCSV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("google_api_key", "")
	v.SetDefault("google_project_id", "")
	v.SetDefault("spreadsheet_id", "")
	v.SetDefault("base_folder_id", "")
	v.SetDefault("dest_folder_id", "")
	v.SetDefault("parallelism", 4)
	v.SetDefault("requests_per_second", 5.0)
	v.SetDefault("suspect_threshold_meters", 200.0)
	v.SetDefault("geocode_cache_path", "pollcsv.duckdb")
	v.SetDefault("listen_addr", ":8080")

	if err := v.ReadInConfig(); err != nil {
		// Running without the default file is fine, everything can come
		// from the environment.
		optional := path == "" && errors.Is(err, fs.ErrNotExist)
		if !optional {
			return nil, fmt.Errorf("reading settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}

	for i, pair := range s.SkipLatLongUpdateList {
		if len(pair) != 2 {
			return nil, fmt.Errorf("skip_latlong_update_list entry %d: want [prefecture, city], got %d elements", i, len(pair))
		}
	}

	return &s, nil
}
