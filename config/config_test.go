// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tohyomap/pollcsv/polling"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "my_settings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeSettings(t, `{
		"GOOGLE_API_KEY": "test-key",
		"SPREADSHEET_ID": "sheet-1",
		"BASE_FOLDER_ID": "folder-1",
		"SKIP_LATLONG_UPDATE_LIST": [["北海道", "札幌市"], ["東京都", "千代田区"]],
		"PARALLELISM": 8
	}`)

	s, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "test-key", s.GoogleAPIKey)
	require.Equal(t, "sheet-1", s.SpreadsheetID)
	require.Equal(t, "folder-1", s.BaseFolderID)
	require.Equal(t, 8, s.Parallelism)

	// Unset keys fall back to defaults.
	require.Equal(t, 5.0, s.RequestsPerSecond)
	require.Equal(t, 200.0, s.SuspectThresholdMeters)
	require.Equal(t, "pollcsv.duckdb", s.GeocodeCachePath)

	skip := s.SkipList()
	require.True(t, skip.Contains(polling.Municipality{Prefecture: "北海道", City: "札幌市"}))
	require.False(t, skip.Contains(polling.Municipality{Prefecture: "大阪府", City: "大阪市"}))
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeSettings(t, `{"PARALLELISM": 2}`)

	t.Setenv("POLLCSV_PARALLELISM", "16")
	t.Setenv("POLLCSV_GOOGLE_API_KEY", "env-key")

	s, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 16, s.Parallelism)
	require.Equal(t, "env-key", s.GoogleAPIKey)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadMissingDefaultFileIsFine(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	s, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 4, s.Parallelism)
}

func TestLoadRejectsMalformedSkipList(t *testing.T) {
	path := writeSettings(t, `{"SKIP_LATLONG_UPDATE_LIST": [["北海道"]]}`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "skip_latlong_update_list")
}
