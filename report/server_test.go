// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/tohyomap/pollcsv/polling"
	"github.com/tohyomap/pollcsv/runner"
	"github.com/tohyomap/pollcsv/spatial"
)

func testReport() *runner.Report {
	return &runner.Report{
		GeneratedAt: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
		Municipalities: []*runner.MunicipalityReport{
			{
				Row:          2,
				Municipality: polling.Municipality{Prefecture: "北海道", City: "札幌市"},
				FolderID:     "folder-1",
				Diagnostics: polling.Diagnostics{
					{Severity: polling.SeverityError, File: "札幌市_normalized.csv", Line: 3, Message: "lat/long列が空です"},
					{Severity: polling.SeverityWarning, File: "札幌市_normalized.csv", Line: 4, Message: "怪しい座標"},
				},
				SuspectPoints: []spatial.Point{
					{Lat: 43.0619, Lng: 141.3543},
					{Lat: 43.0620, Lng: 141.3544}, // same resolution-8 cell
				},
			},
			{
				Row:          3,
				Municipality: polling.Municipality{Prefecture: "福岡県", City: "福岡市"},
				FolderID:     "folder-2",
				SuspectPoints: []spatial.Point{
					{Lat: 33.5902, Lng: 130.4017},
				},
			},
		},
	}
}

func serve(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	return w
}

func TestGetSummary(t *testing.T) {
	s := NewServer(testReport())

	w := serve(t, s, "/api/report/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var got SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))

	require.Equal(t, 2, got.Municipalities)
	require.Equal(t, 1, got.Errors)
	require.Equal(t, 1, got.Warnings)
	require.Equal(t, 3, got.Suspects)
}

func TestGetSuspectClusters(t *testing.T) {
	s := NewServer(testReport())

	w := serve(t, s, "/api/suspects/clusters")
	require.Equal(t, http.StatusOK, w.Code)

	var clusters []Cluster
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clusters))

	// The two Sapporo points share a cell; the Fukuoka point is alone.
	require.Len(t, clusters, 2)
	require.Equal(t, 2, clusters[0].Count)
	require.InDelta(t, 43.06195, clusters[0].Center.Lat, 1e-4)
	require.Equal(t, 1, clusters[1].Count)
}

func TestGetSuspectClustersRejectsBadResolution(t *testing.T) {
	s := NewServer(testReport())

	w := serve(t, s, "/api/suspects/clusters?resolution=99")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveAndLoadReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	orig := testReport()
	require.NoError(t, SaveReport(orig, path))

	got, err := LoadReport(path)
	require.NoError(t, err)

	require.Len(t, got.Municipalities, 2)
	require.Equal(t, orig.Municipalities[0].Municipality, got.Municipalities[0].Municipality)
	require.Len(t, got.Municipalities[0].SuspectPoints, 2)
}
