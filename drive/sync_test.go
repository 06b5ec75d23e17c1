// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package drive

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyncFolderSkipsCurrentFiles(t *testing.T) {
	var copied, deleted []string

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete:
			parts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
			deleted = append(deleted, parts[len(parts)-1])
			w.WriteHeader(http.StatusNoContent)

		case strings.HasSuffix(r.URL.Path, "/copy"):
			parts := strings.Split(r.URL.Path, "/")
			copied = append(copied, parts[len(parts)-2])
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": "new-copy"}`))

		case strings.Contains(r.URL.Query().Get("q"), "'src' in parents"):
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"files": [
					{"id": "src-a", "name": "a.csv", "mimeType": "text/csv", "modifiedTime": "2026-07-02T00:00:00.000Z"},
					{"id": "src-b", "name": "b.csv", "mimeType": "text/csv", "modifiedTime": "2026-07-01T00:00:00.000Z"}
				]
			}`))

		case strings.Contains(r.URL.Query().Get("q"), "'dst' in parents"):
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"files": [
					{"id": "dst-a", "name": "a.csv", "mimeType": "text/csv", "modifiedTime": "2026-07-01T00:00:00.000Z"},
					{"id": "dst-b", "name": "b.csv", "mimeType": "text/csv", "modifiedTime": "2026-07-01T00:00:00.000Z"}
				]
			}`))

		default:
			http.NotFound(w, r)
		}
	}))

	stats, err := c.SyncFolder(context.Background(), "src", "dst", nil)
	require.NoError(t, err)

	// a.csv is stale in the destination: replaced. b.csv is current: skipped.
	require.Equal(t, []string{"dst-a"}, deleted)
	require.Equal(t, []string{"src-a"}, copied)
	require.Equal(t, SyncStats{Files: 1, Skipped: 1}, stats)
}
