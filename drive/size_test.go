// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package drive

import "testing"

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{bytes: 0, want: "0 B"},
		{bytes: 512, want: "512.00 B"},
		{bytes: 1024, want: "1.00 KB"},
		{bytes: 1536, want: "1.50 KB"},
		{bytes: 1048576, want: "1.00 MB"},
		{bytes: 5 << 30, want: "5.00 GB"},
		{bytes: 3 << 40, want: "3.00 TB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestDeletionTargets(t *testing.T) {
	files := []File{
		{ID: "1", Name: "札幌市_normalized.csv"},
		{ID: "2", Name: "古いデータ（削除希望）.csv"},
		{ID: "3", Name: "削除希望フォルダ", MimeType: FolderMimeType},
	}

	targets := DeletionTargets(files)
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}

	if targets[0].ID != "2" || targets[1].ID != "3" {
		t.Errorf("unexpected targets: %+v", targets)
	}
}
