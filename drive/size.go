// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package drive

import (
	"context"
	"fmt"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count for the size report.
func FormatSize(sizeBytes int64) string {
	if sizeBytes == 0 {
		return "0 B"
	}

	size := float64(sizeBytes)
	unit := 0

	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}

	return fmt.Sprintf("%.2f %s", size, sizeUnits[unit])
}

// FolderSize sums the sizes of the files directly inside a folder.
// Subfolders themselves are not descended into; the per-municipality
// folders are flat. Returns total bytes and the file count.
func (c *Client) FolderSize(ctx context.Context, folderID string) (int64, int, error) {
	files, err := c.List(ctx, folderID)
	if err != nil {
		return 0, 0, err
	}

	var (
		total int64
		count int
	)

	for _, f := range files {
		if f.IsFolder() {
			continue
		}

		total += f.Size
		count++
	}

	return total, count, nil
}
