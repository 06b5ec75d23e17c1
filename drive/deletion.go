// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package drive

import "strings"

// Municipality staff mark files and folders for removal by putting this
// in the name.
const DeletionMarker = "削除希望"

// DeletionTargets filters the files whose name asks for removal.
func DeletionTargets(files []File) []File {
	var targets []File

	for _, f := range files {
		if strings.Contains(f.Name, DeletionMarker) {
			targets = append(targets, f)
		}
	}

	return targets
}
