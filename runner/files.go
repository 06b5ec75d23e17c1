// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"log"
	"strings"

	"github.com/tohyomap/pollcsv/drive"
	"github.com/tohyomap/pollcsv/polling"
)

type targetFile struct {
	file drive.File
	// name the file is processed under, after any typo correction.
	name string
	role polling.Role
}

// findCSVFiles collects the municipality's CSV files in processing
// order: the base file first, then any append files. When the base is
// missing, known misspellings are renamed on Drive and used in its
// place, preferring the l-to-r typo over the dropped letter, then
// names with junk prepended.
func (r *Runner) findCSVFiles(ctx context.Context, m polling.Municipality, files []drive.File) []targetFile {
	baseName := polling.NormalizedName(m.City)

	var out []targetFile

	for _, f := range files {
		if f.Name == baseName {
			out = append(out, targetFile{file: f, name: baseName, role: polling.RoleBase})

			break
		}
	}

	if len(out) == 0 {
		if corrected := r.adoptMisspelledBase(ctx, m.City, baseName, files); corrected != nil {
			out = append(out, *corrected)
		}
	}

	for _, f := range files {
		if polling.IsAppendName(m.City, f.Name) {
			log.Printf("%s: appendファイル検出: %s", m.City, f.Name)
			out = append(out, targetFile{file: f, name: f.Name, role: polling.RoleAppend})
		}
	}

	return out
}

func (r *Runner) adoptMisspelledBase(ctx context.Context, city, baseName string, files []drive.File) *targetFile {
	var candidates []drive.File

	for _, f := range files {
		if corrected, changed := polling.CorrectName(city, f.Name); changed && corrected == baseName {
			candidates = append(candidates, f)
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	pick := candidates[0]

	for _, class := range []func(string) bool{
		func(n string) bool { return strings.HasSuffix(n, "_normarized.csv") },
		func(n string) bool { return strings.HasSuffix(n, "_nomalized.csv") },
	} {
		found := false

		for _, c := range candidates {
			if class(c.Name) {
				pick = c
				found = true

				break
			}
		}

		if found {
			break
		}
	}

	log.Printf("%s を %s にDrive上でリネームします", pick.Name, baseName)

	if err := r.store.Rename(ctx, pick.ID, baseName); err != nil {
		// The file is still usable under its old ID.
		log.Printf("ファイル名リネーム失敗: %v", err)
	}

	return &targetFile{file: pick, name: baseName, role: polling.RoleBase}
}
