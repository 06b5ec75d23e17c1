// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package polling

import "strings"

// File naming on the shared drive. The base file is {city}_normalized.csv,
// append files are {city}_normalized_*append.csv and the merged export is
// {city}_normalized_final.csv.

// NormalizedName returns the canonical base file name for a city.
func NormalizedName(city string) string {
	return city + "_normalized.csv"
}

// FinalName returns the merged export file name for a city.
func FinalName(city string) string {
	return city + "_normalized_final.csv"
}

// IsAppendName reports whether name is an append file for the city.
func IsAppendName(city, name string) bool {
	prefix := city + "_normalized_"
	const suffix = "append.csv"

	return strings.HasPrefix(name, prefix) &&
		strings.HasSuffix(name, suffix) &&
		len(name) >= len(prefix)+len(suffix)
}

// Known misspellings of the base file name seen in uploaded data: a
// dropped letter and an l→r transposition.
func misspelledNames(city string) []string {
	return []string{
		city + "_nomalized.csv",
		city + "_normarized.csv",
	}
}

// CorrectName detects known defects in a base file name and returns the
// corrected name plus whether a change is needed. It is a pure string
// transform; the caller decides whether to rename anything.
func CorrectName(city, name string) (string, bool) {
	base := NormalizedName(city)
	if name == base {
		return name, false
	}

	for _, miss := range misspelledNames(city) {
		if name == miss {
			return base, true
		}
	}

	// Extraneous leading token, e.g. "コピー {city}_normalized.csv".
	if strings.HasSuffix(name, base) {
		return base, true
	}

	return name, false
}
