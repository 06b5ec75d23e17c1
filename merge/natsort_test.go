// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package merge

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNaturalLess(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{a: "2", b: "10"},
		{a: "2-1", b: "10-1"},
		{a: "1-2", b: "1-10"},
		{a: "1-2-3", b: "1-2-10"},
		{a: "1", b: "1-1"},
		{a: "1-2", b: "1-2-3"}, // strict prefix sorts first
		{a: "第2投票区", b: "第10投票区"},
		{a: "1番地", b: "10丁目"},
		{a: "1番-2号", b: "1番-10号"},
		{a: "99", b: "あ"}, // numbers sort before free text
		{a: "あ", b: "い"},
	}

	for _, tt := range tests {
		if !NaturalLess(tt.a, tt.b) {
			t.Errorf("NaturalLess(%q, %q) = false, want true", tt.a, tt.b)
		}

		if NaturalLess(tt.b, tt.a) {
			t.Errorf("NaturalLess(%q, %q) = true, want false", tt.b, tt.a)
		}
	}
}

func TestNaturalSortOrder(t *testing.T) {
	numbers := []string{"10-1", "2", "第3投票区", "1-10", "1-2", "10", "1", "本庁"}

	sort.SliceStable(numbers, func(i, j int) bool {
		return NaturalLess(numbers[i], numbers[j])
	})

	want := []string{"1", "1-2", "1-10", "2", "10", "10-1", "本庁", "第3投票区"}
	if diff := cmp.Diff(want, numbers); diff != "" {
		t.Errorf("sorted order mismatch (-want +got):\n%s", diff)
	}
}
