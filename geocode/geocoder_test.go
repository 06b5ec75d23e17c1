// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"testing"

	"github.com/tohyomap/pollcsv/polling"
)

func TestFullAddress(t *testing.T) {
	chiyoda := polling.Municipality{Prefecture: "東京都", City: "千代田区"}

	tests := []struct {
		name    string
		address string
		want    string
	}{
		{name: "bare address", address: "丸の内1-1", want: "東京都千代田区丸の内1-1"},
		{name: "duplicated city", address: "千代田区丸の内1-1", want: "東京都千代田区丸の内1-1"},
		{name: "duplicated prefecture and city", address: "東京都千代田区丸の内1-1", want: "東京都千代田区丸の内1-1"},
		{name: "duplicated prefecture only", address: "東京都丸の内1-1", want: "東京都千代田区丸の内1-1"},
		{name: "empty address", address: "", want: "東京都千代田区"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FullAddress(chiyoda, tt.address); got != tt.want {
				t.Errorf("FullAddress(%q) = %q, want %q", tt.address, got, tt.want)
			}
		})
	}
}

func TestAppendSuspect(t *testing.T) {
	tests := []struct {
		name string
		note string
		want string
	}{
		{name: "empty note", note: "", want: "緯度経度は怪しい"},
		{name: "existing note", note: "移転済み", want: "移転済み;緯度経度は怪しい"},
		{name: "already marked", note: "緯度経度は怪しい", want: "緯度経度は怪しい"},
		{name: "marked among others", note: "移転済み;緯度経度は怪しい", want: "移転済み;緯度経度は怪しい"},
		{name: "marked with spaces", note: "移転済み; 緯度経度は怪しい", want: "移転済み; 緯度経度は怪しい"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AppendSuspect(tt.note); got != tt.want {
				t.Errorf("AppendSuspect(%q) = %q, want %q", tt.note, got, tt.want)
			}
		})
	}
}
