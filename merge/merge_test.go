// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package merge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/tohyomap/pollcsv/polling"
)

var sapporo = polling.Municipality{Prefecture: "北海道", City: "札幌市"}

func file(name string, hasNote bool, rows ...polling.Row) *polling.SourceFile {
	return &polling.SourceFile{
		Name:         name,
		Municipality: sapporo,
		HasNote:      hasNote,
		Rows:         rows,
	}
}

func row(number, address, name, lat, long string, line int) polling.Row {
	return polling.Row{
		Prefecture: "北海道",
		City:       "札幌市",
		Number:     number,
		Address:    address,
		Name:       name,
		Lat:        lat,
		Long:       long,
		Line:       line,
	}
}

func TestMergeDropsRowsWithoutCoordinates(t *testing.T) {
	base := file("札幌市_normalized.csv", false,
		row("1", "中央区北一条西2丁目", "市役所", "43.06", "141.35", 2),
		row("2", "中央区南三条西11丁目", "小学校", "", "", 3),
		row("3", "中央区北三条西6丁目", "道庁", "43.064", "141.347", 4),
	)

	rows, stats, diags := Merge(base, nil)

	require.Empty(t, diags)
	require.Equal(t, Stats{Read: 3, DroppedEmpty: 1, Retained: 2}, stats)
	require.Len(t, rows, 2)

	for _, r := range rows {
		require.True(t, r.HasCoordinates())
	}
}

func TestMergeKeepsFirstDuplicate(t *testing.T) {
	base := file("札幌市_normalized.csv", false,
		row("1", "中央区北一条西2丁目", "市役所", "43.06", "141.35", 2),
	)
	appnd := file("札幌市_normalized_2append.csv", false,
		row("1", "中央区北一条西2丁目(移転)", "市役所", "43.06", "141.35", 2),
		row("2", "中央区南三条西11丁目", "小学校", "43.055", "141.343", 3),
	)

	rows, stats, diags := Merge(base, []*polling.SourceFile{appnd})

	require.Equal(t, 1, stats.DroppedDuplicate)
	require.Len(t, rows, 2)

	// The base row came first and survives; the append copy is dropped.
	require.Equal(t, "中央区北一条西2丁目", rows[0].Address)

	require.Len(t, diags, 1)
	require.Equal(t, polling.SeverityInfo, diags[0].Severity)
	require.Equal(t, "札幌市_normalized_2append.csv", diags[0].File)
}

func TestMergeIncompleteKeysAreNotDuplicates(t *testing.T) {
	base := file("札幌市_normalized.csv", false,
		row("", "中央区北一条西2丁目", "市役所", "43.06", "141.35", 2),
		row("", "中央区北一条西2丁目", "市役所", "43.06", "141.35", 3),
	)

	rows, stats, _ := Merge(base, nil)

	require.Equal(t, 0, stats.DroppedDuplicate)
	require.Len(t, rows, 2)
}

func TestMergeHeaderMismatchWarning(t *testing.T) {
	base := file("札幌市_normalized.csv", true)
	appnd := file("札幌市_normalized_2append.csv", false,
		row("1", "a", "b", "43.06", "141.35", 2),
	)

	_, _, diags := Merge(base, []*polling.SourceFile{appnd})

	require.Equal(t, 1, diags.Count(polling.SeverityWarning))
}

func TestMergeSortsByWardThenNumber(t *testing.T) {
	fukuoka := func(number, address string, line int) polling.Row {
		return polling.Row{
			Prefecture: "福岡県",
			City:       "福岡市",
			Number:     number,
			Address:    address,
			Name:       "投票所",
			Lat:        "33.59",
			Long:       "130.40",
			Line:       line,
		}
	}

	base := file("福岡市_normalized.csv", false,
		fukuoka("10", "早良区百道浜1丁目", 2),
		fukuoka("2", "博多区博多駅前2丁目", 3),
		fukuoka("1", "本庁舎前", 4),
		fukuoka("2", "早良区西新6丁目", 5),
		fukuoka("10", "博多区住吉1丁目", 6),
	)

	rows, _, _ := Merge(base, nil)

	var got []string
	for _, r := range rows {
		got = append(got, ExtractWard(r.Address)+"/"+r.Number)
	}

	// No ward first, then wards in code point order, numbers naturally.
	want := []string{"/1", "博多区/2", "博多区/10", "早良区/2", "早良区/10"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sort order mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeIdempotent(t *testing.T) {
	base := file("札幌市_normalized.csv", false,
		row("2", "中央区南三条西11丁目", "小学校", "43.055", "141.343", 2),
		row("1", "中央区北一条西2丁目", "市役所", "43.06", "141.35", 3),
	)

	first, _, _ := Merge(base, nil)

	again, stats, _ := Merge(file("札幌市_normalized.csv", false, first...), nil)

	require.Equal(t, Stats{Read: 2, Retained: 2}, stats)
	if diff := cmp.Diff(first, again); diff != "" {
		t.Errorf("second merge changed the rows (-first +again):\n%s", diff)
	}
}
