// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

// Package sheet reads the municipality registry spreadsheet that maps
// each municipality to its Drive folder.
package sheet

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/tohyomap/pollcsv/polling"
)

// The registry worksheet and the columns the tool needs.
const (
	worksheetName = "全自治体一覧"

	columnPrefecture = "都道府県"
	columnCity       = "市区町村"
	columnHasCSV     = "正規化済みCSV"
	columnFolderID   = "フォルダID(変更しないでください)"

	// Only municipalities whose CSV set is complete are processed.
	statusComplete = "全部あり"
)

// Entry is one processable municipality from the registry.
type Entry struct {
	// Row is the 1-based spreadsheet row, used as the log prefix so
	// operators can jump from a log line to the sheet.
	Row          int
	Municipality polling.Municipality
	FolderID     string
}

// Registry reads the spreadsheet.
type Registry struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewRegistry builds a registry reader for one spreadsheet.
func NewRegistry(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Registry, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &Registry{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Targets returns the municipalities to process. With no arguments every
// complete municipality is returned; one argument narrows to a
// prefecture, two to a single municipality.
func (r *Registry) Targets(ctx context.Context, args []string) ([]Entry, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(r.spreadsheetID, worksheetName).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %s: %w", worksheetName, err)
	}

	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("worksheet %s is empty", worksheetName)
	}

	header := make([]string, len(resp.Values[0]))
	for i, v := range resp.Values[0] {
		header[i] = fmt.Sprint(v)
	}

	rows := make([][]string, 0, len(resp.Values)-1)

	for _, raw := range resp.Values[1:] {
		row := make([]string, len(raw))
		for i, v := range raw {
			row[i] = fmt.Sprint(v)
		}

		rows = append(rows, row)
	}

	return Filter(header, rows, args)
}

// Filter applies the argument and completeness filters to raw rows.
// Row numbers in the result are spreadsheet rows, so the first data row
// is row 2.
func Filter(header []string, rows [][]string, args []string) ([]Entry, error) {
	if len(args) > 2 {
		return nil, fmt.Errorf("expected [prefecture] [city], got %d arguments", len(args))
	}

	idxPref, err := columnIndex(header, columnPrefecture)
	if err != nil {
		return nil, err
	}

	idxCity, err := columnIndex(header, columnCity)
	if err != nil {
		return nil, err
	}

	idxHasCSV, err := columnIndex(header, columnHasCSV)
	if err != nil {
		return nil, err
	}

	idxFolder, err := columnIndex(header, columnFolderID)
	if err != nil {
		return nil, err
	}

	var entries []Entry

	for i, row := range rows {
		pref := cell(row, idxPref)
		city := cell(row, idxCity)

		if len(args) >= 1 && pref != args[0] {
			continue
		}

		if len(args) == 2 && city != args[1] {
			continue
		}

		if cell(row, idxHasCSV) != statusComplete {
			continue
		}

		entries = append(entries, Entry{
			Row:          i + 2,
			Municipality: polling.Municipality{Prefecture: pref, City: city},
			FolderID:     cell(row, idxFolder),
		})
	}

	return entries, nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if h == name {
			return i, nil
		}
	}

	return 0, fmt.Errorf("column %q not found in worksheet header", name)
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}

	return row[idx]
}
