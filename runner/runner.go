// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

// Package runner drives the per-municipality workflows: validating and
// fixing the normalized CSV files, and building the final merged CSV.
// It talks to Drive through the Storage interface so the flows are
// testable without the API.
package runner

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tohyomap/pollcsv/drive"
	"github.com/tohyomap/pollcsv/geocode"
	"github.com/tohyomap/pollcsv/polling"
	"github.com/tohyomap/pollcsv/sheet"
	"github.com/tohyomap/pollcsv/spatial"
)

// JST timestamps in logs and cutoff comparisons.
var jst = time.FixedZone("JST", 9*60*60)

// Storage is the slice of Drive behavior the workflows need.
type Storage interface {
	List(ctx context.Context, folderID string) ([]drive.File, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
	Update(ctx context.Context, fileID string, content []byte) error
	Create(ctx context.Context, folderID, name string, content []byte) (string, error)
	Rename(ctx context.Context, fileID, newName string) error
	Delete(ctx context.Context, fileID string) error
}

// Options configures a run.
type Options struct {
	// Update writes corrections back to Drive. Without it problems are
	// only reported. Encoding normalization is always written.
	Update bool

	// Delete removes files whose name carries the deletion marker.
	// Without it they are only counted and listed.
	Delete bool

	// LastUpdated skips files not modified since this time. The zero
	// value disables the check.
	LastUpdated time.Time

	// SkipList downgrades coordinate problems to INFO and blocks
	// coordinate write-backs for the listed municipalities.
	SkipList polling.SkipList
}

// Metrics counts what a run did.
type Metrics struct {
	Municipalities  int
	FilesChecked    int
	Errors          int
	Warnings        int
	Skipped         int
	Updated         int
	Finals          int
	DeletionTargets int
	Deleted         int
}

// Merge combines the metrics from another run into this one.
func (m *Metrics) Merge(other *Metrics) *Metrics {
	if other == nil {
		return m
	}

	m.Municipalities += other.Municipalities
	m.FilesChecked += other.FilesChecked
	m.Errors += other.Errors
	m.Warnings += other.Warnings
	m.Skipped += other.Skipped
	m.Updated += other.Updated
	m.Finals += other.Finals
	m.DeletionTargets += other.DeletionTargets
	m.Deleted += other.Deleted

	return m
}

// Report is the machine readable outcome of a run, consumed by the
// report server.
type Report struct {
	GeneratedAt    time.Time             `json:"generated_at"`
	Municipalities []*MunicipalityReport `json:"municipalities"`
}

// MunicipalityReport collects everything found for one municipality.
type MunicipalityReport struct {
	Row           int                  `json:"row"`
	Municipality  polling.Municipality `json:"municipality"`
	FolderID      string               `json:"folder_id"`
	Diagnostics   polling.Diagnostics  `json:"diagnostics,omitempty"`
	SuspectPoints []spatial.Point      `json:"suspect_points,omitempty"`
}

// Runner executes the workflows over one Storage.
type Runner struct {
	store   Storage
	rec     *geocode.Reconciler
	opts    Options
	current *MunicipalityReport

	Metrics Metrics
	Report  Report
}

// New creates a runner. rec may be nil when Options.Update is false;
// check-only runs never geocode.
func New(store Storage, rec *geocode.Reconciler, opts Options) *Runner {
	return &Runner{
		store:  store,
		rec:    rec,
		opts:   opts,
		Report: Report{GeneratedAt: time.Now().In(jst)},
	}
}

func (r *Runner) begin(entry sheet.Entry) {
	r.current = &MunicipalityReport{
		Row:          entry.Row,
		Municipality: entry.Municipality,
		FolderID:     entry.FolderID,
	}
	r.Report.Municipalities = append(r.Report.Municipalities, r.current)
	r.Metrics.Municipalities++
}

// report logs diagnostics with the spreadsheet row prefix, counts them
// and records them for the report.
func (r *Runner) report(entry sheet.Entry, diags polling.Diagnostics) {
	for _, d := range diags {
		switch d.Severity {
		case polling.SeverityError:
			r.Metrics.Errors++
		case polling.SeverityWarning:
			r.Metrics.Warnings++
		}

		log.Printf("[%d行目] %s", entry.Row, d)
	}

	if r.current != nil {
		r.current.Diagnostics = append(r.current.Diagnostics, diags...)
	}
}

func (r *Runner) collectSuspects(f *polling.SourceFile) {
	if r.current == nil {
		return
	}

	for _, row := range f.Rows {
		if !strings.Contains(row.Note, geocode.SuspectNote) {
			continue
		}

		if p, ok := row.Point(); ok {
			r.current.SuspectPoints = append(r.current.SuspectPoints, p)
		}
	}
}

// Summary logs the run totals the way operators expect to read them.
func (r *Runner) Summary() {
	log.Printf("処理自治体数: %d件, エラー件数: %d件, ワーニング件数: %d件, スキップ件数: %d件",
		r.Metrics.Municipalities, r.Metrics.Errors, r.Metrics.Warnings, r.Metrics.Skipped)

	if r.Metrics.DeletionTargets > 0 {
		log.Printf("削除対象件数: %d件, 削除成功件数: %d件", r.Metrics.DeletionTargets, r.Metrics.Deleted)
	}
}

// ParseLastUpdated parses the -lu argument, YYYYMMDD or YYYYMMDDHHMM,
// interpreted as JST.
func ParseLastUpdated(s string) (time.Time, error) {
	switch len(s) {
	case 8:
		return time.ParseInLocation("20060102", s, jst)
	case 12:
		return time.ParseInLocation("200601021504", s, jst)
	default:
		return time.Time{}, fmt.Errorf("invalid datetime %q: want YYYYMMDD or YYYYMMDDHHMM", s)
	}
}
