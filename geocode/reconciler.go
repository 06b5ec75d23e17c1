// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"log"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tohyomap/pollcsv/polling"
	"github.com/tohyomap/pollcsv/retry"
	"github.com/tohyomap/pollcsv/spatial"
)

// SuspectNote marks rows whose two provider answers disagree.
const SuspectNote = "緯度経度は怪しい"

// DefaultThresholdMeters is the provider disagreement distance above
// which coordinates are flagged as suspect.
const DefaultThresholdMeters = 200.0

// ReconcilerOptions tunes the reconciliation run.
type ReconcilerOptions struct {
	// Parallelism bounds concurrent rows in flight. Zero means 4.
	Parallelism int
	// RequestsPerSecond limits each provider independently. Zero means 5.
	RequestsPerSecond float64
	// ThresholdMeters overrides DefaultThresholdMeters when positive.
	ThresholdMeters float64
	// Retry controls per-request backoff.
	Retry retry.Config
}

// Reconciler fills missing or invalid coordinates by querying two
// providers per row and cross-checking their answers.
type Reconciler struct {
	google    Geocoder
	gsi       Geocoder
	cache     *Cache
	limiters  map[string]*rate.Limiter
	threshold float64
	parallel  int
	retryCfg  retry.Config
}

// NewReconciler builds a reconciler over the two providers. cache may
// be nil.
func NewReconciler(google, gsi Geocoder, cache *Cache, opts ReconcilerOptions) *Reconciler {
	if opts.Parallelism <= 0 {
		opts.Parallelism = 4
	}

	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}

	if opts.ThresholdMeters <= 0 {
		opts.ThresholdMeters = DefaultThresholdMeters
	}

	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultConfig()
	}

	return &Reconciler{
		google: google,
		gsi:    gsi,
		cache:  cache,
		limiters: map[string]*rate.Limiter{
			google.Name(): rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
			gsi.Name():    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		},
		threshold: opts.ThresholdMeters,
		parallel:  opts.Parallelism,
		retryCfg:  opts.Retry,
	}
}

// Outcome summarizes what a reconciliation run did to a file.
type Outcome struct {
	// Updated rows got coordinates written.
	Updated int
	// Suspect rows got coordinates plus the suspect note.
	Suspect int
	// Failed rows could not be resolved by any provider.
	Failed int
}

// Changed reports whether the file content was modified.
func (o Outcome) Changed() bool {
	return o.Updated > 0
}

// ProviderFailure reports whether any row was left unresolved because
// every provider failed for it. Callers hold back the write in that
// case so a flaky provider does not mask rows that still need fixing.
func (o Outcome) ProviderFailure() bool {
	return o.Failed > 0
}

type resolution struct {
	idx       int
	google    *Result
	googleErr error
	gsi       *Result
	gsiErr    error
}

// ReconcileFile resolves every row of f that lacks valid coordinates,
// mutating the rows in place. Lookups run concurrently; row updates and
// diagnostics are applied sequentially afterwards in file order.
func (r *Reconciler) ReconcileFile(ctx context.Context, f *polling.SourceFile, skip polling.SkipList) (Outcome, polling.Diagnostics, error) {
	var candidates []int

	for i := range f.Rows {
		if !f.Rows[i].CoordinatesValid() {
			candidates = append(candidates, i)
		}
	}

	results := make([]resolution, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)

	for n, idx := range candidates {
		g.Go(func() error {
			addr := FullAddress(f.Municipality, f.Rows[idx].Address)

			res := resolution{idx: idx}
			res.google, res.googleErr = r.lookup(gctx, r.google, addr)
			res.gsi, res.gsiErr = r.lookup(gctx, r.gsi, addr)
			results[n] = res

			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return Outcome{}, nil, err
	}

	var (
		out   Outcome
		diags polling.Diagnostics
	)

	downgraded := skip.Contains(f.Municipality)

	for _, res := range results {
		row := &f.Rows[res.idx]

		switch {
		case res.google == nil && res.gsi == nil:
			out.Failed++
			diags.Add(polling.SeverityError, f.Name, row.Line,
				"APIで緯度経度が取得できませんでした (google: %v, gsi: %v)", res.googleErr, res.gsiErr)

		case res.google != nil && res.gsi != nil:
			adopt(row, res.google.Point)
			out.Updated++

			dist := spatial.HaversineDistance(res.google.Point, res.gsi.Point)
			if dist >= r.threshold {
				row.Note = AppendSuspect(row.Note)
				out.Suspect++

				severity := polling.SeverityWarning
				if downgraded {
					severity = polling.SeverityInfo
				}

				diags.Add(severity, f.Name, row.Line,
					"座標プロバイダ間の距離が%.0fmあります。noteに「%s」を記録しました", dist, SuspectNote)
			} else {
				diags.Add(polling.SeverityInfo, f.Name, row.Line,
					"緯度経度を補完しました (lat=%s, long=%s)", row.Lat, row.Long)
			}

		default:
			adopted := res.google
			if adopted == nil {
				adopted = res.gsi
			}

			adopt(row, adopted.Point)
			out.Updated++
			diags.Add(polling.SeverityInfo, f.Name, row.Line,
				"%sのみ成功したため、その座標を採用しました (lat=%s, long=%s)", adopted.Provider, row.Lat, row.Long)
		}
	}

	return out, diags, nil
}

func (r *Reconciler) lookup(ctx context.Context, gc Geocoder, addr string) (*Result, error) {
	// The cache is best effort; a broken cache degrades to live lookups.
	if p, ok, err := r.cache.Get(ctx, gc.Name(), addr); err != nil {
		log.Printf("geocode cache read failed: %v", err)
	} else if ok {
		return &Result{Point: p, Provider: gc.Name()}, nil
	}

	if err := r.limiters[gc.Name()].Wait(ctx); err != nil {
		return nil, err
	}

	res, err := retry.Do(ctx, r.retryCfg, IsRetryable, func() (*Result, error) {
		return gc.Geocode(ctx, addr)
	})
	if err != nil {
		return nil, err
	}

	if err := r.cache.Put(ctx, gc.Name(), addr, res.Point); err != nil {
		log.Printf("geocode cache write failed: %v", err)
	}

	return res, nil
}

func adopt(row *polling.Row, p spatial.Point) {
	row.Lat = strconv.FormatFloat(p.Lat, 'f', -1, 64)
	row.Long = strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

// AppendSuspect adds SuspectNote to a note value unless it is already
// present. Existing note content is kept, joined with a semicolon.
func AppendSuspect(note string) string {
	if note == "" {
		return SuspectNote
	}

	for _, part := range strings.Split(note, ";") {
		if strings.TrimSpace(part) == SuspectNote {
			return note
		}
	}

	return note + ";" + SuspectNote
}
