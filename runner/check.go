// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"fmt"
	"log"

	"github.com/tohyomap/pollcsv/drive"
	"github.com/tohyomap/pollcsv/polling"
	"github.com/tohyomap/pollcsv/sheet"
)

// Check runs the validation workflow for one municipality: deletion
// targets, filename correction, per-file validation and, in update
// mode, coordinate repair.
func (r *Runner) Check(ctx context.Context, entry sheet.Entry) error {
	r.begin(entry)

	m := entry.Municipality

	files, err := r.store.List(ctx, entry.FolderID)
	if err != nil {
		return fmt.Errorf("%s: %w", m, err)
	}

	r.handleDeletionTargets(ctx, entry, files)

	targets := r.findCSVFiles(ctx, m, files)
	if len(targets) == 0 {
		log.Printf("[%d行目] %s: 正規化CSVファイルが見つかりません", entry.Row, m)
		r.Metrics.Warnings++

		return nil
	}

	for _, tf := range targets {
		if r.skipByTime(entry, tf) {
			continue
		}

		if err := r.processFile(ctx, entry, tf); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) handleDeletionTargets(ctx context.Context, entry sheet.Entry, files []drive.File) {
	targets := drive.DeletionTargets(files)
	if len(targets) == 0 {
		return
	}

	r.Metrics.DeletionTargets += len(targets)

	if !r.opts.Delete {
		names := make([]string, len(targets))
		for i, t := range targets {
			names[i] = t.Name
		}

		log.Printf("[%d行目] %s: 削除希望ファイル %d件を検出しました: %v", entry.Row, entry.Municipality, len(targets), names)

		return
	}

	log.Printf("[%d行目] %s: 削除希望ファイル %d件を削除します", entry.Row, entry.Municipality, len(targets))

	for _, t := range targets {
		if err := r.store.Delete(ctx, t.ID); err != nil {
			log.Printf("削除失敗: %s - %v", t.Name, err)
			r.Metrics.Errors++

			continue
		}

		log.Printf("削除完了: %s", t.Name)
		r.Metrics.Deleted++
	}
}

func (r *Runner) skipByTime(entry sheet.Entry, tf targetFile) bool {
	if r.opts.LastUpdated.IsZero() || tf.file.Modified.IsZero() {
		return false
	}

	if !tf.file.Modified.Before(r.opts.LastUpdated) {
		return false
	}

	log.Printf("スキップ: [%d行目] %s の最終更新日時(%s)が指定日時(%s)より古いため",
		entry.Row, tf.name,
		tf.file.Modified.In(jst).Format("2006-01-02 15:04:05"),
		r.opts.LastUpdated.In(jst).Format("2006-01-02 15:04:05"))
	r.Metrics.Skipped++

	return true
}

func (r *Runner) processFile(ctx context.Context, entry sheet.Entry, tf targetFile) error {
	m := entry.Municipality

	log.Printf("[%d行目] %s 処理開始", entry.Row, tf.name)

	content, err := r.store.Download(ctx, tf.file.ID)
	if err != nil {
		var diags polling.Diagnostics
		diags.Add(polling.SeverityError, tf.name, 0, "ダウンロードに失敗しました: %v", err)
		r.report(entry, diags)

		return nil
	}

	r.Metrics.FilesChecked++

	decoded, err := polling.Decode(content)
	if err != nil {
		// An undecodable file is an error for every municipality; the
		// skip list only softens coordinate diagnostics.
		var diags polling.Diagnostics
		diags.Add(polling.SeverityError, tf.name, 0, "エンコード不正: %v", err)
		r.report(entry, diags)

		return nil
	}

	f, diags, err := polling.ParseFile(tf.name, decoded, m, tf.role)
	r.report(entry, diags)

	if err != nil {
		// The schema problem is already in the diagnostics.
		return nil
	}

	defer r.collectSuspects(f)

	vdiags := f.Validate(r.opts.SkipList)
	r.report(entry, vdiags)

	if f.HasCoordinateErrors() {
		wrote, err := r.repairCoordinates(ctx, entry, tf, f)
		if err != nil || wrote {
			return err
		}
	}

	// The encoding fix is written regardless of --update; only
	// coordinate fixes are gated.
	if f.NeedsEncodingNormalization() {
		if err := r.store.Update(ctx, tf.file.ID, f.NormalizedText()); err != nil {
			log.Printf("[%d行目] Drive上書き失敗: %v", entry.Row, err)
			r.Metrics.Errors++

			return nil
		}

		r.Metrics.Updated++
		log.Printf("[%d行目] %s: BOM有/Shift-JIS系CSVをBOM無しUTF-8でDrive上書きしました", entry.Row, tf.name)
	}

	if !diags.HasErrors() && !vdiags.HasErrors() {
		log.Printf("[%d行目] %s: OK", entry.Row, tf.name)
	}

	return nil
}

// repairCoordinates handles rows with missing or invalid coordinates and
// reports whether the file was written back.
func (r *Runner) repairCoordinates(ctx context.Context, entry sheet.Entry, tf targetFile, f *polling.SourceFile) (bool, error) {
	m := entry.Municipality

	if !r.opts.Update {
		if r.opts.SkipList.Contains(m) {
			return false, nil
		}

		if allCoordinateErrorsMarked(f) {
			log.Printf("[%d行目] %s: lat/longエラーを検出しました（チェックのみモードのため修正・保存は行いません） ※全てnote=削除または不明",
				entry.Row, tf.name)
		} else {
			log.Printf("[%d行目] %s: lat/longエラーを検出しました（チェックのみモードのため修正・保存は行いません）", entry.Row, tf.name)
			r.Metrics.Warnings++
		}

		return false, nil
	}

	// Skip-listed municipalities are never written back.
	if r.opts.SkipList.Contains(m) {
		log.Printf("[%d行目] %s: スキップ対象自治体のためlat/long修正を行いません", entry.Row, m)

		return false, nil
	}

	if r.rec == nil {
		return false, fmt.Errorf("update mode requires a geocoder")
	}

	out, rdiags, err := r.rec.ReconcileFile(ctx, f, r.opts.SkipList)
	if err != nil {
		return false, err
	}

	r.report(entry, rdiags)

	if out.ProviderFailure() {
		log.Printf("[%d行目] APIで緯度経度が取得できなかったため上書き保存をスキップ", entry.Row)
		r.Metrics.Warnings++

		return false, nil
	}

	if !out.Changed() {
		return false, nil
	}

	content, err := f.MarshalCSV()
	if err != nil {
		return false, fmt.Errorf("%s: %w", tf.name, err)
	}

	if err := r.store.Update(ctx, tf.file.ID, content); err != nil {
		log.Printf("[%d行目] Drive上書き失敗: %v", entry.Row, err)
		r.Metrics.Errors++

		return false, nil
	}

	r.Metrics.Updated++
	log.Printf("[%d行目] lat/long修正・Drive上書き保存完了", entry.Row)

	return true, nil
}

// allCoordinateErrorsMarked reports whether every row needing a
// coordinate fix is explicitly marked 削除 or 不明.
func allCoordinateErrorsMarked(f *polling.SourceFile) bool {
	for _, row := range f.Rows {
		if row.CoordinatesValid() {
			continue
		}

		if row.Note != polling.NoteDeleted && row.Note != polling.NoteUnknown {
			return false
		}
	}

	return true
}
