// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"fmt"
	"log"

	"github.com/tohyomap/pollcsv/merge"
	"github.com/tohyomap/pollcsv/polling"
	"github.com/tohyomap/pollcsv/sheet"
)

// Final builds the final merged CSV for one municipality from its base
// and append files, and creates or overwrites {city}_normalized_final.csv
// on Drive.
func (r *Runner) Final(ctx context.Context, entry sheet.Entry) error {
	r.begin(entry)

	m := entry.Municipality
	log.Printf("[%d行目] %s: 最終正規化CSV作成開始", entry.Row, m)

	files, err := r.store.List(ctx, entry.FolderID)
	if err != nil {
		return fmt.Errorf("%s: %w", m, err)
	}

	targets := r.findCSVFiles(ctx, m, files)
	if len(targets) == 0 {
		log.Printf("[%d行目] %s: 正規化CSVファイルが見つかりません", entry.Row, m)
		r.Metrics.Errors++

		return nil
	}

	var parsed []*polling.SourceFile

	for _, tf := range targets {
		log.Printf("[%d行目] %s を読み込み中", entry.Row, tf.name)

		content, err := r.store.Download(ctx, tf.file.ID)
		if err != nil {
			var diags polling.Diagnostics
			diags.Add(polling.SeverityError, tf.name, 0, "ダウンロードに失敗しました: %v", err)
			r.report(entry, diags)

			continue
		}

		decoded, err := polling.Decode(content)
		if err != nil {
			var diags polling.Diagnostics
			diags.Add(polling.SeverityError, tf.name, 0, "デコードに失敗しました: %v", err)
			r.report(entry, diags)

			continue
		}

		f, diags, err := polling.ParseFile(tf.name, decoded, m, tf.role)
		r.report(entry, diags)

		if err != nil {
			continue
		}

		parsed = append(parsed, f)
	}

	if len(parsed) == 0 {
		log.Printf("[%d行目] %s: 読み込める正規化CSVがありません", entry.Row, m)
		r.Metrics.Errors++

		return nil
	}

	rows, stats, mdiags := merge.Merge(parsed[0], parsed[1:])
	r.report(entry, mdiags)

	log.Printf("[%d行目] フィルタリング前: %d行, フィルタリング後: %d行", entry.Row, stats.Read, stats.Retained)

	if stats.DroppedDuplicate > 0 {
		log.Printf("[%d行目] %s: %d件の重複行を除去しました", entry.Row, m, stats.DroppedDuplicate)
	}

	if stats.Retained == 0 {
		log.Printf("[%d行目] %s: 有効なデータ行がありません", entry.Row, m)
		r.Metrics.Errors++

		return nil
	}

	content, err := polling.MarshalRows(rows)
	if err != nil {
		return fmt.Errorf("%s: %w", m, err)
	}

	finalName := polling.FinalName(m.City)

	for _, f := range files {
		if f.Name == finalName {
			if err := r.store.Update(ctx, f.ID, content); err != nil {
				return fmt.Errorf("overwriting %s: %w", finalName, err)
			}

			r.Metrics.Finals++
			log.Printf("[%d行目] %s: 最終正規化CSV上書き完了 (%d行)", entry.Row, m, stats.Retained)

			return nil
		}
	}

	if _, err := r.store.Create(ctx, entry.FolderID, finalName, content); err != nil {
		return fmt.Errorf("creating %s: %w", finalName, err)
	}

	r.Metrics.Finals++
	log.Printf("[%d行目] %s: 最終正規化CSV作成完了 (%d行)", entry.Row, m, stats.Retained)

	return nil
}
