// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/tohyomap/pollcsv/config"
	"github.com/tohyomap/pollcsv/drive"
	"github.com/tohyomap/pollcsv/geocode"
	"github.com/tohyomap/pollcsv/report"
	"github.com/tohyomap/pollcsv/runner"
	"github.com/tohyomap/pollcsv/sheet"
)

var checkFlags struct {
	update      bool
	delete      bool
	lastUpdated string
	reportPath  string
}

var checkCmd = &cobra.Command{
	Use:   "check [都道府県] [市区町村]",
	Short: "正規化CSVを検証し、必要に応じて修正する",
	Long: `
check はスプレッドシートの全自治体一覧から対象自治体を取得し、各フォルダの
正規化CSVについて文字コード・スキーマ・緯度経度を検証します。引数で都道府県、
さらに市区町村まで絞り込めます。

--update を付けると緯度経度の欠損をGoogle MapsとGSIの両方で取得して
相互検証した上でDriveに書き戻します。文字コードの正規化はモードに
かかわらず書き戻されます。
`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		settings, err := config.Load(settingsPath)
		if err != nil {
			return err
		}

		opts := runner.Options{
			Update:   checkFlags.update,
			Delete:   checkFlags.delete,
			SkipList: settings.SkipList(),
		}

		if checkFlags.lastUpdated != "" {
			opts.LastUpdated, err = runner.ParseLastUpdated(checkFlags.lastUpdated)
			if err != nil {
				return err
			}
		}

		store, entries, err := openTargets(ctx, settings, args)
		if err != nil {
			return err
		}

		var rec *geocode.Reconciler

		if checkFlags.update {
			var closer func()

			rec, closer, err = buildReconciler(ctx, settings)
			if err != nil {
				return err
			}
			defer closer()
		}

		r := runner.New(store, rec, opts)

		bar := targetBar(len(entries), "Checking")

		for _, entry := range entries {
			if err := r.Check(ctx, entry); err != nil {
				return err
			}

			if bar != nil {
				_ = bar.Add(1)
			}
		}

		r.Summary()

		if checkFlags.reportPath != "" {
			if err := report.SaveReport(&r.Report, checkFlags.reportPath); err != nil {
				return err
			}

			log.Printf("レポートを%sに保存しました", checkFlags.reportPath)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVarP(
		&checkFlags.update,
		"update",
		"u",
		false,
		"lat/longの欠損を補完してDriveに書き戻す",
	)
	checkCmd.Flags().BoolVarP(
		&checkFlags.delete,
		"delete",
		"d",
		false,
		"ファイル名に削除希望を含むファイルを削除する",
	)
	checkCmd.Flags().StringVar(
		&checkFlags.lastUpdated,
		"last-updated",
		"",
		"この日時(YYYYMMDDまたはYYYYMMDDHHMM、JST)より古いファイルをスキップする",
	)
	checkCmd.Flags().StringVar(
		&checkFlags.reportPath,
		"report",
		"",
		"実行結果レポートをJSONで保存するパス",
	)
}

// openTargets builds the Drive client and resolves the municipalities to
// process from the registry spreadsheet, optionally narrowed by the
// prefecture and city arguments.
func openTargets(ctx context.Context, settings *config.Settings, args []string) (*drive.Client, []sheet.Entry, error) {
	store, err := drive.NewClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	registry, err := sheet.NewRegistry(ctx, settings.SpreadsheetID)
	if err != nil {
		return nil, nil, err
	}

	entries, err := registry.Targets(ctx, args)
	if err != nil {
		return nil, nil, err
	}

	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("no municipalities matched %v", args)
	}

	log.Printf("処理対象: %d自治体", len(entries))

	return store, entries, nil
}

func buildReconciler(ctx context.Context, settings *config.Settings) (*geocode.Reconciler, func(), error) {
	apiKey, err := settings.ResolveGoogleAPIKey(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving Google Maps API key: %w", err)
	}

	db, err := sql.Open("duckdb", settings.GeocodeCachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening geocode cache: %w", err)
	}

	cache := geocode.NewCache(db)
	if err := cache.CreateSchema(ctx); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating geocode cache schema: %w", err)
	}

	rec := geocode.NewReconciler(
		geocode.NewGoogleMapsGeocoder(apiKey),
		geocode.NewGSIGeocoder(),
		cache,
		geocode.ReconcilerOptions{
			Parallelism:       settings.Parallelism,
			RequestsPerSecond: settings.RequestsPerSecond,
			ThresholdMeters:   settings.SuspectThresholdMeters,
		},
	)

	return rec, func() { db.Close() }, nil
}

func targetBar(n int, description string) *progressbar.ProgressBar {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}

	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
