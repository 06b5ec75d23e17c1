// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tohyomap/pollcsv/config"
	"github.com/tohyomap/pollcsv/runner"
)

var finalCmd = &cobra.Command{
	Use:   "final [都道府県] [市区町村]",
	Short: "最終正規化CSVを作成する",
	Long: `
final は各自治体のベースCSVとappendファイルを結合し、緯度経度のない行と
重複行を除いた上で区・投票区番号順に並べ替え、{市区町村名}_normalized_final.csv
としてDriveに保存します。既存の最終CSVは上書きされます。
`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		settings, err := config.Load(settingsPath)
		if err != nil {
			return err
		}

		store, entries, err := openTargets(ctx, settings, args)
		if err != nil {
			return err
		}

		r := runner.New(store, nil, runner.Options{SkipList: settings.SkipList()})

		bar := targetBar(len(entries), "Merging")

		for _, entry := range entries {
			if err := r.Final(ctx, entry); err != nil {
				return err
			}

			if bar != nil {
				_ = bar.Add(1)
			}
		}

		r.Summary()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(finalCmd)
}
