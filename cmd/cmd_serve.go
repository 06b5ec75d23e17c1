// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/tohyomap/pollcsv/config"
	"github.com/tohyomap/pollcsv/report"
)

var serveCmd = &cobra.Command{
	Use:   "serve <report.json>",
	Short: "checkの実行結果レポートをHTTPで配信する",
	Long: `
serve は check --report で保存したレポートを読み込み、診断結果と
怪しい座標のクラスタをJSON APIで配信します。
`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		settings, err := config.Load(settingsPath)
		if err != nil {
			return err
		}

		r, err := report.LoadReport(args[0])
		if err != nil {
			return err
		}

		log.Printf("レポート配信開始: %s (%d自治体)", settings.ListenAddr, len(r.Municipalities))

		return report.NewServer(r).Run(settings.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
