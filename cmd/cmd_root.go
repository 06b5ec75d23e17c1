// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "pollcsv",
	Short: "投票所CSVの検証・正規化ツール",
	Long: `
pollcsv はGoogle Drive上の投票所正規化CSVを検証し、文字コードと緯度経度を
修正し、自治体ごとの最終正規化CSVを作成します。対象の自治体は
スプレッドシートの全自治体一覧から取得します。
`,
}

var settingsPath string

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&settingsPath,
		"settings",
		"",
		"設定ファイルのパス (省略時はカレントディレクトリのmy_settings.json)",
	)
}
