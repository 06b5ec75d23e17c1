// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/tohyomap/pollcsv/config"
	"github.com/tohyomap/pollcsv/drive"
)

var backupFlags struct {
	name string
	sync bool
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "正規化CSVのフォルダツリーを別フォルダに複製する",
	Long: `
backup は base_folder_id のフォルダツリーを dest_folder_id の下に再帰的に
複製します。ショートカットは複製されません。複製先のフォルダ名は省略時は
backup_YYYYMMDD になります。

--sync を付けると dest_folder_id 直下に差分同期します。既存のフォルダは
再利用され、複製先の方が新しいか同じファイルはスキップされます。
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		settings, err := config.Load(settingsPath)
		if err != nil {
			return err
		}

		if settings.BaseFolderID == "" || settings.DestFolderID == "" {
			return fmt.Errorf("backup requires base_folder_id and dest_folder_id in settings")
		}

		store, err := drive.NewClient(ctx)
		if err != nil {
			return err
		}

		sourceName, err := store.FolderName(ctx, settings.BaseFolderID)
		if err != nil {
			return err
		}

		folders, files, err := store.CountItems(ctx, settings.BaseFolderID)
		if err != nil {
			return err
		}

		bar := targetBar(folders+files, "Copying")

		onItem := func() {
			if bar != nil {
				_ = bar.Add(1)
			}
		}

		if backupFlags.sync {
			log.Printf("%s を差分同期します", sourceName)

			stats, err := store.SyncFolder(ctx, settings.BaseFolderID, settings.DestFolderID, onItem)
			if err != nil {
				return err
			}

			log.Printf("同期完了 (フォルダ%d件, ファイル%d件, スキップ%d件)",
				stats.Folders, stats.Files, stats.Skipped)

			return nil
		}

		name := backupFlags.name
		if name == "" {
			name = "backup_" + time.Now().Format("20060102")
		}

		log.Printf("%s を %s として複製します", sourceName, name)

		id, stats, err := store.CopyFolder(ctx, settings.BaseFolderID, settings.DestFolderID, name, onItem)
		if err != nil {
			return err
		}

		log.Printf("複製完了: %s (フォルダ%d件, ファイル%d件, スキップ%d件)",
			id, stats.Folders, stats.Files, stats.Skipped)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().StringVar(&backupFlags.name, "name", "", "複製先フォルダ名 (省略時はbackup_YYYYMMDD)")
	backupCmd.Flags().BoolVar(&backupFlags.sync, "sync", false, "新規複製ではなくdest_folder_id直下に差分同期する")
}
