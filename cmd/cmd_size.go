// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tohyomap/pollcsv/config"
	"github.com/tohyomap/pollcsv/drive"
)

var sizeFlags struct {
	top int
}

type folderSize struct {
	name  string
	bytes int64
	files int
}

var sizeCmd = &cobra.Command{
	Use:   "size [都道府県] [市区町村]",
	Short: "自治体フォルダごとの使用量を集計する",
	Args:  cobra.MaximumNArgs(2),
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

		bar := targetBar(len(entries), "Measuring")

		var sizes []folderSize

		var totalBytes int64

		var totalFiles int

		for _, entry := range entries {
			bytes, files, err := store.FolderSize(ctx, entry.FolderID)
			if err != nil {
				log.Printf("%s: サイズ取得失敗: %v", entry.Municipality, err)

				continue
			}

			sizes = append(sizes, folderSize{name: entry.Municipality.String(), bytes: bytes, files: files})
			totalBytes += bytes
			totalFiles += files

			if bar != nil {
				_ = bar.Add(1)
			}
		}

		sort.Slice(sizes, func(i, j int) bool {
			return sizes[i].bytes > sizes[j].bytes
		})

		top := sizeFlags.top
		if top <= 0 || top > len(sizes) {
			top = len(sizes)
		}

		fmt.Printf("使用量上位%d自治体:\n", top)

		for _, s := range sizes[:top] {
			fmt.Printf("  %-20s %10s (%dファイル)\n", s.name, drive.FormatSize(s.bytes), s.files)
		}

		fmt.Printf("合計: %s (%d自治体, %dファイル)\n", drive.FormatSize(totalBytes), len(sizes), totalFiles)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(sizeCmd)
	sizeCmd.Flags().IntVar(&sizeFlags.top, "top", 10, "表示する上位自治体数 (0で全件)")
}
