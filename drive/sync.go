// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package drive

import (
	"context"
	"fmt"
	"log"
	"time"
)

// The pause between file copies keeps bulk backups under the per-user
// write quota.
const copyPause = 100 * time.Millisecond

// SyncStats counts what a CopyFolder run created.
type SyncStats struct {
	Folders int
	Files   int
	Skipped int
}

// CopyFolder recursively copies the folder sourceID into targetParentID
// under the given name and returns the new folder's ID. Shortcuts are
// skipped. Progress is reported through onItem when set.
func (c *Client) CopyFolder(ctx context.Context, sourceID, targetParentID, name string, onItem func()) (string, SyncStats, error) {
	var stats SyncStats

	id, err := c.copyFolder(ctx, sourceID, targetParentID, name, &stats, onItem)

	return id, stats, err
}

func (c *Client) copyFolder(ctx context.Context, sourceID, targetParentID, name string, stats *SyncStats, onItem func()) (string, error) {
	newFolderID, err := c.CreateFolder(ctx, targetParentID, name)
	if err != nil {
		return "", err
	}

	stats.Folders++
	notify(onItem)

	items, err := c.List(ctx, sourceID)
	if err != nil {
		return "", err
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		switch {
		case item.IsShortcut():
			log.Printf("ショートカットをスキップ: %s", item.Name)
			stats.Skipped++

		case item.IsFolder():
			if _, err := c.copyFolder(ctx, item.ID, newFolderID, item.Name, stats, onItem); err != nil {
				return "", fmt.Errorf("copying folder %s: %w", item.Name, err)
			}

		default:
			if _, err := c.Copy(ctx, item.ID, newFolderID); err != nil {
				return "", fmt.Errorf("copying file %s: %w", item.Name, err)
			}

			stats.Files++
			notify(onItem)

			select {
			case <-time.After(copyPause):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	return newFolderID, nil
}

func notify(onItem func()) {
	if onItem != nil {
		onItem()
	}
}

// SyncFolder incrementally copies the tree under sourceID into destID.
// Folders already present in the destination are reused by name, and a
// file is skipped when the destination copy is at least as new as the
// source. Stale destination copies are replaced.
func (c *Client) SyncFolder(ctx context.Context, sourceID, destID string, onItem func()) (SyncStats, error) {
	var stats SyncStats

	err := c.syncFolder(ctx, sourceID, destID, &stats, onItem)

	return stats, err
}

func (c *Client) syncFolder(ctx context.Context, sourceID, destID string, stats *SyncStats, onItem func()) error {
	items, err := c.List(ctx, sourceID)
	if err != nil {
		return err
	}

	existing, err := c.List(ctx, destID)
	if err != nil {
		return err
	}

	byName := make(map[string]File, len(existing))
	for _, f := range existing {
		byName[f.Name] = f
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch {
		case item.IsShortcut():
			log.Printf("ショートカットをスキップ: %s", item.Name)
			stats.Skipped++

		case item.IsFolder():
			target, ok := byName[item.Name]

			targetID := target.ID
			if !ok || !target.IsFolder() {
				targetID, err = c.CreateFolder(ctx, destID, item.Name)
				if err != nil {
					return fmt.Errorf("creating folder %s: %w", item.Name, err)
				}

				stats.Folders++
				notify(onItem)
			}

			if err := c.syncFolder(ctx, item.ID, targetID, stats, onItem); err != nil {
				return err
			}

		default:
			if dest, ok := byName[item.Name]; ok {
				if !dest.Modified.Before(item.Modified) {
					stats.Skipped++
					notify(onItem)

					continue
				}

				if err := c.Delete(ctx, dest.ID); err != nil {
					return fmt.Errorf("replacing %s: %w", item.Name, err)
				}
			}

			if _, err := c.Copy(ctx, item.ID, destID); err != nil {
				return fmt.Errorf("copying file %s: %w", item.Name, err)
			}

			stats.Files++
			notify(onItem)

			select {
			case <-time.After(copyPause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return nil
}

// CountItems walks a folder tree and returns how many folders and files
// a CopyFolder run would touch, for sizing a progress bar.
func (c *Client) CountItems(ctx context.Context, folderID string) (folders, files int, err error) {
	items, err := c.List(ctx, folderID)
	if err != nil {
		return 0, 0, err
	}

	folders = 1

	for _, item := range items {
		switch {
		case item.IsShortcut():

		case item.IsFolder():
			subFolders, subFiles, err := c.CountItems(ctx, item.ID)
			if err != nil {
				return 0, 0, err
			}

			folders += subFolders
			files += subFiles

		default:
			files++
		}
	}

	return folders, files, nil
}
