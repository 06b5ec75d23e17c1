// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

// Package drive wraps the Google Drive v3 API for the shared-drive
// folder tree that holds per-municipality CSV files. Every call honors
// shared drives and retries transient API failures.
package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/tohyomap/pollcsv/retry"
)

const (
	// FolderMimeType marks Drive folders.
	FolderMimeType = "application/vnd.google-apps.folder"
	// ShortcutMimeType marks Drive shortcuts, which sync runs skip.
	ShortcutMimeType = "application/vnd.google-apps.shortcut"

	csvMimeType = "text/csv"
)

// JST is the timezone file timestamps are reported in.
var JST = time.FixedZone("JST", 9*60*60)

// File is the slice of Drive metadata the tool works with.
type File struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
	Modified time.Time
}

// IsFolder reports whether the file is a Drive folder.
func (f File) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

// IsShortcut reports whether the file is a Drive shortcut.
func (f File) IsShortcut() bool {
	return f.MimeType == ShortcutMimeType
}

// Client is a Drive API client scoped to this tool's operations.
type Client struct {
	svc      *gdrive.Service
	retryCfg retry.Config
}

// NewClient builds a client. Credentials come from the provided
// options, or Application Default Credentials when none are given.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := gdrive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}

	return &Client{svc: svc, retryCfg: retry.DefaultConfig()}, nil
}

// Retryable reports whether a Drive API error is worth another attempt.
// Rate limits and server errors are; other API errors are not.
// Anything that is not a googleapi error is assumed to be transport
// trouble and retried.
func Retryable(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return true
	}

	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
}

func do[T any](c *Client, ctx context.Context, op func() (T, error)) (T, error) {
	return retry.Do(ctx, c.retryCfg, Retryable, op)
}

// List returns every file directly inside a folder.
func (c *Client) List(ctx context.Context, folderID string) ([]File, error) {
	var (
		files     []File
		pageToken string
	)

	for {
		resp, err := do(c, ctx, func() (*gdrive.FileList, error) {
			return c.svc.Files.List().
				Context(ctx).
				Q(fmt.Sprintf("'%s' in parents", folderID)).
				Spaces("drive").
				Fields("nextPageToken, files(id, name, mimeType, size, modifiedTime)").
				IncludeItemsFromAllDrives(true).
				SupportsAllDrives(true).
				PageToken(pageToken).
				Do()
		})
		if err != nil {
			return nil, fmt.Errorf("listing folder %s: %w", folderID, err)
		}

		for _, f := range resp.Files {
			files = append(files, toFile(f))
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return files, nil
}

func toFile(f *gdrive.File) File {
	out := File{
		ID:       f.Id,
		Name:     f.Name,
		MimeType: f.MimeType,
		Size:     f.Size,
	}

	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			out.Modified = t.In(JST)
		}
	}

	return out
}

// Download returns a file's content.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	return do(c, ctx, func() ([]byte, error) {
		resp, err := c.svc.Files.Get(fileID).Context(ctx).SupportsAllDrives(true).Download()
		if err != nil {
			return nil, fmt.Errorf("downloading file %s: %w", fileID, err)
		}

		defer resp.Body.Close()

		content, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", fileID, err)
		}

		return content, nil
	})
}

// Update overwrites a file's content in place.
func (c *Client) Update(ctx context.Context, fileID string, content []byte) error {
	_, err := do(c, ctx, func() (*gdrive.File, error) {
		return c.svc.Files.Update(fileID, &gdrive.File{}).
			Context(ctx).
			SupportsAllDrives(true).
			Media(bytes.NewReader(content), googleapi.ContentType(csvMimeType)).
			Do()
	})
	if err != nil {
		return fmt.Errorf("updating file %s: %w", fileID, err)
	}

	return nil
}

// Create makes a new CSV file inside a folder and returns its ID.
func (c *Client) Create(ctx context.Context, folderID, name string, content []byte) (string, error) {
	created, err := do(c, ctx, func() (*gdrive.File, error) {
		return c.svc.Files.Create(&gdrive.File{
			Name:     name,
			Parents:  []string{folderID},
			MimeType: csvMimeType,
		}).
			Context(ctx).
			SupportsAllDrives(true).
			Media(bytes.NewReader(content), googleapi.ContentType(csvMimeType)).
			Fields("id").
			Do()
	})
	if err != nil {
		return "", fmt.Errorf("creating %s in folder %s: %w", name, folderID, err)
	}

	return created.Id, nil
}

// CreateFolder makes a new folder and returns its ID.
func (c *Client) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	created, err := do(c, ctx, func() (*gdrive.File, error) {
		return c.svc.Files.Create(&gdrive.File{
			Name:     name,
			Parents:  []string{parentID},
			MimeType: FolderMimeType,
		}).
			Context(ctx).
			SupportsAllDrives(true).
			Fields("id, name").
			Do()
	})
	if err != nil {
		return "", fmt.Errorf("creating folder %s: %w", name, err)
	}

	return created.Id, nil
}

// Rename changes a file's name.
func (c *Client) Rename(ctx context.Context, fileID, newName string) error {
	_, err := do(c, ctx, func() (*gdrive.File, error) {
		return c.svc.Files.Update(fileID, &gdrive.File{Name: newName}).
			Context(ctx).
			SupportsAllDrives(true).
			Do()
	})
	if err != nil {
		return fmt.Errorf("renaming file %s to %s: %w", fileID, newName, err)
	}

	return nil
}

// Delete removes a file or folder.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	_, err := do(c, ctx, func() (struct{}, error) {
		return struct{}{}, c.svc.Files.Delete(fileID).Context(ctx).SupportsAllDrives(true).Do()
	})
	if err != nil {
		return fmt.Errorf("deleting file %s: %w", fileID, err)
	}

	return nil
}

// Copy duplicates a file into another folder and returns the new ID.
func (c *Client) Copy(ctx context.Context, fileID, parentID string) (string, error) {
	copied, err := do(c, ctx, func() (*gdrive.File, error) {
		return c.svc.Files.Copy(fileID, &gdrive.File{Parents: []string{parentID}}).
			Context(ctx).
			SupportsAllDrives(true).
			Fields("id, name").
			Do()
	})
	if err != nil {
		return "", fmt.Errorf("copying file %s: %w", fileID, err)
	}

	return copied.Id, nil
}

// ModifiedTime returns a file's last modification time in JST.
func (c *Client) ModifiedTime(ctx context.Context, fileID string) (time.Time, error) {
	f, err := do(c, ctx, func() (*gdrive.File, error) {
		return c.svc.Files.Get(fileID).
			Context(ctx).
			SupportsAllDrives(true).
			Fields("modifiedTime").
			Do()
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("getting modified time of %s: %w", fileID, err)
	}

	t, err := time.Parse(time.RFC3339, f.ModifiedTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing modified time %q: %w", f.ModifiedTime, err)
	}

	return t.In(JST), nil
}

// FolderName returns the display name of a folder.
func (c *Client) FolderName(ctx context.Context, folderID string) (string, error) {
	f, err := do(c, ctx, func() (*gdrive.File, error) {
		return c.svc.Files.Get(folderID).
			Context(ctx).
			SupportsAllDrives(true).
			Fields("name, mimeType").
			Do()
	})
	if err != nil {
		return "", fmt.Errorf("getting folder %s: %w", folderID, err)
	}

	if f.MimeType != FolderMimeType {
		return "", fmt.Errorf("%s is not a folder", folderID)
	}

	return f.Name, nil
}
