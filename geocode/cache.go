// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tohyomap/pollcsv/spatial"
)

// Cache persists provider answers in DuckDB so repeated runs over the
// same municipalities do not burn API quota. A nil *Cache is valid and
// caches nothing.
type Cache struct {
	db *sql.DB
}

// NewCache wraps an open DuckDB connection.
func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db}
}

// CreateSchema creates the cache table if missing.
func (c *Cache) CreateSchema(ctx context.Context) error {
	if c == nil {
		return nil
	}

	_, err := c.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS geocode_cache (
			provider    VARCHAR NOT NULL,
			address     VARCHAR NOT NULL,
			point       VARCHAR NOT NULL,
			resolved_at TIMESTAMP DEFAULT current_timestamp,
			PRIMARY KEY (provider, address)
		)`)
	if err != nil {
		return fmt.Errorf("creating geocode_cache schema: %w", err)
	}

	return nil
}

// Get returns the cached point for a provider and address, if any.
func (c *Cache) Get(ctx context.Context, provider, address string) (spatial.Point, bool, error) {
	var p spatial.Point
	if c == nil {
		return p, false, nil
	}

	// Points are stored in WKT; spatial.Point scans itself.
	err := c.db.QueryRowContext(ctx,
		`SELECT point FROM geocode_cache WHERE provider = ? AND address = ?`,
		provider, address).Scan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return p, false, nil
	}

	if err != nil {
		return p, false, fmt.Errorf("reading geocode cache: %w", err)
	}

	return p, true, nil
}

// Put stores a provider answer, replacing any previous one.
func (c *Cache) Put(ctx context.Context, provider, address string, p spatial.Point) error {
	if c == nil {
		return nil
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO geocode_cache (provider, address, point) VALUES (?, ?, ?)`,
		provider, address, p)
	if err != nil {
		return fmt.Errorf("writing geocode cache: %w", err)
	}

	return nil
}
