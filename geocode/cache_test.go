// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/stretchr/testify/require"

	"github.com/tohyomap/pollcsv/spatial"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()

	db, err := sql.Open("duckdb", "") // in-memory database
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	c := NewCache(db)
	require.NoError(t, c.CreateSchema(context.Background()))

	return c
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	_, ok, err := c.Get(ctx, ProviderGoogleMaps, "東京都千代田区丸の内1-1")
	require.NoError(t, err)
	require.False(t, ok)

	p := spatial.Point{Lat: 35.681236, Lng: 139.767125}
	require.NoError(t, c.Put(ctx, ProviderGoogleMaps, "東京都千代田区丸の内1-1", p))

	got, ok, err := c.Get(ctx, ProviderGoogleMaps, "東京都千代田区丸の内1-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, p, got)

	// Providers are independent key spaces.
	_, ok, err = c.Get(ctx, ProviderGSI, "東京都千代田区丸の内1-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheReplace(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	require.NoError(t, c.Put(ctx, ProviderGSI, "addr", spatial.Point{Lat: 1, Lng: 2}))
	require.NoError(t, c.Put(ctx, ProviderGSI, "addr", spatial.Point{Lat: 3, Lng: 4}))

	got, ok, err := c.Get(ctx, ProviderGSI, "addr")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, spatial.Point{Lat: 3, Lng: 4}, got)
}

func TestCacheNilIsInert(t *testing.T) {
	ctx := context.Background()

	var c *Cache
	require.NoError(t, c.CreateSchema(ctx))
	require.NoError(t, c.Put(ctx, ProviderGSI, "addr", spatial.Point{}))

	_, ok, err := c.Get(ctx, ProviderGSI, "addr")
	require.NoError(t, err)
	require.False(t, ok)
}
