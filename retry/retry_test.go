// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fastConfig(attempts uint64) Config {
	return Config{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0

	got, err := Do(context.Background(), fastConfig(5), nil, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}

		return "ok", nil
	})

	require.NoError(t, err)
	require.Equal(t, "ok", got)
	require.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	transient := errors.New("transient")

	_, err := Do(context.Background(), fastConfig(3), nil, func() (int, error) {
		calls++

		return 0, transient
	})

	require.ErrorIs(t, err, transient)
	require.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("bad request")

	_, err := Do(context.Background(), fastConfig(5), func(err error) bool {
		return !errors.Is(err, permanent)
	}, func() (int, error) {
		calls++

		return 0, permanent
	})

	require.ErrorIs(t, err, permanent)
	require.Equal(t, 1, calls)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, fastConfig(10), nil, func() (int, error) {
		calls++

		return 0, errors.New("transient")
	})

	require.Error(t, err)
	require.LessOrEqual(t, calls, 1)
}
