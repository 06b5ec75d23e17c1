// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

// Package retry wraps exponential backoff for calls against remote
// services that fail transiently.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config controls the backoff schedule.
type Config struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultConfig matches the pacing expected by the Drive and geocoding
// quotas: a handful of attempts, starting at one second.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     5,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
	}
}

// Do runs op until it succeeds, the context is cancelled, or the attempt
// budget runs out. Errors rejected by retryable stop the loop immediately.
// A nil retryable retries every error.
func Do[T any](ctx context.Context, cfg Config, retryable func(error) bool, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.MaxInterval = cfg.MaxInterval
	b.MaxElapsedTime = 0 // bounded by MaxAttempts, not wall time

	wrapped := func() (T, error) {
		v, err := op()
		if err != nil && retryable != nil && !retryable(err) {
			return v, backoff.Permanent(err)
		}

		return v, err
	}

	// MaxAttempts includes the first try, so n retries is attempts-1.
	var retries uint64
	if cfg.MaxAttempts > 0 {
		retries = cfg.MaxAttempts - 1
	}

	return backoff.RetryWithData(wrapped, backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx))
}
