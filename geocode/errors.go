// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies provider failures.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit request rate limit reached.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded daily quota exhausted or access denied.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout connection or deadline timeout.
	ErrorTypeTimeout
	// ErrorTypeNotFound the address did not resolve.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest malformed request.
	ErrorTypeInvalidRequest
	// ErrorTypeNetwork transport level failure.
	ErrorTypeNetwork
)

// Error is a provider failure with a classification callers can act on.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ClassifyHTTPError maps a non-200 provider response to an Error.
func ClassifyHTTPError(statusCode int) *Error {
	switch statusCode {
	case http.StatusTooManyRequests: // 429
		return &Error{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
		}
	case http.StatusForbidden: // 403
		return &Error{
			Type:    ErrorTypeQuotaExceeded,
			Message: "quota exceeded or access denied",
		}
	case http.StatusBadRequest: // 400
		return &Error{
			Type:    ErrorTypeInvalidRequest,
			Message: "invalid request",
		}
	case http.StatusNotFound: // 404
		return &Error{
			Type:    ErrorTypeNotFound,
			Message: "address not found",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("service unavailable (status %d)", statusCode),
		}
	default:
		return &Error{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}

// IsRetryable reports whether another attempt could change the outcome.
// Unclassified errors are assumed to be transport problems and retried.
func IsRetryable(err error) bool {
	var geoErr *Error
	if !errors.As(err, &geoErr) {
		return true
	}

	switch geoErr.Type {
	case ErrorTypeRateLimit, ErrorTypeTimeout, ErrorTypeNetwork:
		return true
	default:
		return false
	}
}
