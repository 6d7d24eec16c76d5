// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrExhausted indicates every tier of a fallback chain failed.
// This is the single fatal condition in the resilience layer; callers
// surface it as an explicit "recommendation unavailable" result.
var ErrExhausted = errors.New("all fallback tiers exhausted")

// ValidationError marks a permanently failing input error.
// Validation errors are surfaced to the caller immediately, are never
// retried, and do not count as circuit breaker failures.
type ValidationError struct {
	msg string
}

// NewValidationError creates a validation error with the given message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.msg
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransient reports whether err warrants a retry. Timeouts, connection
// errors, and unclassified failures are treated as transient; validation
// errors and caller cancellation are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if IsValidation(err) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// Unclassified dependency failures default to transient; the retry
	// budget bounds the cost of a wrong guess.
	return true
}
