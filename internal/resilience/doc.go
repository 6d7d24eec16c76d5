// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

// Package resilience wraps every external dependency call with timeout,
// retry-with-backoff, circuit breaking, and tiered fallback execution.
//
// Each external service is identified by a service key ("weather",
// "calendar", "profile", "wardrobe"). The Executor keeps one circuit
// breaker per key, shared across concurrent requests. Calls flow through:
//
//  1. Circuit breaker gate: while OPEN, calls are short-circuited straight
//     to the fallback chain without attempting the operation.
//  2. Retry loop: transient failures are retried with exponential backoff;
//     validation failures are surfaced immediately and never retried.
//  3. Fallback chain: an ordered list of increasingly degraded producers
//     (e.g. cache, heuristic, static default) tried until one succeeds.
//
// Every result carries a DegradationLevel recording which tier produced it,
// so callers can report degraded data as metadata instead of an error.
package resilience
