// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package resilience

// DegradationLevel records which fallback tier actually produced a value.
// Callers report it as metadata ("using offline weather estimate") rather
// than as an error.
type DegradationLevel int

const (
	// Live indicates the primary operation succeeded.
	Live DegradationLevel = iota
	// Cached indicates a previously stored reading satisfied the call.
	Cached
	// Degraded indicates a rule-based heuristic produced the value.
	Degraded
	// StaticDefault indicates the final always-succeeding tier was used.
	StaticDefault
	// Unavailable indicates every tier failed; the one fatal condition.
	Unavailable
)

// String returns the lowercase tier name used in logs and metrics labels.
func (d DegradationLevel) String() string {
	switch d {
	case Live:
		return "live"
	case Cached:
		return "cached"
	case Degraded:
		return "degraded"
	case StaticDefault:
		return "static_default"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so levels serialize as
// their string names in JSON responses.
func (d DegradationLevel) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
