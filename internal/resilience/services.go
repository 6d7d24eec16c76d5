// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package resilience

// Service keys shared across callers. A key selects one breaker, one
// rate limiter, and one metrics label set, so every caller touching the
// same backing service must use the same key.
const (
	ServiceWeather  = "weather"
	ServiceCalendar = "calendar"
	ServiceProfile  = "profile"
	ServiceWardrobe = "wardrobe"
)
