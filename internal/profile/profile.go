// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

// Package profile defines the per-user style profile that feedback
// learning reads and writes, plus its persistent store.
package profile

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when no profile exists for a user.
var ErrNotFound = errors.New("profile not found")

// DefaultConfidenceThreshold is the starting rating bar below which a
// combination counts as disliked evidence.
const DefaultConfidenceThreshold = 2.5

// DislikedPattern records accumulated negative evidence against a
// tag combination. Patterns decay: cycles without reinforcement reduce
// the occurrence count until the pattern is removed.
type DislikedPattern struct {
	// Occurrences counts low-rating feedback events for this pattern.
	Occurrences int `json:"occurrences"`

	// DecayCycles counts feedback rounds since last reinforcement.
	DecayCycles int `json:"decay_cycles"`

	// LastSeen is when the pattern was last reinforced.
	LastSeen time.Time `json:"last_seen"`
}

// StyleProfile captures a user's learned preferences. All maps use
// canonical keys (PairKey for item pairs, ComboKey for tag combos) so
// lookups are order-independent.
type StyleProfile struct {
	// UserID owns this profile.
	UserID string `json:"user_id"`

	// ConfidenceThreshold is the rating bar for disliked evidence.
	ConfidenceThreshold float64 `json:"confidence_threshold"`

	// CompatibilityWeights maps item-pair keys to learned weights in
	// [0,1]. Updated by feedback via exponential moving average.
	CompatibilityWeights map[string]float64 `json:"compatibility_weights"`

	// ComboRatings maps tag-combination keys to learned confidence
	// scores in [0,1].
	ComboRatings map[string]float64 `json:"combo_ratings"`

	// DislikedPatterns maps tag-combination keys to negative evidence.
	// A combination is avoided once its occurrence count crosses the
	// dislike threshold.
	DislikedPatterns map[string]DislikedPattern `json:"disliked_patterns"`

	// PreferredColors boosts scoring for outfits using these colors.
	PreferredColors []string `json:"preferred_colors,omitempty"`

	// PreferredBrands boosts scoring for these brands.
	PreferredBrands []string `json:"preferred_brands,omitempty"`

	// PreferredStyles boosts scoring for these style tags.
	PreferredStyles []string `json:"preferred_styles,omitempty"`

	// UpdatedAt is the last modification time.
	UpdatedAt time.Time `json:"updated_at"`
}

// Default returns a fresh profile with neutral preferences for a user.
func Default(userID string) *StyleProfile {
	return &StyleProfile{
		UserID:               userID,
		ConfidenceThreshold:  DefaultConfidenceThreshold,
		CompatibilityWeights: make(map[string]float64),
		ComboRatings:         make(map[string]float64),
		DislikedPatterns:     make(map[string]DislikedPattern),
	}
}

// PairKey returns the canonical key for an unordered item pair.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// ComboKey returns the canonical key for a set of tags, lowercased and
// sorted so equivalent combinations collide.
func ComboKey(tags ...string) string {
	lowered := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			lowered = append(lowered, t)
		}
	}
	// insertion sort, combos are tiny
	for i := 1; i < len(lowered); i++ {
		for j := i; j > 0 && lowered[j] < lowered[j-1]; j-- {
			lowered[j], lowered[j-1] = lowered[j-1], lowered[j]
		}
	}
	return strings.Join(lowered, "+")
}

// IsDisliked reports whether a combination has crossed the dislike
// threshold.
func (p *StyleProfile) IsDisliked(comboKey string, threshold int) bool {
	pattern, ok := p.DislikedPatterns[comboKey]
	return ok && pattern.Occurrences >= threshold
}

// PrefersColor reports whether a color is in the user's preferred set.
func (p *StyleProfile) PrefersColor(color string) bool {
	for _, c := range p.PreferredColors {
		if strings.EqualFold(c, color) {
			return true
		}
	}
	return false
}

// PrefersBrand reports whether a brand is in the user's preferred set.
func (p *StyleProfile) PrefersBrand(brand string) bool {
	for _, b := range p.PreferredBrands {
		if strings.EqualFold(b, brand) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, safe to mutate without affecting the
// original.
func (p *StyleProfile) Clone() *StyleProfile {
	out := *p
	out.CompatibilityWeights = make(map[string]float64, len(p.CompatibilityWeights))
	for k, v := range p.CompatibilityWeights {
		out.CompatibilityWeights[k] = v
	}
	out.ComboRatings = make(map[string]float64, len(p.ComboRatings))
	for k, v := range p.ComboRatings {
		out.ComboRatings[k] = v
	}
	out.DislikedPatterns = make(map[string]DislikedPattern, len(p.DislikedPatterns))
	for k, v := range p.DislikedPatterns {
		out.DislikedPatterns[k] = v
	}
	out.PreferredColors = append([]string(nil), p.PreferredColors...)
	out.PreferredBrands = append([]string(nil), p.PreferredBrands...)
	out.PreferredStyles = append([]string(nil), p.PreferredStyles...)
	return &out
}

// Store persists style profiles.
type Store interface {
	// LoadProfile returns the stored profile for a user, or ErrNotFound.
	LoadProfile(ctx context.Context, userID string) (*StyleProfile, error)

	// SaveProfile stores or replaces a profile.
	SaveProfile(ctx context.Context, p *StyleProfile) error
}
