// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package engine

import (
	"fmt"
	"strings"
)

// NoteStyle selects the voice of generated outfit notes.
type NoteStyle int

const (
	// NoteEncouraging is the default supportive voice.
	NoteEncouraging NoteStyle = iota
	// NoteWitty is a lighter, playful voice.
	NoteWitty
	// NotePoetic is a lyrical voice.
	NotePoetic
)

// String returns the note style name.
func (n NoteStyle) String() string {
	switch n {
	case NoteEncouraging:
		return "encouraging"
	case NoteWitty:
		return "witty"
	case NotePoetic:
		return "poetic"
	default:
		return "unknown"
	}
}

// ParseNoteStyle converts a note style name to a NoteStyle.
func ParseNoteStyle(s string) (NoteStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "encouraging", "":
		return NoteEncouraging, nil
	case "witty":
		return NoteWitty, nil
	case "poetic":
		return NotePoetic, nil
	default:
		return 0, fmt.Errorf("unknown note style %q", s)
	}
}

// Weights blend the four scoring dimensions. They should sum to 1.
type Weights struct {
	Compatibility float64 `koanf:"compatibility"`
	ColorHarmony  float64 `koanf:"color_harmony"`
	Neglect       float64 `koanf:"neglect"`
	Confidence    float64 `koanf:"confidence"`
}

// DefaultWeights returns the calibrated scoring blend.
func DefaultWeights() Weights {
	return Weights{
		Compatibility: 0.3,
		ColorHarmony:  0.3,
		Neglect:       0.2,
		Confidence:    0.2,
	}
}

// Config holds the engine's gates, weights, and output settings.
type Config struct {
	// ShortSleeveMinTempC excludes short-sleeve items below this
	// temperature.
	ShortSleeveMinTempC float64 `koanf:"short_sleeve_min_temp_c"`

	// HeavyOuterwearMaxTempC excludes heavy items above this
	// temperature.
	HeavyOuterwearMaxTempC float64 `koanf:"heavy_outerwear_max_temp_c"`

	// OuterwearRequiredTempC adds an outerwear slot below this
	// temperature.
	OuterwearRequiredTempC float64 `koanf:"outerwear_required_temp_c"`

	// FormalityStrict rejects outfits below the required formality
	// instead of penalizing them.
	FormalityStrict bool `koanf:"formality_strict"`

	// NeglectThresholdDays is the wear gap at which an item starts
	// earning rotation bonus.
	NeglectThresholdDays int `koanf:"neglect_threshold_days"`

	// DislikeThreshold is how many low-rating occurrences mark a tag
	// combination as disliked.
	DislikeThreshold int `koanf:"dislike_threshold"`

	// Weights blends the scoring dimensions.
	Weights Weights `koanf:"weights"`

	// NoteStyle selects the voice of outfit notes.
	NoteStyle NoteStyle `koanf:"-"`

	// MaxResults caps recommendations per request (primary plus
	// alternates).
	MaxResults int `koanf:"max_results"`

	// MaxCandidates caps the combinatorial search, large wardrobes are
	// truncated per category before combination.
	MaxCandidates int `koanf:"max_candidates"`
}

// DefaultConfig returns the calibrated engine configuration.
func DefaultConfig() Config {
	return Config{
		ShortSleeveMinTempC:    15,
		HeavyOuterwearMaxTempC: 20,
		OuterwearRequiredTempC: 10,
		FormalityStrict:        true,
		NeglectThresholdDays:   30,
		DislikeThreshold:       3,
		Weights:                DefaultWeights(),
		NoteStyle:              NoteEncouraging,
		MaxResults:             3,
		MaxCandidates:          5000,
	}
}

// withDefaults fills zero values so a partially configured engine still
// behaves sensibly.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ShortSleeveMinTempC == 0 {
		c.ShortSleeveMinTempC = d.ShortSleeveMinTempC
	}
	if c.HeavyOuterwearMaxTempC == 0 {
		c.HeavyOuterwearMaxTempC = d.HeavyOuterwearMaxTempC
	}
	if c.OuterwearRequiredTempC == 0 {
		c.OuterwearRequiredTempC = d.OuterwearRequiredTempC
	}
	if c.NeglectThresholdDays == 0 {
		c.NeglectThresholdDays = d.NeglectThresholdDays
	}
	if c.DislikeThreshold == 0 {
		c.DislikeThreshold = d.DislikeThreshold
	}
	if c.Weights == (Weights{}) {
		c.Weights = d.Weights
	}
	if c.MaxResults == 0 {
		c.MaxResults = d.MaxResults
	}
	if c.MaxCandidates == 0 {
		c.MaxCandidates = d.MaxCandidates
	}
	return c
}
