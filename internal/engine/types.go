// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package engine

import (
	"github.com/outfitd/outfitd/internal/aggregator"
	"github.com/outfitd/outfitd/internal/calendar"
	"github.com/outfitd/outfitd/internal/wardrobe"
)

// Status reports how the recommendation was produced.
type Status int

const (
	// StatusOK means all gates held.
	StatusOK Status = iota
	// StatusRelaxedFormality means the formality gate was dropped to
	// find any candidate.
	StatusRelaxedFormality
	// StatusRelaxedWeather means both formality and weather gates were
	// dropped.
	StatusRelaxedWeather
	// StatusRelaxedDislikes means every candidate matched a disliked
	// pattern, so the dislike filter was dropped as well.
	StatusRelaxedDislikes
	// StatusInsufficientItems means the wardrobe cannot fill the core
	// slots at all.
	StatusInsufficientItems
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRelaxedFormality:
		return "relaxed_formality"
	case StatusRelaxedWeather:
		return "relaxed_weather"
	case StatusRelaxedDislikes:
		return "relaxed_dislikes"
	case StatusInsufficientItems:
		return "insufficient_items"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outfit is one candidate combination. Top, Bottom, and Shoes are
// always set; Outerwear and Accessory only when the context calls for
// them.
type Outfit struct {
	Top       wardrobe.Item  `json:"top"`
	Bottom    wardrobe.Item  `json:"bottom"`
	Shoes     wardrobe.Item  `json:"shoes"`
	Outerwear *wardrobe.Item `json:"outerwear,omitempty"`
	Accessory *wardrobe.Item `json:"accessory,omitempty"`
}

// Items returns the outfit's items in slot order.
func (o *Outfit) Items() []wardrobe.Item {
	items := []wardrobe.Item{o.Top, o.Bottom, o.Shoes}
	if o.Outerwear != nil {
		items = append(items, *o.Outerwear)
	}
	if o.Accessory != nil {
		items = append(items, *o.Accessory)
	}
	return items
}

// ItemIDs returns the outfit's item IDs in slot order.
func (o *Outfit) ItemIDs() []string {
	items := o.Items()
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}

// maxID returns the lexicographically greatest item ID, the final
// deterministic tie-breaker. IDs are creation-ordered, so this prefers
// the outfit containing the newest item.
func (o *Outfit) maxID() string {
	max := ""
	for _, id := range o.ItemIDs() {
		if id > max {
			max = id
		}
	}
	return max
}

// sharedItems counts item IDs present in both outfits.
func (o *Outfit) sharedItems(other *Outfit) int {
	ids := make(map[string]struct{})
	for _, id := range o.ItemIDs() {
		ids[id] = struct{}{}
	}
	shared := 0
	for _, id := range other.ItemIDs() {
		if _, ok := ids[id]; ok {
			shared++
		}
	}
	return shared
}

// Recommendation is one scored outfit with its note.
type Recommendation struct {
	Outfit Outfit `json:"outfit"`

	// Score is the blended score in [0,1].
	Score float64 `json:"score"`

	// StyleMatch is the score as a 0-100 percentage for display.
	StyleMatch int `json:"style_match"`

	// CostPerWear is the summed cost-per-wear across items.
	CostPerWear float64 `json:"cost_per_wear"`

	// Note is the generated one-line note for this outfit.
	Note string `json:"note"`
}

// Result is the full recommendation response for one request.
type Result struct {
	// Recommendations holds the primary outfit first, then alternates.
	Recommendations []Recommendation `json:"recommendations"`

	// Status reports gate relaxation or item shortage.
	Status Status `json:"status"`

	// Formality is the occasion level the outfits were selected for.
	Formality calendar.FormalityLevel `json:"formality"`

	// Tiers echoes the per-source degradation from the context.
	Tiers aggregator.SourceTiers `json:"tiers"`
}
