// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package wardrobe

import (
	"github.com/rs/zerolog"
)

// Snapshot is a validated, indexed view of a user's wardrobe for one
// request. Malformed items are dropped at construction so candidate
// generation only ever sees well-formed items.
type Snapshot struct {
	items []Item
	byID  map[string]*Item
}

// NewSnapshot validates items and builds the indexed snapshot. Items
// failing validation are logged and skipped.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSnapshot(items []Item, logger zerolog.Logger) *Snapshot {
	valid := make([]Item, 0, len(items))
	byID := make(map[string]*Item, len(items))

	for _, item := range items {
		if err := item.Validate(); err != nil {
			logger.Warn().
				Str("item_id", item.ID).
				Err(err).
				Msg("skipping malformed wardrobe item")
			continue
		}
		valid = append(valid, item)
	}
	for i := range valid {
		byID[valid[i].ID] = &valid[i]
	}

	return &Snapshot{items: valid, byID: byID}
}

// Items returns the validated items.
func (s *Snapshot) Items() []Item {
	return s.items
}

// Get returns the item with the given ID, or nil.
func (s *Snapshot) Get(id string) *Item {
	return s.byID[id]
}

// Contains reports whether the snapshot holds the given item ID.
func (s *Snapshot) Contains(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// ByCategory returns the items in the given category, in input order.
func (s *Snapshot) ByCategory(c Category) []Item {
	var out []Item
	for _, item := range s.items {
		if item.Category == c {
			out = append(out, item)
		}
	}
	return out
}

// Len returns the number of valid items.
func (s *Snapshot) Len() int {
	return len(s.items)
}
