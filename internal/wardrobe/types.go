// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

// Package wardrobe defines the wardrobe item model and the read interface
// to the wardrobe store. The recommendation core treats the wardrobe as a
// rarely-changing snapshot per request and never mutates it directly;
// usage stats change only through wear and feedback events owned by the
// store.
package wardrobe

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Category classifies a wardrobe item by the outfit slot it can fill.
type Category int

const (
	// CategoryTop covers shirts, blouses, sweaters.
	CategoryTop Category = iota
	// CategoryBottom covers trousers, skirts, shorts.
	CategoryBottom
	// CategoryOuterwear covers jackets and coats.
	CategoryOuterwear
	// CategoryShoes covers footwear.
	CategoryShoes
	// CategoryAccessory covers belts, scarves, jewellery.
	CategoryAccessory
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case CategoryTop:
		return "top"
	case CategoryBottom:
		return "bottom"
	case CategoryOuterwear:
		return "outerwear"
	case CategoryShoes:
		return "shoes"
	case CategoryAccessory:
		return "accessory"
	default:
		return "unknown"
	}
}

// ParseCategory converts a category name to a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return CategoryTop, nil
	case "bottom":
		return CategoryBottom, nil
	case "outerwear":
		return CategoryOuterwear, nil
	case "shoes":
		return CategoryShoes, nil
	case "accessory":
		return CategoryAccessory, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Item represents a single wardrobe item. Item IDs are creation-ordered
// (ULID-style), so lexicographic comparison orders items by age.
type Item struct {
	// ID is the unique item identifier.
	ID string `json:"id"`

	// Name is the display name ("white oxford shirt").
	Name string `json:"name"`

	// Category is the outfit slot this item fills.
	Category Category `json:"category"`

	// Colors lists the item's colors, primary first.
	Colors []string `json:"colors"`

	// Tags carries free-form attributes ("short-sleeve", "business",
	// "heavy", brand and style tags).
	Tags []string `json:"tags"`

	// Brand is the item's brand, if known.
	Brand string `json:"brand,omitempty"`

	// TotalWears is the lifetime wear count.
	TotalWears int `json:"total_wears"`

	// LastWorn is when the item was last worn; zero if never.
	LastWorn time.Time `json:"last_worn,omitempty"`

	// AverageRating is the mean user rating for outfits containing this
	// item (1-5 scale, 0 if unrated).
	AverageRating float64 `json:"average_rating,omitempty"`

	// CostPerWear is purchase cost divided by total wears.
	CostPerWear float64 `json:"cost_per_wear,omitempty"`

	// StyleCompatibility maps other item IDs to a compatibility score
	// in [0,1]. Absent pairs score neutral.
	StyleCompatibility map[string]float64 `json:"style_compatibility,omitempty"`
}

// HasTag reports whether the item carries the given tag (case-insensitive).
func (i *Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Validate checks the required fields. Items failing validation are
// skipped during candidate generation, not fatal to the request.
func (i *Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("item missing id")
	}
	if i.Name == "" {
		return fmt.Errorf("item %s missing name", i.ID)
	}
	if i.Category < CategoryTop || i.Category > CategoryAccessory {
		return fmt.Errorf("item %s has invalid category %d", i.ID, i.Category)
	}
	return nil
}

// Store is the read interface to the wardrobe inventory.
type Store interface {
	// GetItems returns the current wardrobe snapshot for a user.
	GetItems(ctx context.Context, userID string) ([]Item, error)
}
