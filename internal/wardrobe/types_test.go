// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package wardrobe

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{"top", CategoryTop, false},
		{"bottom", CategoryBottom, false},
		{"outerwear", CategoryOuterwear, false},
		{"shoes", CategoryShoes, false},
		{"accessory", CategoryAccessory, false},
		{"TOP", CategoryTop, false},
		{" shoes ", CategoryShoes, false},
		{"hat", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCategory(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCategory(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseCategory(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCategoryRoundTrip(t *testing.T) {
	for c := CategoryTop; c <= CategoryAccessory; c++ {
		text, err := c.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", c, err)
		}
		var back Category
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != c {
			t.Errorf("round trip %v -> %q -> %v", c, text, back)
		}
	}
}

func TestItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		wantErr bool
	}{
		{"valid", Item{ID: "01A", Name: "white shirt", Category: CategoryTop}, false},
		{"missing id", Item{Name: "shirt", Category: CategoryTop}, true},
		{"missing name", Item{ID: "01A", Category: CategoryTop}, true},
		{"bad category", Item{ID: "01A", Name: "shirt", Category: Category(99)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.item.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHasTag(t *testing.T) {
	item := Item{ID: "01A", Name: "tee", Category: CategoryTop, Tags: []string{"short-sleeve", "Casual"}}

	if !item.HasTag("short-sleeve") {
		t.Error("expected short-sleeve tag")
	}
	if !item.HasTag("casual") {
		t.Error("tag match should be case-insensitive")
	}
	if item.HasTag("formal") {
		t.Error("unexpected formal tag")
	}
}

func TestSnapshotSkipsMalformedItems(t *testing.T) {
	items := []Item{
		{ID: "01A", Name: "white shirt", Category: CategoryTop},
		{ID: "", Name: "ghost", Category: CategoryBottom}, // missing id
		{ID: "01B", Name: "navy trousers", Category: CategoryBottom},
	}

	snap := NewSnapshot(items, zerolog.Nop())

	if snap.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", snap.Len())
	}
	if !snap.Contains("01A") || !snap.Contains("01B") {
		t.Error("valid items missing from snapshot")
	}
	if snap.Get("01A") == nil || snap.Get("01A").Name != "white shirt" {
		t.Error("Get returned wrong item")
	}
}

func TestSnapshotByCategory(t *testing.T) {
	items := []Item{
		{ID: "01A", Name: "shirt", Category: CategoryTop},
		{ID: "01B", Name: "tee", Category: CategoryTop},
		{ID: "01C", Name: "trousers", Category: CategoryBottom},
	}

	snap := NewSnapshot(items, zerolog.Nop())

	tops := snap.ByCategory(CategoryTop)
	if len(tops) != 2 {
		t.Errorf("tops = %d, want 2", len(tops))
	}
	if len(snap.ByCategory(CategoryShoes)) != 0 {
		t.Error("expected no shoes")
	}
}
