// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package profile

import (
	"context"
	"errors"
	"testing"
)

func TestPairKeyOrderIndependent(t *testing.T) {
	if PairKey("01B", "01A") != PairKey("01A", "01B") {
		t.Error("pair key should not depend on argument order")
	}
	if PairKey("01A", "01B") != "01A|01B" {
		t.Errorf("PairKey = %q, want 01A|01B", PairKey("01A", "01B"))
	}
}

func TestComboKey(t *testing.T) {
	tests := []struct {
		tags []string
		want string
	}{
		{[]string{"Stripes", "plaid"}, "plaid+stripes"},
		{[]string{"plaid", "stripes"}, "plaid+stripes"},
		{[]string{" bold ", ""}, "bold"},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := ComboKey(tt.tags...); got != tt.want {
			t.Errorf("ComboKey(%v) = %q, want %q", tt.tags, got, tt.want)
		}
	}
}

func TestDefaultProfile(t *testing.T) {
	p := Default("alice")

	if p.UserID != "alice" {
		t.Errorf("UserID = %q", p.UserID)
	}
	if p.ConfidenceThreshold != DefaultConfidenceThreshold {
		t.Errorf("ConfidenceThreshold = %v", p.ConfidenceThreshold)
	}
	if p.CompatibilityWeights == nil || p.ComboRatings == nil || p.DislikedPatterns == nil {
		t.Error("maps should be initialized")
	}
}

func TestIsDisliked(t *testing.T) {
	p := Default("alice")
	p.DislikedPatterns["plaid+stripes"] = DislikedPattern{Occurrences: 3}

	if !p.IsDisliked("plaid+stripes", 3) {
		t.Error("pattern at threshold should be disliked")
	}
	if p.IsDisliked("plaid+stripes", 4) {
		t.Error("pattern below threshold should not be disliked")
	}
	if p.IsDisliked("dots+plaid", 1) {
		t.Error("unknown pattern should not be disliked")
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := Default("alice")
	p.CompatibilityWeights["a|b"] = 0.8
	p.ComboRatings["casual+denim"] = 0.6
	p.PreferredColors = []string{"navy"}

	clone := p.Clone()
	clone.CompatibilityWeights["a|b"] = 0.1
	clone.ComboRatings["casual+denim"] = 0.1
	clone.PreferredColors[0] = "red"
	clone.DislikedPatterns["x"] = DislikedPattern{Occurrences: 1}

	if p.CompatibilityWeights["a|b"] != 0.8 {
		t.Error("clone mutation leaked into compatibility weights")
	}
	if p.ComboRatings["casual+denim"] != 0.6 {
		t.Error("clone mutation leaked into combo ratings")
	}
	if p.PreferredColors[0] != "navy" {
		t.Error("clone mutation leaked into preferred colors")
	}
	if len(p.DislikedPatterns) != 0 {
		t.Error("clone mutation leaked into disliked patterns")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.LoadProfile(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	p := Default("alice")
	p.CompatibilityWeights["a|b"] = 0.9
	if err := store.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	// mutate after save, store must hold its own copy
	p.CompatibilityWeights["a|b"] = 0.0

	loaded, err := store.LoadProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if loaded.CompatibilityWeights["a|b"] != 0.9 {
		t.Errorf("weight = %v, want 0.9", loaded.CompatibilityWeights["a|b"])
	}
}

func TestMemoryStoreRejectsMissingUserID(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SaveProfile(context.Background(), &StyleProfile{}); err == nil {
		t.Error("expected error for missing user id")
	}
}
