// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/outfitd/outfitd/internal/aggregator"
	"github.com/outfitd/outfitd/internal/calendar"
	"github.com/outfitd/outfitd/internal/profile"
	"github.com/outfitd/outfitd/internal/resilience"
	"github.com/outfitd/outfitd/internal/wardrobe"
	"github.com/outfitd/outfitd/internal/weather"
)

func newTestEngine() *Engine {
	return New(zerolog.Nop(), DefaultConfig())
}

func testContext(items []wardrobe.Item, w weather.Context, cal calendar.Context, p *profile.StyleProfile) *aggregator.Context {
	if p == nil {
		p = profile.Default("alice")
	}
	return &aggregator.Context{
		UserID:   "alice",
		Date:     time.Date(2026, 6, 15, 8, 0, 0, 0, time.UTC),
		Location: "oslo",
		Weather:  w,
		Calendar: cal,
		Profile:  p,
		Wardrobe: wardrobe.NewSnapshot(items, zerolog.Nop()),
	}
}

func businessCalendar() calendar.Context {
	return calendar.BuildContext([]calendar.Event{
		{ID: "e1", Title: "client meeting", Start: time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC), Formality: calendar.FormalityBusiness},
	})
}

func TestRecommendBusinessScenario(t *testing.T) {
	items := []wardrobe.Item{
		{ID: "01A", Name: "white shirt", Category: wardrobe.CategoryTop, Colors: []string{"white"}, Tags: []string{"business"}},
		{ID: "01B", Name: "navy trousers", Category: wardrobe.CategoryBottom, Colors: []string{"navy"}, Tags: []string{"business"}},
		{ID: "01C", Name: "brown shoes", Category: wardrobe.CategoryShoes, Colors: []string{"brown"}},
	}
	rc := testContext(items, weather.Context{TemperatureC: 22, Condition: weather.ConditionSunny}, businessCalendar(), nil)

	result, err := newTestEngine().Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if result.Status != StatusOK {
		t.Errorf("Status = %v, want ok", result.Status)
	}
	if len(result.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want exactly 1", len(result.Recommendations))
	}

	rec := result.Recommendations[0]
	if rec.Outfit.Top.ID != "01A" || rec.Outfit.Bottom.ID != "01B" || rec.Outfit.Shoes.ID != "01C" {
		t.Errorf("outfit = %v", rec.Outfit.ItemIDs())
	}
	if rec.StyleMatch < 70 {
		t.Errorf("StyleMatch = %d, want >= 70", rec.StyleMatch)
	}
	if rec.Outfit.Outerwear != nil {
		t.Error("no outerwear expected at 22°C")
	}
}

func TestRecommendAllSourcesDegraded(t *testing.T) {
	day := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	items := []wardrobe.Item{
		{ID: "01A", Name: "wool sweater", Category: wardrobe.CategoryTop, Colors: []string{"gray"}},
		{ID: "01B", Name: "jeans", Category: wardrobe.CategoryBottom, Colors: []string{"denim"}},
		{ID: "01C", Name: "boots", Category: wardrobe.CategoryShoes, Colors: []string{"black"}},
		{ID: "01D", Name: "parka", Category: wardrobe.CategoryOuterwear, Colors: []string{"green"}},
	}
	rc := testContext(items, weather.SeasonalDefault("oslo", day), calendar.EmptyContext(), nil)
	rc.Date = day
	rc.Tiers = aggregator.SourceTiers{
		Weather:  resilience.StaticDefault,
		Calendar: resilience.StaticDefault,
		Profile:  resilience.StaticDefault,
		Wardrobe: resilience.Live,
	}

	result, err := newTestEngine().Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if len(result.Recommendations) < 1 {
		t.Fatal("expected at least one recommendation under full degradation")
	}
	if result.Tiers.Weather != resilience.StaticDefault || result.Tiers.Calendar != resilience.StaticDefault {
		t.Errorf("tiers not echoed: %+v", result.Tiers)
	}
	if result.Formality != calendar.FormalityCasual {
		t.Errorf("Formality = %v, want casual default", result.Formality)
	}
	// seasonal winter default is 8°C, below the outerwear gate
	if result.Recommendations[0].Outfit.Outerwear == nil {
		t.Error("expected outerwear at winter default temperature")
	}
}

func TestWeatherGateExcludesShortSleeve(t *testing.T) {
	items := []wardrobe.Item{
		{ID: "01A", Name: "linen tee", Category: wardrobe.CategoryTop, Tags: []string{"short-sleeve"}},
		{ID: "01B", Name: "flannel shirt", Category: wardrobe.CategoryTop},
		{ID: "01C", Name: "wool trousers", Category: wardrobe.CategoryBottom},
		{ID: "01D", Name: "boots", Category: wardrobe.CategoryShoes},
	}
	rc := testContext(items, weather.Context{TemperatureC: -5, Condition: weather.ConditionSnow}, calendar.EmptyContext(), nil)

	result, err := newTestEngine().Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if len(result.Recommendations) == 0 {
		t.Fatal("expected recommendations")
	}
	for _, rec := range result.Recommendations {
		for _, item := range rec.Outfit.Items() {
			if item.HasTag("short-sleeve") {
				t.Errorf("short-sleeve item %s recommended at -5°C", item.ID)
			}
		}
	}
}

func TestWeatherGateExcludesHeavyWhenWarm(t *testing.T) {
	items := []wardrobe.Item{
		{ID: "01A", Name: "heavy sweater", Category: wardrobe.CategoryTop, Tags: []string{"heavy"}},
		{ID: "01B", Name: "cotton shirt", Category: wardrobe.CategoryTop},
		{ID: "01C", Name: "chinos", Category: wardrobe.CategoryBottom},
		{ID: "01D", Name: "sneakers", Category: wardrobe.CategoryShoes},
	}
	rc := testContext(items, weather.Context{TemperatureC: 25, Condition: weather.ConditionSunny}, calendar.EmptyContext(), nil)

	result, err := newTestEngine().Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	for _, rec := range result.Recommendations {
		if rec.Outfit.Top.ID == "01A" {
			t.Error("heavy item recommended at 25°C")
		}
	}
}

func TestOuterwearAddedWhenCold(t *testing.T) {
	items := []wardrobe.Item{
		{ID: "01A", Name: "shirt", Category: wardrobe.CategoryTop},
		{ID: "01B", Name: "trousers", Category: wardrobe.CategoryBottom},
		{ID: "01C", Name: "boots", Category: wardrobe.CategoryShoes},
		{ID: "01D", Name: "wool coat", Category: wardrobe.CategoryOuterwear},
	}
	rc := testContext(items, weather.Context{TemperatureC: 5, Condition: weather.ConditionCloudy}, calendar.EmptyContext(), nil)

	result, err := newTestEngine().Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if result.Recommendations[0].Outfit.Outerwear == nil {
		t.Fatal("expected outerwear at 5°C")
	}
	if result.Recommendations[0].Outfit.Outerwear.ID != "01D" {
		t.Errorf("outerwear = %s", result.Recommendations[0].Outfit.Outerwear.ID)
	}
}

func TestAccessoryIncludedForBusiness(t *testing.T) {
	items := []wardrobe.Item{
		{ID: "01A", Name: "shirt", Category: wardrobe.CategoryTop, Tags: []string{"business"}},
		{ID: "01B", Name: "trousers", Category: wardrobe.CategoryBottom, Tags: []string{"business"}},
		{ID: "01C", Name: "oxfords", Category: wardrobe.CategoryShoes},
		{ID: "01D", Name: "leather belt", Category: wardrobe.CategoryAccessory, Tags: []string{"business"}},
	}
	rc := testContext(items, weather.Context{TemperatureC: 20, Condition: weather.ConditionSunny}, businessCalendar(), nil)

	result, err := newTestEngine().Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if result.Recommendations[0].Outfit.Accessory == nil {
		t.Fatal("expected accessory for business occasion")
	}
	if result.Recommendations[0].Outfit.Accessory.ID != "01D" {
		t.Errorf("accessory = %s", result.Recommendations[0].Outfit.Accessory.ID)
	}
}

func TestRecommendDeterministic(t *testing.T) {
	items := []wardrobe.Item{
		{ID: "01A", Name: "shirt", Category: wardrobe.CategoryTop, Colors: []string{"white"}},
		{ID: "01B", Name: "tee", Category: wardrobe.CategoryTop, Colors: []string{"navy"}},
		{ID: "01C", Name: "trousers", Category: wardrobe.CategoryBottom, Colors: []string{"gray"}},
		{ID: "01D", Name: "jeans", Category: wardrobe.CategoryBottom, Colors: []string{"denim"}},
		{ID: "01E", Name: "sneakers", Category: wardrobe.CategoryShoes, Colors: []string{"white"}},
	}
	e := newTestEngine()
	rc := testContext(items, weather.Context{TemperatureC: 18}, calendar.EmptyContext(), nil)

	first, err := e.Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	second, err := e.Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if len(first.Recommendations) != len(second.Recommendations) {
		t.Fatalf("result sizes differ: %d vs %d", len(first.Recommendations), len(second.Recommendations))
	}
	for i := range first.Recommendations {
		a, b := first.Recommendations[i], second.Recommendations[i]
		if a.Score != b.Score || a.Note != b.Note {
			t.Errorf("rank %d differs between runs", i)
		}
		for j, id := range a.Outfit.ItemIDs() {
			if b.Outfit.ItemIDs()[j] != id {
				t.Errorf("rank %d outfit differs between runs", i)
			}
		}
	}
}

func TestDiversityAcrossAlternates(t *testing.T) {
	items := []wardrobe.Item{
		{ID: "01A", Name: "shirt", Category: wardrobe.CategoryTop},
		{ID: "01B", Name: "tee", Category: wardrobe.CategoryTop},
		{ID: "01C", Name: "trousers", Category: wardrobe.CategoryBottom},
		{ID: "01D", Name: "jeans", Category: wardrobe.CategoryBottom},
		{ID: "01E", Name: "sneakers", Category: wardrobe.CategoryShoes},
		{ID: "01F", Name: "boots", Category: wardrobe.CategoryShoes},
	}
	rc := testContext(items, weather.Context{TemperatureC: 18}, calendar.EmptyContext(), nil)

	result, err := newTestEngine().Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if len(result.Recommendations) < 2 {
		t.Fatalf("expected alternates, got %d", len(result.Recommendations))
	}
	if len(result.Recommendations) > 3 {
		t.Fatalf("got %d recommendations, cap is 3", len(result.Recommendations))
	}
	primary := &result.Recommendations[0].Outfit
	for _, alt := range result.Recommendations[1:] {
		if shared := primary.sharedItems(&alt.Outfit); shared > 1 {
			t.Errorf("alternate shares %d items with primary", shared)
		}
	}
}

func TestDislikedComboExcluded(t *testing.T) {
	items := []wardrobe.Item{
		{ID: "01A", Name: "plaid shirt", Category: wardrobe.CategoryTop, Tags: []string{"plaid"}},
		{ID: "01B", Name: "plain shirt", Category: wardrobe.CategoryTop},
		{ID: "01C", Name: "striped trousers", Category: wardrobe.CategoryBottom, Tags: []string{"stripes"}},
		{ID: "01D", Name: "sneakers", Category: wardrobe.CategoryShoes},
	}
	p := profile.Default("alice")
	p.DislikedPatterns[profile.ComboKey("plaid", "stripes")] = profile.DislikedPattern{Occurrences: 3}
	rc := testContext(items, weather.Context{TemperatureC: 18}, calendar.EmptyContext(), p)

	result, err := newTestEngine().Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	for _, rec := range result.Recommendations {
		if rec.Outfit.Top.ID == "01A" && rec.Outfit.Bottom.ID == "01C" {
			t.Error("disliked plaid+stripes combination was recommended")
		}
	}
}

func TestAllCandidatesDislikedStillRecommends(t *testing.T) {
	items := []wardrobe.Item{
		{ID: "01A", Name: "plaid shirt", Category: wardrobe.CategoryTop, Tags: []string{"plaid"}},
		{ID: "01B", Name: "striped trousers", Category: wardrobe.CategoryBottom, Tags: []string{"stripes"}},
		{ID: "01C", Name: "sneakers", Category: wardrobe.CategoryShoes},
	}
	p := profile.Default("alice")
	p.DislikedPatterns[profile.ComboKey("plaid", "stripes")] = profile.DislikedPattern{Occurrences: 3}
	rc := testContext(items, weather.Context{TemperatureC: 18}, calendar.EmptyContext(), p)

	result, err := newTestEngine().Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if result.Status != StatusRelaxedDislikes {
		t.Errorf("Status = %v, want relaxed_dislikes", result.Status)
	}
	if len(result.Recommendations) == 0 {
		t.Fatal("the only wearable outfit should be recommended even when disliked")
	}
	if got := result.Recommendations[0].Outfit.Top.ID; got != "01A" {
		t.Errorf("Top.ID = %q, want 01A", got)
	}
}

func TestRelaxedFormalityWhenNothingMeetsGate(t *testing.T) {
	items := []wardrobe.Item{
		{ID: "01A", Name: "band tee", Category: wardrobe.CategoryTop, Tags: []string{"casual"}},
		{ID: "01B", Name: "jeans", Category: wardrobe.CategoryBottom, Tags: []string{"casual"}},
		{ID: "01C", Name: "sneakers", Category: wardrobe.CategoryShoes, Tags: []string{"casual"}},
	}
	rc := testContext(items, weather.Context{TemperatureC: 18}, businessCalendar(), nil)

	result, err := newTestEngine().Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if result.Status != StatusRelaxedFormality {
		t.Errorf("Status = %v, want relaxed_formality", result.Status)
	}
	if len(result.Recommendations) == 0 {
		t.Error("relaxation should still produce a recommendation")
	}
}

func TestInsufficientItems(t *testing.T) {
	items := []wardrobe.Item{
		{ID: "01A", Name: "shirt", Category: wardrobe.CategoryTop},
		{ID: "01B", Name: "trousers", Category: wardrobe.CategoryBottom},
	}
	rc := testContext(items, weather.Context{TemperatureC: 18}, calendar.EmptyContext(), nil)

	result, err := newTestEngine().Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if result.Status != StatusInsufficientItems {
		t.Errorf("Status = %v, want insufficient_items", result.Status)
	}
	if len(result.Recommendations) != 0 {
		t.Errorf("got %d recommendations without shoes", len(result.Recommendations))
	}
}

func TestRecommendNilContext(t *testing.T) {
	if _, err := newTestEngine().Recommend(context.Background(), nil); !resilience.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestNoteReferencesContext(t *testing.T) {
	items := []wardrobe.Item{
		{ID: "01A", Name: "white shirt", Category: wardrobe.CategoryTop, Tags: []string{"business"}},
		{ID: "01B", Name: "navy trousers", Category: wardrobe.CategoryBottom, Tags: []string{"business"}},
		{ID: "01C", Name: "brown shoes", Category: wardrobe.CategoryShoes},
	}
	rc := testContext(items, weather.Context{TemperatureC: 22, Condition: weather.ConditionSunny}, businessCalendar(), nil)

	result, err := newTestEngine().Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	note := result.Recommendations[0].Note
	if note == "" {
		t.Fatal("empty note")
	}
	if !strings.Contains(note, "white shirt") {
		t.Errorf("note does not reference the lead item: %q", note)
	}
	if !strings.Contains(note, "22") || !strings.Contains(note, "sunny") {
		t.Errorf("note does not reference the weather: %q", note)
	}
	if !strings.Contains(note, "client meeting") {
		t.Errorf("note does not reference the occasion: %q", note)
	}
}

func TestRankTieBreaks(t *testing.T) {
	e := newTestEngine()

	recs := []*Recommendation{
		{Outfit: Outfit{Top: wardrobe.Item{ID: "01A"}}, Score: 0.5, CostPerWear: 3},
		{Outfit: Outfit{Top: wardrobe.Item{ID: "01B"}}, Score: 0.5, CostPerWear: 1},
		{Outfit: Outfit{Top: wardrobe.Item{ID: "01C"}}, Score: 0.9, CostPerWear: 9},
		{Outfit: Outfit{Top: wardrobe.Item{ID: "01D"}}, Score: 0.5, CostPerWear: 1},
	}
	e.rank(recs)

	wantOrder := []string{"01C", "01D", "01B", "01A"}
	for i, want := range wantOrder {
		if recs[i].Outfit.Top.ID != want {
			t.Errorf("rank %d = %s, want %s", i, recs[i].Outfit.Top.ID, want)
		}
	}
}

func TestNeglectScore(t *testing.T) {
	e := newTestEngine()
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		item wardrobe.Item
		want float64
	}{
		{"never worn", wardrobe.Item{}, 1.0},
		{"worn today", wardrobe.Item{LastWorn: now}, 0.0},
		{"worn 30 days ago", wardrobe.Item{LastWorn: now.AddDate(0, 0, -30)}, 0.5},
		{"worn 90 days ago", wardrobe.Item{LastWorn: now.AddDate(0, 0, -90)}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.neglectScore([]wardrobe.Item{tt.item}, now)
			if got != tt.want {
				t.Errorf("neglectScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColorPairScore(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"white", "navy", 1.0},
		{"white", "brown", 1.0},
		{"navy", "brown", 0.5},
		{"black", "brown", 0.2},
		{"red", "pink", 0.2},
		{"navy", "mustard", 0.9},
		{"navy", "navy", 0.8},
	}

	for _, tt := range tests {
		if got := colorPairScore(tt.a, tt.b); got != tt.want {
			t.Errorf("colorPairScore(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := colorPairScore(tt.b, tt.a); got != tt.want {
			t.Errorf("colorPairScore(%s, %s) = %v, want %v", tt.b, tt.a, got, tt.want)
		}
	}
}
