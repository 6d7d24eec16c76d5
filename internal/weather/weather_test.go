// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package weather

import (
	"testing"
	"time"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		input   string
		want    Condition
		wantErr bool
	}{
		{"sunny", ConditionSunny, false},
		{"clear", ConditionSunny, false},
		{"partly-cloudy", ConditionPartlyCloudy, false},
		{"partly_cloudy", ConditionPartlyCloudy, false},
		{"cloudy", ConditionCloudy, false},
		{"overcast", ConditionOvercast, false},
		{"rain", ConditionRain, false},
		{"SNOW", ConditionSnow, false},
		{"hail", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCondition(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCondition(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseCondition(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestConditionIsPrecipitating(t *testing.T) {
	if !ConditionRain.IsPrecipitating() || !ConditionSnow.IsPrecipitating() {
		t.Error("rain and snow should precipitate")
	}
	if ConditionSunny.IsPrecipitating() || ConditionOvercast.IsPrecipitating() {
		t.Error("dry conditions should not precipitate")
	}
}

func TestSeasonalDefault(t *testing.T) {
	tests := []struct {
		month    time.Month
		wantTemp float64
		wantCond Condition
	}{
		{time.January, 8, ConditionCloudy},
		{time.February, 8, ConditionCloudy},
		{time.December, 8, ConditionCloudy},
		{time.March, 15, ConditionPartlyCloudy},
		{time.May, 15, ConditionPartlyCloudy},
		{time.June, 28, ConditionSunny},
		{time.August, 28, ConditionSunny},
		{time.September, 14, ConditionOvercast},
		{time.November, 14, ConditionOvercast},
	}

	for _, tt := range tests {
		date := time.Date(2026, tt.month, 15, 0, 0, 0, 0, time.UTC)
		got := SeasonalDefault("berlin", date)
		if got.TemperatureC != tt.wantTemp {
			t.Errorf("%s: TemperatureC = %v, want %v", tt.month, got.TemperatureC, tt.wantTemp)
		}
		if got.Condition != tt.wantCond {
			t.Errorf("%s: Condition = %v, want %v", tt.month, got.Condition, tt.wantCond)
		}
		if got.Location != "berlin" {
			t.Errorf("%s: Location = %q", tt.month, got.Location)
		}
	}
}

func TestCacheFreshAndStale(t *testing.T) {
	c := NewCache(50 * time.Millisecond)
	reading := Context{TemperatureC: 18, Condition: ConditionSunny, Location: "oslo"}

	if _, _, ok := c.Get("oslo"); ok {
		t.Fatal("empty cache should miss")
	}

	c.Put("oslo", reading)

	got, fresh, ok := c.Get("oslo")
	if !ok || !fresh {
		t.Fatalf("expected fresh hit, got ok=%v fresh=%v", ok, fresh)
	}
	if got.TemperatureC != 18 {
		t.Errorf("TemperatureC = %v, want 18", got.TemperatureC)
	}

	time.Sleep(60 * time.Millisecond)

	got, fresh, ok = c.Get("oslo")
	if !ok {
		t.Fatal("stale entry should still be served")
	}
	if fresh {
		t.Error("entry past TTL should not be fresh")
	}
	if got.Location != "oslo" {
		t.Errorf("Location = %q, want oslo", got.Location)
	}
}

func TestCacheClear(t *testing.T) {
	c := NewCache(time.Minute)
	c.Put("oslo", Context{TemperatureC: 18})
	c.Clear()

	if _, _, ok := c.Get("oslo"); ok {
		t.Error("cleared cache should miss")
	}
}

func TestCacheHitRate(t *testing.T) {
	c := NewCache(time.Minute)
	c.Put("oslo", Context{})

	c.Get("oslo")
	c.Get("bergen")

	if rate := c.HitRate(); rate != 50.0 {
		t.Errorf("HitRate() = %v, want 50", rate)
	}
}
