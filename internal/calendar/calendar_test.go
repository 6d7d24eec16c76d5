// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package calendar

import (
	"testing"
	"time"
)

func TestParseFormality(t *testing.T) {
	tests := []struct {
		input   string
		want    FormalityLevel
		wantErr bool
	}{
		{"casual", FormalityCasual, false},
		{"business-casual", FormalityBusinessCasual, false},
		{"business_casual", FormalityBusinessCasual, false},
		{"business", FormalityBusiness, false},
		{"formal", FormalityFormal, false},
		{"black-tie", FormalityBlackTie, false},
		{"BLACK-TIE", FormalityBlackTie, false},
		{" business ", FormalityBusiness, false},
		{"smart", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseFormality(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormality(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseFormality(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormalityOrdering(t *testing.T) {
	if !FormalityBlackTie.Meets(FormalityCasual) {
		t.Error("black-tie should meet casual")
	}
	if !FormalityBusiness.Meets(FormalityBusiness) {
		t.Error("business should meet business")
	}
	if FormalityCasual.Meets(FormalityBusinessCasual) {
		t.Error("casual should not meet business-casual")
	}
}

func TestFormalityRoundTrip(t *testing.T) {
	for f := FormalityCasual; f <= FormalityBlackTie; f++ {
		text, err := f.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", f, err)
		}
		var back FormalityLevel
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != f {
			t.Errorf("round trip %v -> %q -> %v", f, text, back)
		}
	}
}

func TestBuildContextPrimaryEvent(t *testing.T) {
	day := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		events        []Event
		wantPrimary   string
		wantFormality FormalityLevel
	}{
		{
			name: "highest formality wins",
			events: []Event{
				{ID: "e1", Title: "standup", Start: day.Add(9 * time.Hour), Formality: FormalityCasual},
				{ID: "e2", Title: "client dinner", Start: day.Add(19 * time.Hour), Formality: FormalityBusiness},
			},
			wantPrimary:   "e2",
			wantFormality: FormalityBusiness,
		},
		{
			name: "tie broken by earliest start",
			events: []Event{
				{ID: "e1", Title: "afternoon review", Start: day.Add(15 * time.Hour), Formality: FormalityBusiness},
				{ID: "e2", Title: "morning board", Start: day.Add(9 * time.Hour), Formality: FormalityBusiness},
			},
			wantPrimary:   "e2",
			wantFormality: FormalityBusiness,
		},
		{
			name: "single event",
			events: []Event{
				{ID: "e1", Title: "gala", Start: day.Add(20 * time.Hour), Formality: FormalityBlackTie},
			},
			wantPrimary:   "e1",
			wantFormality: FormalityBlackTie,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildContext(tt.events)
			if got.PrimaryEvent == nil {
				t.Fatal("PrimaryEvent is nil")
			}
			if got.PrimaryEvent.ID != tt.wantPrimary {
				t.Errorf("PrimaryEvent.ID = %s, want %s", got.PrimaryEvent.ID, tt.wantPrimary)
			}
			if got.Formality != tt.wantFormality {
				t.Errorf("Formality = %v, want %v", got.Formality, tt.wantFormality)
			}
		})
	}
}

func TestBuildContextEmpty(t *testing.T) {
	got := BuildContext(nil)
	if got.PrimaryEvent != nil {
		t.Error("empty day should have no primary event")
	}
	if got.Formality != FormalityCasual {
		t.Errorf("Formality = %v, want casual", got.Formality)
	}
	if got.Events == nil || len(got.Events) != 0 {
		t.Error("Events should be empty, not nil")
	}
}

func TestBuildContextDoesNotMutateInput(t *testing.T) {
	day := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{ID: "e1", Start: day.Add(9 * time.Hour), Formality: FormalityCasual},
		{ID: "e2", Start: day.Add(10 * time.Hour), Formality: FormalityFormal},
	}

	BuildContext(events)

	if events[0].ID != "e1" || events[1].ID != "e2" {
		t.Error("input slice was reordered")
	}
}
