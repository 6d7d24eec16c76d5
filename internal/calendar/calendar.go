// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

// Package calendar models the day's occasion context: events, the
// formality scale, and the primary-event selection rule.
package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// FormalityLevel orders how dressed-up an occasion requires.
type FormalityLevel int

const (
	// FormalityCasual is the default when no events are known.
	FormalityCasual FormalityLevel = iota
	// FormalityBusinessCasual sits between casual and business.
	FormalityBusinessCasual
	// FormalityBusiness covers standard office and client settings.
	FormalityBusiness
	// FormalityFormal covers ceremonies and formal dinners.
	FormalityFormal
	// FormalityBlackTie is the most formal level.
	FormalityBlackTie
)

// String returns the formality name.
func (f FormalityLevel) String() string {
	switch f {
	case FormalityCasual:
		return "casual"
	case FormalityBusinessCasual:
		return "business-casual"
	case FormalityBusiness:
		return "business"
	case FormalityFormal:
		return "formal"
	case FormalityBlackTie:
		return "black-tie"
	default:
		return "unknown"
	}
}

// ParseFormality converts a formality name to a FormalityLevel.
func ParseFormality(s string) (FormalityLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "casual":
		return FormalityCasual, nil
	case "business-casual", "business_casual":
		return FormalityBusinessCasual, nil
	case "business":
		return FormalityBusiness, nil
	case "formal":
		return FormalityFormal, nil
	case "black-tie", "black_tie":
		return FormalityBlackTie, nil
	default:
		return 0, fmt.Errorf("unknown formality %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f FormalityLevel) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FormalityLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseFormality(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Meets reports whether f satisfies a required level.
func (f FormalityLevel) Meets(required FormalityLevel) bool {
	return f >= required
}

// Event is a single calendar event for the day.
type Event struct {
	// ID is the event identifier from the calendar provider.
	ID string `json:"id"`

	// Title is the event title.
	Title string `json:"title"`

	// Start is the event start time.
	Start time.Time `json:"start"`

	// Formality is the dress level the event requires.
	Formality FormalityLevel `json:"formality"`
}

// Context is the day's occasion context: the events, the derived primary
// event, and the overall formality (max across events). It is an
// immutable snapshot for a given user and date.
type Context struct {
	// Events lists the day's events.
	Events []Event `json:"events"`

	// PrimaryEvent is the highest-formality event, earliest start on
	// ties; nil when the day has no events.
	PrimaryEvent *Event `json:"primary_event,omitempty"`

	// Formality is the maximum formality across events; casual when
	// there are none.
	Formality FormalityLevel `json:"formality"`
}

// BuildContext derives the occasion context from the day's events.
// Primary-event rule: sort by formality descending, then start time
// ascending, take the first.
func BuildContext(events []Event) Context {
	if len(events) == 0 {
		return EmptyContext()
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Formality != sorted[j].Formality {
			return sorted[i].Formality > sorted[j].Formality
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})

	primary := sorted[0]
	return Context{
		Events:       events,
		PrimaryEvent: &primary,
		Formality:    primary.Formality,
	}
}

// EmptyContext returns the safe default: no events, casual formality.
// Absence of calendar data is a valid context, not an error.
func EmptyContext() Context {
	return Context{Events: []Event{}, Formality: FormalityCasual}
}

// Provider is the external calendar collaborator.
type Provider interface {
	// GetEvents returns the user's events for a date. May fail or time
	// out; accessed only through the resilience layer.
	GetEvents(ctx context.Context, userID string, date time.Time) ([]Event, error)
}
