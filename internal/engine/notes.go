// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package engine

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/outfitd/outfitd/internal/aggregator"
	"github.com/outfitd/outfitd/internal/calendar"
)

// noteTemplates hold the voice variants. Each template receives the
// lead item name, the weather phrase, and the occasion phrase.
var noteTemplates = map[NoteStyle][]string{
	NoteEncouraging: {
		"Your %s is a great anchor for %s, and it fits %s perfectly.",
		"Lead with the %s today. It handles %s and suits %s.",
		"The %s pulls this together. Ready for %s and right for %s.",
	},
	NoteWitty: {
		"The %s called dibs on today. It laughs at %s and charms %s.",
		"Deploying the %s: rated for %s, licensed for %s.",
		"Your %s has been waiting for exactly %s and %s. Let it shine.",
	},
	NotePoetic: {
		"The %s carries the day, steady through %s, at home in %s.",
		"Dress in the %s and let %s pass you by, for %s awaits.",
		"A %s for %s, worn gently into %s.",
	},
}

// note builds the one-line note for an outfit. Template choice hashes
// the user, date, and outfit so equal requests produce equal notes
// while different outfits vary.
func (e *Engine) note(rc *aggregator.Context, outfit *Outfit, rank int) string {
	templates := noteTemplates[e.cfg.NoteStyle]
	if len(templates) == 0 {
		templates = noteTemplates[NoteEncouraging]
	}

	h := fnv.New32a()
	h.Write([]byte(rc.UserID))
	h.Write([]byte(rc.Date.Format("2006-01-02")))
	h.Write([]byte(strings.Join(outfit.ItemIDs(), ",")))
	idx := int(h.Sum32()) % len(templates)
	if idx < 0 {
		idx += len(templates)
	}

	lead := outfit.Top.Name
	if rank > 0 && outfit.Bottom.Name != "" {
		lead = outfit.Bottom.Name
	}

	return fmt.Sprintf(templates[idx], lead, weatherPhrase(rc), occasionPhrase(rc))
}

// weatherPhrase describes the day's weather for the note.
func weatherPhrase(rc *aggregator.Context) string {
	temp := rc.Weather.TemperatureC
	cond := rc.Weather.Condition.String()

	switch {
	case temp < 5:
		return fmt.Sprintf("a freezing %s day at %.0f°C", cond, temp)
	case temp < 12:
		return fmt.Sprintf("a chilly %s day at %.0f°C", cond, temp)
	case temp < 22:
		return fmt.Sprintf("a mild %s day at %.0f°C", cond, temp)
	default:
		return fmt.Sprintf("a warm %s day at %.0f°C", cond, temp)
	}
}

// occasionPhrase describes the day's occasion for the note.
func occasionPhrase(rc *aggregator.Context) string {
	if rc.Calendar.PrimaryEvent != nil && rc.Calendar.PrimaryEvent.Title != "" {
		return fmt.Sprintf("your %s", rc.Calendar.PrimaryEvent.Title)
	}
	if rc.Calendar.Formality > calendar.FormalityCasual {
		return fmt.Sprintf("a %s occasion", rc.Calendar.Formality)
	}
	return "a relaxed day"
}
