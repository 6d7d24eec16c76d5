// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

// Package engine generates, filters, scores, and ranks outfit
// candidates from an assembled recommendation context. Ranking is fully
// deterministic: equal inputs always produce equal outputs.
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/outfitd/outfitd/internal/aggregator"
	"github.com/outfitd/outfitd/internal/calendar"
	"github.com/outfitd/outfitd/internal/metrics"
	"github.com/outfitd/outfitd/internal/resilience"
	"github.com/outfitd/outfitd/internal/wardrobe"
)

// Engine produces outfit recommendations.
type Engine struct {
	logger zerolog.Logger
	cfg    Config
}

// New creates an Engine with the given configuration.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(logger zerolog.Logger, cfg Config) *Engine {
	return &Engine{
		logger: logger.With().Str("component", "engine").Logger(),
		cfg:    cfg.withDefaults(),
	}
}

// gates controls which hard filters apply during a generation pass.
type gates struct {
	weather   bool
	formality bool
}

// Recommend generates the ranked recommendations for a context. It
// relaxes gates progressively when the wardrobe cannot satisfy them:
// formality first, then weather, and reports the relaxation in the
// result status.
func (e *Engine) Recommend(ctx context.Context, rc *aggregator.Context) (*Result, error) {
	if rc == nil {
		return nil, resilience.NewValidationError("recommendation context is required")
	}
	start := time.Now()

	required := rc.Calendar.Formality
	result := &Result{Formality: required, Tiers: rc.Tiers}

	type pass struct {
		gates  gates
		status Status
	}
	passes := []pass{{gates{weather: true, formality: e.cfg.FormalityStrict}, StatusOK}}
	if e.cfg.FormalityStrict {
		passes = append(passes, pass{gates{weather: true, formality: false}, StatusRelaxedFormality})
	}
	passes = append(passes, pass{gates{weather: false, formality: false}, StatusRelaxedWeather})

	var candidates []Outfit
	var scored []*Recommendation
	for _, p := range passes {
		candidates = e.generate(rc, p.gates)
		if len(candidates) == 0 {
			continue
		}
		if scored = e.scoreAll(rc, candidates, true); len(scored) > 0 {
			result.Status = p.status
			break
		}
	}

	if len(scored) == 0 && len(candidates) > 0 {
		// Every candidate matched a disliked pattern. Dislikes are a
		// preference, not a hard gate: surface the best of them rather
		// than nothing.
		scored = e.scoreAll(rc, candidates, false)
		result.Status = StatusRelaxedDislikes
	}

	if len(scored) == 0 {
		result.Status = StatusInsufficientItems
		e.logger.Warn().
			Str("user_id", rc.UserID).
			Int("wardrobe_items", rc.Wardrobe.Len()).
			Msg("wardrobe cannot fill core outfit slots")
		metrics.RecommendRequests.WithLabelValues("insufficient_items").Inc()
		return result, nil
	}

	if result.Status != StatusOK {
		e.logger.Warn().
			Str("user_id", rc.UserID).
			Stringer("status", result.Status).
			Stringer("formality", required).
			Float64("temperature_c", rc.Weather.TemperatureC).
			Msg("gates relaxed to produce a recommendation")
	}

	metrics.CandidatesGenerated.Observe(float64(len(candidates)))

	e.rank(scored)
	picked := e.diversify(scored)

	for i := range picked {
		picked[i].Note = e.note(rc, &picked[i].Outfit, i)
		result.Recommendations = append(result.Recommendations, *picked[i])
	}

	metrics.RecommendRequests.WithLabelValues(result.Status.String()).Inc()
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())

	e.logger.Info().
		Str("user_id", rc.UserID).
		Int("candidates", len(candidates)).
		Int("returned", len(result.Recommendations)).
		Stringer("status", result.Status).
		Int("style_match", result.Recommendations[0].StyleMatch).
		Msg("recommendation produced")

	return result, nil
}

// generate builds all candidate outfits passing the given gates.
func (e *Engine) generate(rc *aggregator.Context, g gates) []Outfit {
	required := rc.Calendar.Formality

	tops := e.eligible(rc, rc.Wardrobe.ByCategory(wardrobe.CategoryTop), g, required)
	bottoms := e.eligible(rc, rc.Wardrobe.ByCategory(wardrobe.CategoryBottom), g, required)
	shoes := e.eligible(rc, rc.Wardrobe.ByCategory(wardrobe.CategoryShoes), g, required)
	if len(tops) == 0 || len(bottoms) == 0 || len(shoes) == 0 {
		return nil
	}

	needsOuterwear := g.weather && rc.Weather.TemperatureC < e.cfg.OuterwearRequiredTempC
	var outerwear []wardrobe.Item
	if needsOuterwear {
		outerwear = e.eligible(rc, rc.Wardrobe.ByCategory(wardrobe.CategoryOuterwear), g, required)
	}

	var accessory *wardrobe.Item
	if required.Meets(calendar.FormalityBusiness) {
		accessory = e.bestAccessory(rc, g, required)
	}

	var candidates []Outfit
	for _, top := range tops {
		for _, bottom := range bottoms {
			for _, shoe := range shoes {
				base := Outfit{Top: top, Bottom: bottom, Shoes: shoe, Accessory: accessory}
				if len(outerwear) == 0 {
					candidates = append(candidates, base)
					if len(candidates) >= e.cfg.MaxCandidates {
						return candidates
					}
					continue
				}
				for i := range outerwear {
					variant := base
					variant.Outerwear = &outerwear[i]
					candidates = append(candidates, variant)
					if len(candidates) >= e.cfg.MaxCandidates {
						return candidates
					}
				}
			}
		}
	}
	return candidates
}

// eligible filters items through the active gates and the profile's
// disliked single-item patterns.
func (e *Engine) eligible(rc *aggregator.Context, items []wardrobe.Item, g gates, required calendar.FormalityLevel) []wardrobe.Item {
	var out []wardrobe.Item
	for _, item := range items {
		if g.weather && !e.passesWeather(&item, rc.Weather.TemperatureC) {
			continue
		}
		if g.formality {
			if level, tagged := itemFormality(&item); tagged && !level.Meets(required) {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

// passesWeather applies the temperature gates on item tags.
func (e *Engine) passesWeather(item *wardrobe.Item, tempC float64) bool {
	if tempC < e.cfg.ShortSleeveMinTempC && item.HasTag("short-sleeve") {
		return false
	}
	if tempC > e.cfg.HeavyOuterwearMaxTempC && item.HasTag("heavy") {
		return false
	}
	return true
}

// itemFormality derives an item's formality from its tags. Untagged
// items are formality-agnostic: they pass any gate rather than being
// excluded for missing metadata.
func itemFormality(item *wardrobe.Item) (calendar.FormalityLevel, bool) {
	level := calendar.FormalityCasual
	tagged := false
	for _, tag := range item.Tags {
		if parsed, err := calendar.ParseFormality(tag); err == nil {
			tagged = true
			if parsed > level {
				level = parsed
			}
		}
	}
	return level, tagged
}

// bestAccessory picks the most formal eligible accessory, newest item
// ID on ties. Returns nil when the wardrobe has none.
func (e *Engine) bestAccessory(rc *aggregator.Context, g gates, required calendar.FormalityLevel) *wardrobe.Item {
	accessories := e.eligible(rc, rc.Wardrobe.ByCategory(wardrobe.CategoryAccessory), g, required)
	if len(accessories) == 0 {
		return nil
	}

	best := 0
	for i := 1; i < len(accessories); i++ {
		fi, _ := itemFormality(&accessories[i])
		fb, _ := itemFormality(&accessories[best])
		if fi > fb || (fi == fb && accessories[i].ID > accessories[best].ID) {
			best = i
		}
	}
	return &accessories[best]
}

// rank orders scored candidates: score descending, cost-per-wear
// ascending, then greatest item ID descending so equal outfits always
// order the same way.
func (e *Engine) rank(scored []*Recommendation) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].CostPerWear != scored[j].CostPerWear {
			return scored[i].CostPerWear < scored[j].CostPerWear
		}
		return scored[i].Outfit.maxID() > scored[j].Outfit.maxID()
	})
}

// diversify picks the primary plus alternates sharing at most one item
// with the primary, up to MaxResults.
func (e *Engine) diversify(scored []*Recommendation) []*Recommendation {
	if len(scored) == 0 {
		return nil
	}

	picked := []*Recommendation{scored[0]}
	for _, candidate := range scored[1:] {
		if len(picked) >= e.cfg.MaxResults {
			break
		}
		if picked[0].Outfit.sharedItems(&candidate.Outfit) <= 1 {
			picked = append(picked, candidate)
		}
	}
	return picked
}
